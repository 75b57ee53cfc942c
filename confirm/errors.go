// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package confirm

import "errors"

var (
	// ErrOracleFailed indicates the oracle call itself failed. The reply, if
	// any, was not parsed.
	ErrOracleFailed = errors.New("oracle call failed")

	// ErrOracleRequired is returned by NewGate when no oracle is given.
	ErrOracleRequired = errors.New("oracle is required")
)
