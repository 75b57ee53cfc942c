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


package core

import (
	"fmt"
	"strings"
)

// ValidateQAPair validates a QAPair according to domain rules.
//
// Validation rules:
//   - Question must contain non-whitespace text
//   - Answer must contain non-whitespace text
func ValidateQAPair(pair QAPair) error {
	if strings.TrimSpace(pair.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQAPair, ErrEmptyQuestion)
	}
	if strings.TrimSpace(pair.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQAPair, ErrEmptyAnswer)
	}
	return nil
}
