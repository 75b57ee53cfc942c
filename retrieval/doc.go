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


// Package retrieval finds the corpus entries lexically closest to a query.
//
// A Retriever wraps a loaded storage.Store. Each call normalizes the query,
// projects it through the store's frozen vocabulary and runs an exact
// nearest-neighbor search, returning ranked candidates for the confirmation
// stage. The store is read-only, so one Retriever can serve concurrent
// queries.
package retrieval
