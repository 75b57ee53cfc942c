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


// Package index provides an exact nearest-neighbor index over dense vectors.
//
// Flat compares a query against every stored row under squared Euclidean
// distance. It is built once from the corpus vectors and is read-only
// afterwards, so concurrent searches need no locking.
//
//	idx, err := index.Build(vectors)
//	neighbors, err := idx.Search(query, 5)
//	for _, n := range neighbors {
//		fmt.Println(n.Row, index.Similarity(n.Distance))
//	}
package index
