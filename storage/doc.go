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

// Package storage defines the persistent model behind a qamatch store.
//
// A Store is the immutable triple of nearest-neighbor index, TF-IDF
// vocabulary and QA corpus. It is built offline, written to disk as one unit
// by the artifact package and loaded read-only for the lifetime of a process.
// Nothing in this package keeps process-wide state; a loaded Store is passed
// explicitly to whatever needs it.
//
// # Layout
//
//   - storage: Store, binary codecs and the CorpusRepository interface
//   - storage/badger: CorpusRepository backed by BadgerDB
//   - storage/artifact: Save and Load of a complete store directory
//
// # Usage
//
//	store, err := artifact.Load(ctx, "/var/lib/qamatch")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(store.Rows(), store.Dimension())
//
// # Thread Safety
//
// A Store is never modified after construction and can be shared by any
// number of goroutines. Repository implementations must be thread-safe.
package storage
