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

import "errors"

// Domain errors
var (
	// ErrInvalidQAPair indicates a QAPair failed validation.
	ErrInvalidQAPair = errors.New("invalid qa pair")

	// ErrEmptyQuestion indicates the Question field is blank.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the Answer field is blank.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrRowOutOfRange indicates a row id outside the corpus.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrDimensionMismatch indicates vectors, vocabulary, index or corpus
	// disagree on dimensionality or row count.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
