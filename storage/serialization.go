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

package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/vectorize"
)

// MarshalRow serializes a row id to bytes.
func MarshalRow(row int) []byte {
	buf := make([]byte, varint.Int.Size(row))
	varint.Int.Marshal(row, buf)
	return buf
}

// UnmarshalRow deserializes a row id from bytes.
func UnmarshalRow(data []byte) (int, error) {
	row, _, err := varint.Int.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return row, nil
}

// MarshalQAPair serializes a QAPair to bytes.
func MarshalQAPair(pair core.QAPair) []byte {
	buf := make([]byte, ord.String.Size(pair.Question)+ord.String.Size(pair.Answer))
	n := ord.String.Marshal(pair.Question, buf)
	ord.String.Marshal(pair.Answer, buf[n:])
	return buf
}

// UnmarshalQAPair deserializes a QAPair from bytes.
func UnmarshalQAPair(data []byte) (core.QAPair, error) {
	question, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return core.QAPair{}, fmt.Errorf("%w: question: %w", ErrSerializationFailed, err)
	}
	answer, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return core.QAPair{}, fmt.Errorf("%w: answer: %w", ErrSerializationFailed, err)
	}
	if n+m != len(data) {
		return core.QAPair{}, fmt.Errorf("%w: %d trailing bytes", ErrTruncatedData, len(data)-n-m)
	}
	return core.QAPair{Question: question, Answer: answer}, nil
}

// MarshalVocabulary serializes a vocabulary as a term count followed by
// (term, idf) entries in feature order.
func MarshalVocabulary(vocab *vectorize.Vocabulary) []byte {
	terms := vocab.Terms()
	idf := vocab.IDF()

	size := varint.Int.Size(len(terms))
	for i, term := range terms {
		size += ord.String.Size(term) + raw.Float64.Size(idf[i])
	}
	buf := make([]byte, size)
	n := varint.Int.Marshal(len(terms), buf)
	for i, term := range terms {
		n += ord.String.Marshal(term, buf[n:])
		n += raw.Float64.Marshal(idf[i], buf[n:])
	}
	return buf
}

// UnmarshalVocabulary deserializes a vocabulary from bytes.
func UnmarshalVocabulary(data []byte) (*vectorize.Vocabulary, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: term count: %w", ErrSerializationFailed, err)
	}
	// Each entry takes at least nine bytes.
	if count < 0 || count > (len(data)-n)/9 {
		return nil, fmt.Errorf("%w: term count %d", ErrTruncatedData, count)
	}

	terms := make([]string, count)
	idf := make([]float64, count)
	for i := range count {
		term, m, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: term %d: %w", ErrSerializationFailed, i, err)
		}
		n += m
		weight, m, err := raw.Float64.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: weight %d: %w", ErrSerializationFailed, i, err)
		}
		n += m
		terms[i] = term
		idf[i] = weight
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncatedData, len(data)-n)
	}

	vocab, err := vectorize.NewVocabulary(terms, idf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return vocab, nil
}
