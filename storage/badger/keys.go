package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	qaRowPrefix  = "qarow:"
	qaCountKey   = "qameta:count"
	rowKeyLength = len(qaRowPrefix) + 8

	maxRow = int(^uint32(0) >> 1)
)

// makeRowKey generates a key for a QA pair by row id.
// Format: prefix + 8 byte row
func makeRowKey(row int) []byte {
	buf := make([]byte, rowKeyLength)
	offset := copy(buf, qaRowPrefix)
	// Write in BigEndian order so lexicographic sort matches row order
	binary.BigEndian.PutUint64(buf[offset:], uint64(row))
	return buf
}

// parseRowKey extracts the row id from a key made by makeRowKey.
func parseRowKey(key []byte) (int, error) {
	if len(key) != rowKeyLength || string(key[:len(qaRowPrefix)]) != qaRowPrefix {
		return 0, fmt.Errorf("malformed row key %q", key)
	}
	row := binary.BigEndian.Uint64(key[len(qaRowPrefix):])
	if row > uint64(maxRow) {
		return 0, fmt.Errorf("row key %d out of range", row)
	}
	return int(row), nil
}
