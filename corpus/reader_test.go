package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/qamatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `{
  "total_qa_pairs": 2,
  "qa_pairs": [
    {"question": "What is a closure in JavaScript?", "answer": "A function bundled with its lexical environment."},
    {"question": "什么是事件循环？", "answer": "事件循环负责调度回调。"}
  ]
}`

func TestDecode(t *testing.T) {
	pairs, err := Decode(strings.NewReader(sampleFile))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "What is a closure in JavaScript?", pairs[0].Question)
	assert.Equal(t, "事件循环负责调度回调。", pairs[1].Answer)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"not json", "qa pairs", ErrMalformedFile},
		{"missing qa_pairs", `{"total_qa_pairs": 0}`, ErrMalformedFile},
		{"empty question", `{"qa_pairs": [{"question": " ", "answer": "a"}]}`, core.ErrEmptyQuestion},
		{"empty answer", `{"qa_pairs": [{"question": "q"}]}`, core.ErrEmptyAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_TotalMismatchIsNotFatal(t *testing.T) {
	pairs, err := Decode(strings.NewReader(`{"total_qa_pairs": 7, "qa_pairs": [{"question": "q", "answer": "a"}]}`))
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0644))

	pairs, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncode(t *testing.T) {
	pairs := []core.QAPair{
		{Question: "Is <b> escaped?", Answer: "No & never."},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, pairs))
	assert.Contains(t, buf.String(), `"total_qa_pairs": 1`)
	assert.Contains(t, buf.String(), "<b>")

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, pairs, decoded)
}
