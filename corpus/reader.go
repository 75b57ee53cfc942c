package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/qamatch/core"
)

// File is the on-disk corpus format.
type File struct {
	TotalQAPairs int     `json:"total_qa_pairs"`
	QAPairs      []Entry `json:"qa_pairs"`
}

// Entry is one question/answer pair in a corpus file.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ReadFile reads the corpus file at path.
func ReadFile(path string) ([]core.QAPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a corpus document from r. Every pair must be valid.
// total_qa_pairs is informational; a disagreement with the actual count is
// logged.
func Decode(r io.Reader) ([]core.QAPair, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	if file.QAPairs == nil {
		return nil, fmt.Errorf("%w: missing qa_pairs", ErrMalformedFile)
	}

	if file.TotalQAPairs != 0 && file.TotalQAPairs != len(file.QAPairs) {
		slog.Default().With("component", "corpus").Warn("total_qa_pairs disagrees with content",
			"declared", file.TotalQAPairs, "actual", len(file.QAPairs))
	}

	pairs := make([]core.QAPair, len(file.QAPairs))
	for i, e := range file.QAPairs {
		pair := core.QAPair{Question: e.Question, Answer: e.Answer}
		if err := core.ValidateQAPair(pair); err != nil {
			return nil, fmt.Errorf("qa_pairs[%d]: %w", i, err)
		}
		pairs[i] = pair
	}
	return pairs, nil
}

// Encode writes pairs to w in the corpus file format.
func Encode(w io.Writer, pairs []core.QAPair) error {
	file := File{
		TotalQAPairs: len(pairs),
		QAPairs:      make([]Entry, len(pairs)),
	}
	for i, p := range pairs {
		file.QAPairs[i] = Entry{Question: p.Question, Answer: p.Answer}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(file)
}
