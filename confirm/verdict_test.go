package confirm

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Decision
	}{
		{
			name:  "similar with answer",
			reply: "SIMILAR|A function bundled with its lexical scope.",
			want:  Decision{Verdict: Confirmed, Answer: "A function bundled with its lexical scope."},
		},
		{
			name:  "answer is trimmed",
			reply: "  SIMILAR|  use a mutex \n",
			want:  Decision{Verdict: Confirmed, Answer: "use a mutex"},
		},
		{
			name:  "preamble before marker",
			reply: "After review: SIMILAR|yes",
			want:  Decision{Verdict: Confirmed, Answer: "yes"},
		},
		{
			name:  "answer keeps later pipes",
			reply: "SIMILAR|a|b",
			want:  Decision{Verdict: Confirmed, Answer: "a|b"},
		},
		{
			name:  "answer may repeat the positive marker",
			reply: "SIMILAR|see SIMILAR|x",
			want:  Decision{Verdict: Confirmed, Answer: "see SIMILAR|x"},
		},
		{name: "not similar", reply: "NOT_SIMILAR", want: Reject},
		{name: "not similar with noise", reply: "I think NOT_SIMILAR.", want: Reject},
		{name: "not similar with pipe", reply: "NOT_SIMILAR|whatever", want: Reject},
		{name: "empty", reply: "", want: Reject},
		{name: "whitespace", reply: "   \n", want: Reject},
		{name: "neither marker", reply: "The answer is 42.", want: Reject},
		{name: "bare similar", reply: "SIMILAR", want: Reject},
		{name: "similar with empty answer", reply: "SIMILAR|   ", want: Reject},
		{name: "both markers", reply: "SIMILAR|x NOT_SIMILAR", want: Reject},
		{name: "both markers reversed", reply: "NOT_SIMILAR SIMILAR|x", want: Reject},
		{name: "lowercase marker", reply: "similar|x", want: Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVerdict(tt.reply))
		})
	}
}

func TestParseVerdict_Total(t *testing.T) {
	f := func(reply string) bool {
		d := ParseVerdict(reply)
		switch d.Verdict {
		case Confirmed:
			return d.Answer != ""
		case Rejected:
			return d.Answer == ""
		default:
			return false
		}
	}
	assert.NoError(t, quick.Check(f, nil))
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.True(t, Decision{Verdict: Confirmed, Answer: "a"}.Confirmed())
	assert.False(t, Reject.Confirmed())
}
