package confirm

import "strings"

// Reply markers. They form the protocol with the oracle and must not change.
const (
	MarkerSimilar    = "SIMILAR|"
	MarkerNotSimilar = "NOT_SIMILAR"
)

const (
	similarWord = "SIMILAR"
	notPrefix   = "NOT_"
)

// Verdict is the outcome of a confirmation.
type Verdict int

const (
	// Rejected means no candidate was confirmed.
	Rejected Verdict = iota
	// Confirmed means the oracle accepted a candidate and supplied its answer.
	Confirmed
)

func (v Verdict) String() string {
	switch v {
	case Confirmed:
		return "confirmed"
	default:
		return "rejected"
	}
}

// Decision is the result of Gate.Decide. Answer is empty unless Verdict is
// Confirmed.
type Decision struct {
	Verdict Verdict
	Answer  string
}

// Confirmed reports whether the decision carries an answer.
func (d Decision) Confirmed() bool {
	return d.Verdict == Confirmed
}

// Reject is the zero-answer Rejected decision.
var Reject = Decision{Verdict: Rejected}

// marker occurrences found by scan.
type markers struct {
	similar    int // offset just past the first SIMILAR|, or -1
	notSimilar bool
}

// scan walks every occurrence of SIMILAR in reply and classifies it. An
// occurrence preceded by NOT_ is a NOT_SIMILAR marker regardless of what
// follows, so "NOT_SIMILAR|x" never counts as a positive marker.
func scan(reply string) markers {
	m := markers{similar: -1}
	from := 0
	for {
		i := strings.Index(reply[from:], similarWord)
		if i < 0 {
			return m
		}
		pos := from + i
		end := pos + len(similarWord)
		switch {
		case pos >= len(notPrefix) && reply[pos-len(notPrefix):pos] == notPrefix:
			m.notSimilar = true
		case end < len(reply) && reply[end] == '|':
			if m.similar < 0 {
				m.similar = end + 1
			}
		}
		from = end
	}
}

// ParseVerdict maps an oracle reply onto a Decision.
//
// A reply is Confirmed only when it contains SIMILAR| followed by a non-empty
// answer and contains no NOT_SIMILAR. Everything after the first SIMILAR| is
// the answer, trimmed. Every other reply, including the empty string, is
// Rejected.
func ParseVerdict(reply string) Decision {
	m := scan(reply)
	if m.notSimilar || m.similar < 0 {
		return Reject
	}
	answer := strings.TrimSpace(reply[m.similar:])
	if answer == "" {
		return Reject
	}
	return Decision{Verdict: Confirmed, Answer: answer}
}
