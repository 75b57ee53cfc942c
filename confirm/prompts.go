package confirm

import (
	"fmt"
	"strings"

	"github.com/poiesic/qamatch/core"
)

// DefaultSystemPrompt frames the oracle's role.
const DefaultSystemPrompt = `You are a senior software engineer responsible for matching technical questions by meaning. Always answer strictly in the requested format.`

const userPromptHeader = `You are a senior software engineer with broad practical experience.

Match the user's question against a set of search results.

User question: %s

Find the search result whose question is most similar to the user question. If one is at least %d%% equivalent in meaning, reply SIMILAR and give its answer. If none reaches %d%%, reply NOT_SIMILAR.

Search results:
`

const userPromptFooter = `Reply in exactly one of these formats:
- If a similar question was found: ` + MarkerSimilar + `<answer text>
- If no similar question was found: ` + MarkerNotSimilar + `

Reply with SIMILAR or NOT_SIMILAR only. Do not add anything else.`

// buildUserPrompt lists at most limit candidates in rank order.
func buildUserPrompt(query string, candidates []core.SearchResult, limit, threshold int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, userPromptHeader, query, threshold, threshold)
	for i, c := range candidates {
		if i >= limit {
			break
		}
		fmt.Fprintf(&sb, "%d. Question: %s\n   Answer: %s\n   Similarity: %.4f\n\n",
			i+1, c.Question, c.Answer, c.Similarity)
	}
	sb.WriteString(userPromptFooter)
	return sb.String()
}
