package rerank

import (
	"fmt"
	"strings"
)

// systemPrompt fixes the model's role and the filtering rules. Rule order
// matters less than the constraints: candidates only, no duplicates,
// permissive inclusion, at least 10 when plausible, most-to-least relevant.
const systemPrompt = `You are an emoji search engine expert. Your task is to filter a candidate list for a query.

Rules:
1. Return ONLY valid Unicode emojis (no text, kaomoji, or descriptions)
2. You MUST choose emojis only from the provided candidate list
3. Be very permissive: keep as many emojis as possible that could plausibly match
4. Filter out only emojis that are clearly unrelated
5. Return at least 10 emojis, more is better
6. Never repeat emojis
7. Return emojis in order from most to least relevant
8. Respond with a JSON object of the form {"emojis": ["...", "..."]}
`

// userPrompt renders the query and candidate list, one candidate per line as
// "glyph: space-joined keywords".
func userPrompt(query string, candidates []Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\n\nCandidate emojis:\n", query)
	for _, c := range candidates {
		b.WriteString(c.ID)
		b.WriteString(": ")
		b.WriteString(strings.Join(c.Keywords, " "))
		b.WriteByte('\n')
	}
	b.WriteString("\nReturn a filtered list from the candidate emojis. Keep as many as possible, and drop only the clearly unrelated ones.")
	return b.String()
}
