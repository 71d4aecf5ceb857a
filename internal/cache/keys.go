package cache

import "fmt"

// Key prefixes for the two logical cache namespaces. Keys are pure functions
// of model identifiers, parameters, and the normalized query; two requests
// that normalize identically always land on the same entry.
const (
	matchPrefix  = "matches"
	searchPrefix = "search"
)

// MatchKey is the match-cache key for a vector lookup: the candidate set
// depends on the embedding model and the topK bound.
func MatchKey(embeddingModel string, topK int, normalizedQuery string) string {
	return fmt.Sprintf("%s:%s:%d:%s", matchPrefix, embeddingModel, topK, normalizedQuery)
}

// SearchKey is the search-cache key for a final sanitized result: the result
// depends on the rerank model.
func SearchKey(rerankModel, normalizedQuery string) string {
	return fmt.Sprintf("%s:%s:%s", searchPrefix, rerankModel, normalizedQuery)
}
