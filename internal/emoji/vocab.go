package emoji

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

//go:embed vocabulary.json
var defaultVocabulary []byte

// Vocabulary is the fixed mapping from emoji glyph to its ordered keyword
// tags. It is the document source for the offline index build and the join
// table that enriches vector matches before reranking.
type Vocabulary map[string][]string

// DefaultVocabulary returns the vocabulary embedded in the binary.
func DefaultVocabulary() (Vocabulary, error) {
	return parseVocabulary(defaultVocabulary)
}

// LoadVocabulary reads a vocabulary from a JSON file. An empty path falls
// back to the embedded default.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	return parseVocabulary(data)
}

func parseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing vocabulary: %w", err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	return v, nil
}

// Keywords returns the tags for a glyph, or nil when the glyph is unknown.
// Unknown glyphs are still valid candidates; they just carry no tags.
func (v Vocabulary) Keywords(glyph string) []string {
	return v[glyph]
}

// Glyphs returns all vocabulary glyphs in a stable order, so the offline
// index build is deterministic across runs.
func (v Vocabulary) Glyphs() []string {
	glyphs := make([]string, 0, len(v))
	for g := range v {
		glyphs = append(glyphs, g)
	}
	sort.Strings(glyphs)
	return glyphs
}
