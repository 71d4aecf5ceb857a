package emoji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmoji(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "simple emoji", input: "🐱", want: true},
		{name: "cat face", input: "🐈", want: true},
		{name: "dingbat with selector", input: "✌️", want: true},
		{name: "dingbat without selector", input: "☀", want: true},
		{name: "skin tone sequence", input: "👍🏽", want: true},
		{name: "zwj family", input: "👨‍👩‍👧", want: true},
		{name: "flag sequence", input: "🇯🇵", want: true},
		{name: "keycap", input: "1️⃣", want: true},
		{name: "copyright with selector", input: "©️", want: true},
		{name: "empty string", input: "", want: false},
		{name: "plain word", input: "cat", want: false},
		{name: "single letter", input: "a", want: false},
		{name: "digit without keycap", input: "1", want: false},
		{name: "kaomoji", input: "(=^･ω･^=)", want: false},
		{name: "ascii smiley", input: ":-)", want: false},
		{name: "two emojis", input: "🐱🐶", want: false},
		{name: "emoji plus text", input: "🐱 cat", want: false},
		{name: "whitespace", input: " ", want: false},
		{name: "lone zwj", input: "‍", want: false},
		{name: "lone variation selector", input: "️", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmoji(tt.input), "input %q", tt.input)
		})
	}
}

func TestNormalizationKey(t *testing.T) {
	assert.Equal(t, "☀", NormalizationKey("☀️"))
	assert.Equal(t, "☀", NormalizationKey("☀︎"))
	assert.Equal(t, "🐱", NormalizationKey("🐱"))

	// Idempotent: stripping twice changes nothing.
	once := NormalizationKey("✌️")
	assert.Equal(t, once, NormalizationKey(once))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "passes valid emojis through in order",
			input: []string{"🐱", "🐈", "🐶"},
			want:  []string{"🐱", "🐈", "🐶"},
		},
		{
			name:  "drops text tokens",
			input: []string{"🐱", "cat", "🐶", "definitely not an emoji"},
			want:  []string{"🐱", "🐶"},
		},
		{
			name:  "drops exact duplicates keeping first",
			input: []string{"🐱", "🐱", "🐶"},
			want:  []string{"🐱", "🐶"},
		},
		{
			name:  "collapses presentation variants",
			input: []string{"☀️", "☀", "🐱"},
			want:  []string{"☀️", "🐱"},
		},
		{
			name:  "drops kaomoji",
			input: []string{"(=^･ω･^=)", "🐱"},
			want:  []string{"🐱"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
		{
			name:  "all invalid",
			input: []string{"abc", "", ":-)"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			assert.Equal(t, tt.want, got)

			// No duplicates under normalization-key comparison, ever.
			seen := map[string]bool{}
			for _, g := range got {
				key := NormalizationKey(g)
				assert.False(t, seen[key], "duplicate key %q", key)
				seen[key] = true
			}
		})
	}
}

func TestDefaultVocabulary(t *testing.T) {
	v, err := DefaultVocabulary()
	require.NoError(t, err)
	require.NotEmpty(t, v)

	// Every glyph in the shipped table must be a valid single emoji with at
	// least one keyword.
	for _, g := range v.Glyphs() {
		assert.True(t, IsEmoji(g), "vocabulary glyph %q is not a valid emoji", g)
		assert.NotEmpty(t, v.Keywords(g), "vocabulary glyph %q has no keywords", g)
	}
}

func TestVocabularyGlyphsStableOrder(t *testing.T) {
	v, err := DefaultVocabulary()
	require.NoError(t, err)

	first := v.Glyphs()
	second := v.Glyphs()
	assert.Equal(t, first, second)
}

func TestVocabularyKeywordsUnknownGlyph(t *testing.T) {
	v := Vocabulary{"🐱": {"cat"}}
	assert.Nil(t, v.Keywords("🛸"))
	assert.Equal(t, []string{"cat"}, v.Keywords("🐱"))
}
