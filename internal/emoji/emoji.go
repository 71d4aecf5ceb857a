// Package emoji provides emoji validation, normalization, and deduplication,
// plus the static glyph-to-keywords vocabulary used to enrich vector matches.
//
// Model output is untrusted free-form text. Sanitize is the single trusted
// correctness step between the reranking model and anything cached or
// returned to a caller.
package emoji

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Code points stripped when computing a normalization key. Presentation
// variants of the same glyph (e.g. ☺ vs ☺️) must collapse to one entry.
const (
	variationSelectorText  = '︎'
	variationSelectorEmoji = '️'
)

// NormalizationKey returns the glyph with emoji/text variation selectors
// stripped. Used for duplicate detection, never for display.
func NormalizationKey(glyph string) string {
	return strings.Map(func(r rune) rune {
		if r == variationSelectorText || r == variationSelectorEmoji {
			return -1
		}
		return r
	}, glyph)
}

// IsEmoji reports whether s is a single valid emoji: exactly one grapheme
// cluster, built entirely from emoji code points. Plain text, kaomoji, and
// multi-glyph strings are rejected.
func IsEmoji(s string) bool {
	if s == "" {
		return false
	}

	cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	if rest != "" || cluster == "" {
		return false
	}

	hasBase := false
	hasKeycap := false
	for _, r := range cluster {
		if r == combiningKeycap {
			hasKeycap = true
		}
	}
	for _, r := range cluster {
		switch {
		case isEmojiBase(r):
			hasBase = true
		case isEmojiModifier(r):
			// joiners, selectors, skin tones, tags: valid only alongside a base
		case isKeycapBase(r) && hasKeycap:
			hasBase = true
		default:
			return false
		}
	}
	return hasBase
}

const combiningKeycap = '⃣'

// isKeycapBase reports whether r can start a keycap sequence (e.g. 1️⃣).
func isKeycapBase(r rune) bool {
	return (r >= '0' && r <= '9') || r == '#' || r == '*'
}

// isEmojiModifier reports whether r is a continuation code point that may
// appear inside an emoji sequence but never stands alone.
func isEmojiModifier(r rune) bool {
	switch {
	case r == '‍': // zero width joiner
		return true
	case r == variationSelectorText || r == variationSelectorEmoji:
		return true
	case r == combiningKeycap:
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag characters (subdivision flags)
		return true
	}
	return false
}

// isEmojiBase reports whether r is a code point that can carry an emoji on
// its own. Ranges follow the Unicode emoji blocks plus the scattered
// singletons that predate them.
func isEmojiBase(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // mahjong through symbols-extended
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // misc symbols and arrows
		return true
	case r >= 0x2190 && r <= 0x21FF: // arrows (emoji with VS16)
		return true
	case r >= 0x2300 && r <= 0x23FF: // misc technical (⌚ ⏰ ⏳)
		return true
	case r >= 0x25A0 && r <= 0x25FF: // geometric shapes
		return true
	case r >= 0x2900 && r <= 0x297F: // supplemental arrows
		return true
	}
	switch r {
	case 0x00A9, 0x00AE, // © ®
		0x203C, 0x2049, // ‼ ⁉
		0x2122, 0x2139, // ™ ℹ
		0x24C2,         // Ⓜ
		0x3030, 0x303D, // 〰 〽
		0x3297, 0x3299: // ㊗ ㊙
		return true
	}
	return false
}

// Sanitize filters a raw glyph list down to valid, distinct emojis, keeping
// the first occurrence of each normalization key and preserving order.
func Sanitize(raw []string) []string {
	clean := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, glyph := range raw {
		if !IsEmoji(glyph) {
			continue
		}
		key := NormalizationKey(glyph)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, glyph)
	}
	return clean
}
