package match

import (
	"regexp"
	"strings"
)

var (
	trailingYearPattern = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	punctuationPattern  = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// NormalizeTitle canonicalizes a title for comparison: lowercase, trailing
// "(YYYY)" removed, leading "the " removed, punctuation stripped, and
// whitespace collapsed.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = trailingYearPattern.ReplaceAllString(normalized, "")
	normalized = strings.TrimPrefix(normalized, "the ")
	normalized = punctuationPattern.ReplaceAllString(normalized, "")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// Similarity scores two normalized titles in [0,1] by greedy character
// overlap: each character of the shorter string consumes the first unused
// matching position in the longer one, and the match count is divided by
// the longer length. Identical strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(longer) == 0 {
		return 0
	}

	used := make([]bool, len(longer))
	matched := 0
	for _, ch := range shorter {
		for i, candidate := range longer {
			if !used[i] && candidate == ch {
				used[i] = true
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(longer))
}
