package prompthook

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxTitleWords = 3

var (
	nonWord = regexp.MustCompile(`[^\w\s]`)

	stopwords = map[string]bool{
		"the": true, "and": true, "but": true, "for": true,
		"are": true, "with": true, "you": true, "can": true,
	}
)

// DeriveTitle builds a short tab title from a prompt: punctuation is
// dropped, short words and stopwords are skipped, and the first three
// remaining words are joined in sentence case with a trailing ellipsis.
// fallback is returned when nothing survives the filtering.
func DeriveTitle(prompt, fallback string) string {
	var words []string
	for _, w := range strings.Fields(nonWord.ReplaceAllString(prompt, " ")) {
		if utf8.RuneCountInString(w) <= 2 || stopwords[strings.ToLower(w)] {
			continue
		}
		words = append(words, strings.ToLower(w))
		if len(words) == maxTitleWords {
			break
		}
	}

	if len(words) == 0 {
		return fallback
	}

	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ") + "..."
}
