package retrain

import (
	"strings"
	"unicode/utf8"

	"github.com/bbalet/stopwords"

	"github.com/qubicDB/emocore/pkg/lexicon"
)

// builtinStopWords covers chat filler the English list misses.
var builtinStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"i": true, "im": true, "i'm": true, "ive": true, "i've": true, "me": true, "my": true,
	"you": true, "your": true, "it": true, "it's": true, "its": true, "is": true,
	"am": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "this": true, "that": true, "just": true, "today": true,
	"really": true, "feel": true, "feeling": true, "felt": true, "lol": true,
	"yeah": true,
}

// IsStopWord reports whether word carries no emotional signal on its own.
// Negation words and intensifiers count as stop words since the scorer
// treats them as modifiers.
func IsStopWord(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return true
	}
	if builtinStopWords[word] {
		return true
	}
	if lexicon.IsNegation(word) {
		return true
	}
	if _, ok := lexicon.Intensifier(word); ok {
		return true
	}
	if isNumeric(word) {
		return true
	}
	return strings.TrimSpace(stopwords.CleanString(word, "en", false)) == ""
}

func isNumeric(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
