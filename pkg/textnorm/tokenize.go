package textnorm

import (
	"regexp"
	"strings"

	"github.com/sentencizer/sentencizer"
)

// wordPattern keeps contractions ("don't", "i'm") as one token.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:'\p{L}+)*`)

var segmenterEn = sentencizer.NewSegmenter("en")

// Tokenize splits normalized text into word tokens.
func Tokenize(normalized string) []string {
	return wordPattern.FindAllString(normalized, -1)
}

// Words normalizes raw text and tokenizes it.
func Words(raw string) []string {
	return Tokenize(Normalize(raw))
}

// Sentences splits cleaned text into sentences. Blank segments are dropped.
func Sentences(text string) []string {
	text = Clean(text)
	if text == "" {
		return nil
	}
	segs := segmenterEn.Segment(text)
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Join rebuilds the canonical token stream used for phrase matching.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
