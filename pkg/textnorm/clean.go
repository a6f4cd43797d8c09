// Input cleaning for emotion scoring.
// Strips HTML/XML markup, emoji and control characters, then normalises
// whitespace so the scorer sees plain words.

package textnorm

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

var stripPolicy = bluemonday.StripTagsPolicy()

// Clean runs the cleaning pipeline on raw input:
//  1. Strip HTML / XML tags, inserting spaces between adjacent text nodes
//  2. Strip markup that only appeared after entity decoding
//  3. Remove emoji and non-printable / control characters
//  4. Collapse whitespace and trim
func Clean(text string) string {
	text = stripHTMLWithSpaces(text)
	text = stripResidualMarkup(text)
	text = removeNonPrintable(text)
	text = collapseWhitespace(text)
	return text
}

// Normalize cleans text, lowercases it and folds typographic apostrophes.
func Normalize(text string) string {
	text = Clean(text)
	text = strings.Map(func(r rune) rune {
		switch r {
		case '’', '‘', 'ʼ', '`':
			return '\''
		}
		return unicode.ToLower(r)
	}, text)
	return text
}

// skipTags lists tags whose text content is discarded entirely.
var skipTags = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// stripHTMLWithSpaces tokenizes HTML and joins text nodes with spaces so
// adjacent block-level tags do not produce run-together words.
func stripHTMLWithSpaces(text string) string {
	tokenizer := xhtml.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	b.Grow(len(text))
	depth := 0
	for {
		tt := tokenizer.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if skipTags[string(name)] {
				depth++
			}
		case xhtml.EndTagToken:
			name, _ := tokenizer.TagName()
			if skipTags[string(name)] && depth > 0 {
				depth--
			}
		case xhtml.TextToken:
			if depth > 0 {
				continue
			}
			t := string(tokenizer.Text())
			if strings.TrimSpace(t) != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
	}
	return b.String()
}

// stripResidualMarkup removes tags that were entity-encoded in the input
// ("&lt;b&gt;") and became real markup after the first pass decoded them.
func stripResidualMarkup(text string) string {
	if !looksLikeMarkup(text) {
		return text
	}
	return html.UnescapeString(stripPolicy.Sanitize(text))
}

func looksLikeMarkup(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		c := s[i+1]
		if c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}

// removeNonPrintable drops control characters, emoji and pictographic
// symbols, variation selectors, surrogates and private-use code points.
func removeNonPrintable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	if unicode.Is(unicode.Cc, r) {
		return false
	}
	// variation selectors and zero-width joiner
	if (r >= 0xFE00 && r <= 0xFE1F) || r == 0x200D {
		return false
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	if r >= 0xE000 && r <= 0xF8FF {
		return false
	}
	if r >= 0xF0000 {
		return false
	}
	//   Emoticons:                 1F600–1F64F
	//   Misc Symbols & Pictographs:1F300–1F5FF
	//   Transport & Map:           1F680–1F6FF
	//   Supplemental Symbols:      1F900–1F9FF
	//   Symbols & Pictographs Ext: 1FA00–1FAFF
	//   Dingbats:                  2702–27B0
	//   Misc Symbols:              2600–26FF
	//   Enclosed Alphanumeric Sup: 1F100–1F1FF
	if (r >= 0x1F600 && r <= 0x1F64F) ||
		(r >= 0x1F300 && r <= 0x1F5FF) ||
		(r >= 0x1F680 && r <= 0x1F6FF) ||
		(r >= 0x1F900 && r <= 0x1F9FF) ||
		(r >= 0x1FA00 && r <= 0x1FAFF) ||
		(r >= 0x2702 && r <= 0x27B0) ||
		(r >= 0x2600 && r <= 0x26FF) ||
		(r >= 0x1F100 && r <= 0x1F1FF) {
		return false
	}
	return true
}

// collapseWhitespace replaces whitespace runs with one space and trims.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune(' ')
				inSpace = true
			}
		} else {
			b.WriteRune(r)
			inSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
