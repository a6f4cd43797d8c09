package core

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// DefaultMaxTextBytes bounds interaction text accepted by the log.
const DefaultMaxTextBytes = 16 * 1024

var maxTextBytes atomic.Int64

func init() {
	maxTextBytes.Store(DefaultMaxTextBytes)
}

// SetMaxTextBytes overrides the runtime text size limit.
func SetMaxTextBytes(limit int64) error {
	if limit <= 0 {
		return fmt.Errorf("max text bytes must be > 0")
	}
	maxTextBytes.Store(limit)
	return nil
}

// GetMaxTextBytes returns the active text size limit.
func GetMaxTextBytes() int64 {
	limit := maxTextBytes.Load()
	if limit <= 0 {
		return DefaultMaxTextBytes
	}
	return limit
}

// ValidateText ensures text is non-blank and within the size limit.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	size := len(text)
	if limit := GetMaxTextBytes(); int64(size) > limit {
		return fmt.Errorf("%w: %d bytes > %d", ErrTextTooLarge, size, limit)
	}
	return nil
}

// TruncateText cuts text to the size limit on a rune boundary.
func TruncateText(text string) string {
	limit := int(GetMaxTextBytes())
	if len(text) <= limit {
		return text
	}
	// back off over a rune split by the limit
	cut := limit
	for i := 0; i < utf8.UTFMax-1 && cut > 0 && !utf8.RuneStart(text[cut]); i++ {
		cut--
	}
	return text[:cut]
}
