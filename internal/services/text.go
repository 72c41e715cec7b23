package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Ellipsis marks a truncated text.
const Ellipsis = "…"

// Text limits, in runes.
const (
	MaxThreadPreview = 200
	MaxInAppPreview  = 140
	MaxPushBody      = 120
)

// Truncate NFC-normalizes and trims s, then cuts it to at most max runes.
// A cut text keeps max-1 runes followed by Ellipsis.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + Ellipsis
}
