package telegram

import (
	"strings"
	"unicode/utf16"
)

// SplitMessage cuts text into pieces of at most limit UTF-16 code units, the
// unit Telegram counts message length in. It prefers newline and then space
// boundaries. Pieces are trimmed, blank pieces are dropped, and empty text
// yields no pieces.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if UTF16Len(text) <= limit {
		return []string{text}
	}

	var out []string
	runes := []rune(text)
	for len(runes) > 0 {
		end := fitPrefix(runes, limit)
		cut := end
		if end < len(runes) {
			if i := lastIndex(runes[:end], '\n'); i > 0 {
				cut = i
			} else if i := lastIndex(runes[:end], ' '); i > 0 {
				cut = i
			}
		}
		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			out = append(out, chunk)
		}
		runes = runes[cut:]
	}
	return out
}

// UTF16Len reports the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// fitPrefix returns how many leading runes fit in limit code units. It is at
// least one so that a split always makes progress.
func fitPrefix(rs []rune, limit int) int {
	units := 0
	for i, r := range rs {
		units += runeUnits(r)
		if units > limit {
			if i == 0 {
				return 1
			}
			return i
		}
	}
	return len(rs)
}

func runeUnits(r rune) int {
	// invalid runes are sent as U+FFFD, one unit
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func lastIndex(rs []rune, r rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
