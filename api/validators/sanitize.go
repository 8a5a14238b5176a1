package validators

import (
	"strings"
	"unicode"
)

// SanitizeString drops control characters, collapses runs of whitespace and
// truncates to maxLen runes. A maxLen of 0 disables truncation.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	pendingSpace := false
	runes := 0
	for _, ch := range input {
		switch {
		case unicode.IsSpace(ch):
			pendingSpace = b.Len() > 0
			continue
		case unicode.IsControl(ch):
			continue
		}
		if maxLen > 0 && runes >= maxLen {
			break
		}
		if pendingSpace {
			if maxLen > 0 && runes+1 >= maxLen {
				break
			}
			b.WriteByte(' ')
			runes++
			pendingSpace = false
		}
		b.WriteRune(ch)
		runes++
	}
	return b.String()
}
