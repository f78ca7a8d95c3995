package render

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// TokenEstimate approximates the LLM token count of s as ceil(n/4), where n
// is the length of s in UTF-16 code units.
func TokenEstimate(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return (n + 3) / 4
}

// TokenLabel formats a token count with the locale's thousands separator
func TokenLabel(tokens int, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", tokens)
}

// SizeLabel formats a byte count in base-1024 units with at most two
// decimals, trailing zeros trimmed: 0 → "0 Bytes", 1536 → "1.5 KB".
func SizeLabel(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	i := 0
	value := float64(n)
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100

	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + " " + sizeUnits[i]
}
