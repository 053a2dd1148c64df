package text

import (
	"strings"
	"time"
	"unicode/utf8"
)

// JoinSentence joins units the way they are read inside a sentence: no
// separator before punctuation or after a dot.
func JoinSentence(units []string) string {
	return join(units, func(cur, next string) bool {
		return IsPunctuation(next) || IsDot(cur)
	})
}

// JoinReading joins units for the remaining-text view: no separator around dots.
func JoinReading(units []string) string {
	return join(units, func(cur, next string) bool {
		return IsDot(next) || IsDot(cur)
	})
}

func join(units []string, tight func(cur, next string) bool) string {
	var b strings.Builder
	for i, u := range units {
		b.WriteString(u)
		if i+1 < len(units) && !tight(u, units[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// EstimateDuration returns the heuristic reading time of s at rate: one
// hundred milliseconds per character at rate 1.
func EstimateDuration(s string, rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	ms := float64(utf8.RuneCountInString(s)) * 100 / rate
	return time.Duration(ms * float64(time.Millisecond))
}
