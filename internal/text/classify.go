// Package text classifies the tokens that the tagger and chunker operate on
// and holds the shared join and timing helpers.
//
// Every predicate is total: it accepts any string, including the empty one,
// and never panics.
package text

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	wordRe              = regexp.MustCompile(`^[a-zA-Z]`)
	wordWithNumbersRe   = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	leadingNumberRe     = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	whitespaceCharRe    = regexp.MustCompile(`^[\n\r\t]+$`)
	punctuationRe       = regexp.MustCompile(`^[.,;:!?]+$`)
	punctuationButDotRe = regexp.MustCompile(`^[,;:!?]+$`)
	parensRe            = regexp.MustCompile(`^[()\[\]{}]+$`)
	tagRe               = regexp.MustCompile(`<.+?>`)
	angleBracketedRe    = regexp.MustCompile(`^<+.*>+\.?$`)
	specialReadableRe   = regexp.MustCompile(`^[@#\\/_*^°£$%&=+]+$`)
	specialUnreadableRe = regexp.MustCompile("^[()\\[\\]{}'\"<>`|-]+$")
	specialCharacterRe  = regexp.MustCompile("^[.,;:\\-_`'\"*+()\\[\\]{}<>\\s]$")
	htmlEntityRe        = regexp.MustCompile(`&[a-z]+?;+`)
)

// IsWord reports whether s starts with an ASCII letter.
func IsWord(s string) bool { return wordRe.MatchString(s) }

// IsWordWithNumbers reports whether s is made only of ASCII letters and digits.
func IsWordWithNumbers(s string) bool { return wordWithNumbersRe.MatchString(s) }

// IsNumber reports whether s reads as a finite number. A token with a
// non-zero numeric prefix ("12px") counts; blank strings do not.
func IsNumber(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	}
	prefix := leadingNumberRe.FindString(t)
	if prefix == "" {
		return false
	}
	f, err := strconv.ParseFloat(prefix, 64)
	return err == nil && f != 0 && !math.IsInf(f, 0)
}

func IsSpace(s string) bool { return s == " " }

func IsEmpty(s string) bool { return s == "" }

func IsDot(s string) bool { return s == "." }

func IsZero(s string) bool { return s == "0" }

// IsWhitespaceChar reports whether s is a run of newlines, carriage returns or tabs.
func IsWhitespaceChar(s string) bool { return whitespaceCharRe.MatchString(s) }

func IsPunctuation(s string) bool { return punctuationRe.MatchString(s) }

func IsPunctuationButDot(s string) bool { return punctuationButDotRe.MatchString(s) }

func IsParens(s string) bool { return parensRe.MatchString(s) }

// IsTag reports whether s contains something shaped like a markup tag.
func IsTag(s string) bool { return tagRe.MatchString(s) }

// IsWordInsideAngleBrackets matches tokens such as "<stdin>" or "<<EOF>>.".
func IsWordInsideAngleBrackets(s string) bool { return angleBracketedRe.MatchString(s) }

// IsSpecialReadable matches symbols an engine pronounces ("@", "%", "=").
func IsSpecialReadable(s string) bool { return specialReadableRe.MatchString(s) }

// IsSpecialUnreadable matches symbols an engine skips ("(", "|", "--").
func IsSpecialUnreadable(s string) bool { return specialUnreadableRe.MatchString(s) }

// IsSpecialCharacter matches a single structural character.
func IsSpecialCharacter(s string) bool { return specialCharacterRe.MatchString(s) }

func IsHTMLEntity(s string) bool { return htmlEntityRe.MatchString(s) }

// IsSentenceTerminator reports whether r closes a sentence.
func IsSentenceTerminator(r rune) bool {
	switch r {
	case '.', '?', '!', ';':
		return true
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon, 02 Jan 2006",
}

// IsValidDate reports whether s parses as a calendar date in one of the
// common written layouts.
func IsValidDate(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, t); err == nil {
			return true
		}
	}
	return false
}
