package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func dropRunes(drop func(rune) bool) Strategy {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if drop(r) {
				return -1
			}
			return r
		}, s)
	}
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeDate(date string) string {
	return strings.TrimSpace(date)
}

// NormalizeCell flattens free text for one CSV cell.
func NormalizeCell(s string) string {
	p := Pipeline{
		dropRunes(func(r rune) bool { return r == '\r' }),
		func(s string) string { return strings.ReplaceAll(s, "\n", " ") },
		TrimAndNormalize,
	}
	return p.Apply(s)
}
