// Package sanitizer normalizes customer-supplied booking data before
// validation and storage.
//
// All functions are idempotent - applying them twice produces the same
// result. Invalid input is handled by returning the cleaned-up remainder
// rather than an error.
package sanitizer

import (
	"regexp"
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

var rePhoneNoise = regexp.MustCompile(`[\s\-().]+`)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to a single space.
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

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeNotes(notes string) string {
	return TrimAndNormalize(notes)
}

// NormalizePhone strips separators and keeps digits plus an optional
// leading +. It does not attempt region-aware formatting; the validator
// decides whether the result is an acceptable phone number.
func NormalizePhone(phone string) string {
	phone = rePhoneNoise.ReplaceAllString(strings.TrimSpace(phone), "")
	if phone == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			result.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
