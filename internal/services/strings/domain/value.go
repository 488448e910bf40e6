// Package domain holds the rules a string entry value must satisfy.
package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
)

// MaxValueLength is the largest accepted value, in characters.
const MaxValueLength = 255

// ValueField names the validated field in error metadata.
const ValueField = "value"

// Rule names reported in validation error metadata.
const (
	RuleBlank      = "blank"
	RuleLength     = "length"
	RuleCharacters = "characters"
)

// ValidateValue checks a candidate value. A value is accepted when it is not
// blank, has 1 to MaxValueLength characters, and every character is ASCII
// whitespace or ASCII printable.
//
// The returned error is a *errors.Error with code VALUE_BLANK or
// VALUE_INVALID_FORMAT and metadata naming the field and rule.
func ValidateValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.WithMetadata(apperrors.CodeValueBlank, "value is blank", metadata(RuleBlank))
	}
	if n := utf8.RuneCountInString(value); n < 1 || n > MaxValueLength {
		return apperrors.WithMetadata(
			apperrors.CodeValueInvalidFormat,
			"value length "+strconv.Itoa(n)+" is outside [1, "+strconv.Itoa(MaxValueLength)+"]",
			metadata(RuleLength),
		)
	}
	for i, r := range value {
		if !isSpace(r) && !isGraph(r) {
			return apperrors.WithMetadata(
				apperrors.CodeValueInvalidFormat,
				"value has a disallowed character at byte "+strconv.Itoa(i),
				metadata(RuleCharacters),
			)
		}
	}
	return nil
}

func metadata(rule string) map[string]string {
	return map[string]string{
		"field":      ValueField,
		"rule":       rule,
		"max_length": strconv.Itoa(MaxValueLength),
	}
}

// isSpace matches the ASCII whitespace class: space, \t, \n, \v, \f, \r.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// isGraph matches visible ASCII characters.
func isGraph(r rune) bool {
	return r >= 0x21 && r <= 0x7e
}
