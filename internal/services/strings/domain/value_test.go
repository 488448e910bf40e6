package domain

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
)

func TestValidateValueAccepts(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "single printable", value: "a"},
		{name: "max length", value: strings.Repeat("a", MaxValueLength)},
		{name: "words and punctuation", value: "alpha one, beta two!"},
		{name: "embedded tab and newline", value: "line\tone\nline two"},
		{name: "surrounding spaces", value: "  padded  "},
		{name: "every printable ascii", value: printableASCII()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateValue(tc.value); err != nil {
				t.Fatalf("validate %q: %v", tc.value, err)
			}
		})
	}
}

func TestValidateValueRejects(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantCode apperrors.Code
		wantRule string
	}{
		{name: "empty", value: "", wantCode: apperrors.CodeValueBlank, wantRule: RuleBlank},
		{name: "spaces only", value: "   ", wantCode: apperrors.CodeValueBlank, wantRule: RuleBlank},
		{name: "newline only", value: "\n", wantCode: apperrors.CodeValueBlank, wantRule: RuleBlank},
		{name: "tab only", value: "\t", wantCode: apperrors.CodeValueBlank, wantRule: RuleBlank},
		{name: "too long", value: strings.Repeat("a", MaxValueLength+1), wantCode: apperrors.CodeValueInvalidFormat, wantRule: RuleLength},
		{name: "bell character", value: "ring\a", wantCode: apperrors.CodeValueInvalidFormat, wantRule: RuleCharacters},
		{name: "bell only", value: "\a", wantCode: apperrors.CodeValueInvalidFormat, wantRule: RuleCharacters},
		{name: "nul", value: "a\x00b", wantCode: apperrors.CodeValueInvalidFormat, wantRule: RuleCharacters},
		{name: "delete", value: "a\x7f", wantCode: apperrors.CodeValueInvalidFormat, wantRule: RuleCharacters},
		{name: "non ascii", value: "café", wantCode: apperrors.CodeValueInvalidFormat, wantRule: RuleCharacters},
		{name: "invalid utf8", value: "a\xffb", wantCode: apperrors.CodeValueInvalidFormat, wantRule: RuleCharacters},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateValue(tc.value)
			var domainErr *apperrors.Error
			if !errors.As(err, &domainErr) {
				t.Fatalf("error = %v, want *errors.Error", err)
			}
			if domainErr.Code != tc.wantCode {
				t.Fatalf("code = %s, want %s", domainErr.Code, tc.wantCode)
			}
			if got := domainErr.Metadata["rule"]; got != tc.wantRule {
				t.Fatalf("rule = %q, want %q", got, tc.wantRule)
			}
			if got := domainErr.Metadata["field"]; got != ValueField {
				t.Fatalf("field = %q, want %q", got, ValueField)
			}
		})
	}
}

func TestValidateValueCountsCharactersNotBytes(t *testing.T) {
	// 255 two-byte characters are rejected for their class, not their length.
	err := ValidateValue(strings.Repeat("é", MaxValueLength))
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Metadata["rule"] != RuleCharacters {
		t.Fatalf("error = %v, want characters rule", err)
	}
}

func printableASCII() string {
	var b strings.Builder
	for r := rune(0x20); r <= 0x7e; r++ {
		b.WriteRune(r)
	}
	return b.String()
}
