// Package i18n renders user-facing error messages in the caller's locale.
package i18n

import (
	"fmt"
	"strings"

	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the locales with a message table; the first is the default.
var Supported = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

// messageArgs names the metadata keys fed, in order, to each code's format.
var messageArgs = map[apperrors.Code][]string{
	apperrors.CodeValueInvalidFormat: {"max_length"},
	apperrors.CodeInvalidPage:        {"param"},
	apperrors.CodeInvalidSort:        {"param"},
	apperrors.CodeInvalidID:          {"id"},
}

var (
	matcher = language.NewMatcher(Supported)
	builder = mustBuild()
)

// Catalog formats error codes for one locale.
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
}

// ForTag returns the catalog for the supported locale closest to tag.
func ForTag(tag language.Tag) *Catalog {
	_, idx, _ := matcher.Match(tag)
	resolved := Supported[idx]
	return &Catalog{
		tag:     resolved,
		printer: message.NewPrinter(resolved, message.Catalog(builder)),
	}
}

// Resolve picks a catalog from an explicit locale (e.g. a "lang" query
// parameter) or, failing that, an Accept-Language header value.
func Resolve(explicit string, acceptLanguage string) *Catalog {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			return ForTag(tag)
		}
	}
	if acceptLanguage = strings.TrimSpace(acceptLanguage); acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			_, idx, _ := matcher.Match(tags...)
			return ForTag(Supported[idx])
		}
	}
	return ForTag(Supported[0])
}

// Locale returns the BCP 47 tag of this catalog.
func (c *Catalog) Locale() string {
	return c.tag.String()
}

// Format renders the message for code using metadata as arguments.
// Unknown codes render as the code itself.
func (c *Catalog) Format(code apperrors.Code, metadata map[string]string) string {
	if _, ok := messages[code]; !ok {
		return string(code)
	}
	keys := messageArgs[code]
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		args = append(args, metadata[key])
	}
	return c.printer.Sprintf(string(code), args...)
}

// FormatError renders err, falling back to the unknown-error message for
// errors outside the platform taxonomy.
func (c *Catalog) FormatError(err error) string {
	if domainErr, ok := apperrors.As(err); ok {
		return c.Format(domainErr.Code, domainErr.Metadata)
	}
	return c.Format(apperrors.CodeUnknown, nil)
}

func mustBuild() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for code, byLocale := range messages {
		for tag, msg := range byLocale {
			if err := b.SetString(tag, string(code), msg); err != nil {
				panic(fmt.Sprintf("register %s message for %s: %v", tag, code, err))
			}
		}
	}
	return b
}
