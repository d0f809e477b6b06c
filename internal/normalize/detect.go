package normalize

import (
	"strings"
	"unicode"

	"github.com/soc-intake/internal/domain"
)

// RawPayload is an incident payload tagged with its detected format.
type RawPayload struct {
	Text   string
	Format domain.Format
}

// DetectFormat classifies text as XML when its first non-whitespace
// character is '<', and as key-value otherwise.
func DetectFormat(text string) domain.Format {
	if strings.HasPrefix(strings.TrimLeftFunc(text, unicode.IsSpace), "<") {
		return domain.FormatXML
	}
	return domain.FormatKeyValue
}

// NewRawPayload tags text with its detected format.
func NewRawPayload(text string) RawPayload {
	return RawPayload{Text: text, Format: DetectFormat(text)}
}
