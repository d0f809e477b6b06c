// Package normalize turns raw FortiSIEM and FortiGate payloads into
// domain.CanonicalIncident values.
//
// Every step is a pure function of its input. The only error the package
// returns is *domain.MalformedFormatError, for XML documents the decoder
// rejects; key-value input never fails.
package normalize

import "github.com/soc-intake/internal/domain"

// Field is an optional extracted value. The zero value is Missing.
type Field struct {
	value   string
	present bool
}

// Missing is a field the source payload did not carry.
var Missing = Field{}

// Present wraps a value that was found in the payload, even if empty.
func Present(v string) Field {
	return Field{value: v, present: true}
}

// Get returns the value and whether it was present.
func (f Field) Get() (string, bool) {
	return f.value, f.present
}

// Or returns the value, or def when the field is missing.
func (f Field) Or(def string) string {
	if f.present {
		return f.value
	}
	return def
}

// OrNA returns the value, or domain.NotAvailable when missing.
func (f Field) OrNA() string {
	return f.Or(domain.NotAvailable)
}

// firstPresent returns the first present field.
func firstPresent(fields ...Field) Field {
	for _, f := range fields {
		if f.present {
			return f
		}
	}
	return Missing
}

const defaultDescription = "No description provided."

// Common holds the fields both payload formats can supply.
type Common struct {
	IncidentID     Field
	RuleName       Field
	RawSeverity    Field
	SourceIP       Field
	SourceHost     Field
	DestinationIP  Field
	FirewallAction Field
	RawCategory    Field
	Description    Field
	Remediation    Field

	// RawLog is the literal event text the timestamp resolver scans.
	RawLog string
}

// Extracted is the output of exactly one parser: either XMLFields or
// KeyValueFields.
type Extracted interface {
	Format() domain.Format
	Fields() Common
	extracted()
}

// XMLFields is the extraction result for a FortiSIEM incident document.
type XMLFields struct {
	Common

	// DisplayTime is the vendor formatted incident time, e.g.
	// "Wed May 01 14:30:00 ART 2024".
	DisplayTime Field
}

// Format implements Extracted.
func (XMLFields) Format() domain.Format { return domain.FormatXML }

// Fields implements Extracted.
func (x XMLFields) Fields() Common { return x.Common }

func (XMLFields) extracted() {}

// KeyValueFields is the extraction result for a FortiGate log line.
type KeyValueFields struct {
	Common

	URL           Field
	Hostname      Field
	User          Field
	SentBytes     Field
	ReceivedBytes Field
	PolicyID      Field
}

// Format implements Extracted.
func (KeyValueFields) Format() domain.Format { return domain.FormatKeyValue }

// Fields implements Extracted.
func (k KeyValueFields) Fields() Common { return k.Common }

func (KeyValueFields) extracted() {}
