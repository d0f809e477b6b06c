// Package domain contains the core domain models and types.
// These models represent the business contracts shared by the normalizer,
// the ticket service and the transports, independent of storage.
package domain

import "time"

// NotAvailable is the in-band marker for a field absent from the source payload.
const NotAvailable = "N/A"

// Severity is the canonical four-level incident severity.
type Severity string

const (
	SeverityCritical Severity = "Crítica"
	SeverityHigh     Severity = "Alta"
	SeverityMedium   Severity = "Media"
	SeverityLow      Severity = "Baja"
)

// IsValid checks if the severity value is one of the allowed values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// Format identifies which appliance encoding a payload uses.
type Format string

const (
	// FormatXML is the FortiSIEM XML incident document.
	FormatXML Format = "xml"

	// FormatKeyValue is the FortiGate key=value log line.
	FormatKeyValue Format = "keyvalue"
)

// TimestampSource names the resolver stage that produced an incident time.
type TimestampSource string

const (
	TimestampDisplayTime    TimestampSource = "display_time"
	TimestampDateTime       TimestampSource = "date_time"
	TimestampSyslogHeader   TimestampSource = "syslog_header"
	TimestampProcessingTime TimestampSource = "processing_time"
)

// CanonicalIncident is the normalized form of one appliance payload.
// The JSON field names are the output contract consumed by ticket creation.
type CanonicalIncident struct {
	Format Format `json:"format"`

	IncidentID     string `json:"incident_id"`
	RuleName       string `json:"rule_name"`
	SourceIP       string `json:"source_ip"`
	SourceHost     string `json:"source_host"`
	DestinationIP  string `json:"destination_ip"`
	FirewallAction string `json:"firewall_action"`

	// Category is the resolved category, never NotAvailable.
	Category    string `json:"incident_category"`
	Description string `json:"description"`
	Remediation string `json:"remediation"`
	RawLog      string `json:"raw_log"`

	// Key-value format only.
	URL           string `json:"url,omitempty"`
	Hostname      string `json:"hostname,omitempty"`
	User          string `json:"user,omitempty"`
	SentBytes     string `json:"sentbyte,omitempty"`
	ReceivedBytes string `json:"rcvdbyte,omitempty"`
	PolicyID      string `json:"policyid,omitempty"`

	// XML format only.
	DisplayTime string `json:"display_time,omitempty"`

	SeverityName        Severity        `json:"severity_name"`
	ResolvedTimestamp   time.Time       `json:"resolved_timestamp"`
	TimestampSource     TimestampSource `json:"timestamp_source"`
	DetailedDescription string          `json:"detailed_description"`
}

// TicketStatusNew is the status assigned to tickets created from incidents.
const TicketStatusNew = "Nuevo"

// Ticket is the persisted record built from a CanonicalIncident.
type Ticket struct {
	ID              string    `json:"id"`
	Summary         string    `json:"summary"`
	Description     string    `json:"description"`
	Severity        Severity  `json:"severity"`
	Status          string    `json:"status"`
	Platform        string    `json:"platform"`
	Category        string    `json:"category"`
	RawLogs         string    `json:"raw_logs"`
	RuleName        string    `json:"rule_name"`
	RuleDescription string    `json:"rule_description"`
	RuleRemediation string    `json:"rule_remediation"`
	AffectedDevice  string    `json:"affected_device"`
	ReportedBy      string    `json:"reported_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ResummarizeReport counts the outcome of a bulk re-summarization run.
type ResummarizeReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// IntakeResponse wraps an intake result with metadata.
type IntakeResponse struct {
	// Success indicates whether the payload was accepted.
	Success bool `json:"success"`

	// Ticket is the created ticket, if any.
	Ticket *Ticket `json:"ticket,omitempty"`

	// Incident is the normalized incident, if any.
	Incident *CanonicalIncident `json:"incident,omitempty"`

	// Error contains error details if the intake failed.
	Error string `json:"error,omitempty"`

	// ProcessedAt is the timestamp when the request was completed.
	ProcessedAt time.Time `json:"processed_at"`
}
