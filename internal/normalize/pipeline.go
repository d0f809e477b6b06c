package normalize

import (
	"time"

	"github.com/soc-intake/internal/domain"
	"github.com/soc-intake/internal/rules"
	"go.uber.org/zap"
)

// Pipeline normalizes raw appliance payloads. It holds no mutable state
// and is safe for concurrent use.
type Pipeline struct {
	categories *rules.CategoryClassifier
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Pipeline.
type Option func(*pipelineOptions)

type pipelineOptions struct {
	rules []*rules.Rule
	now   func() time.Time
}

// WithClock overrides the processing-time source used when no timestamp
// can be recovered from the payload.
func WithClock(now func() time.Time) Option {
	return func(o *pipelineOptions) { o.now = now }
}

// WithCategoryRules replaces the built-in category table.
func WithCategoryRules(r []*rules.Rule) Option {
	return func(o *pipelineOptions) { o.rules = r }
}

// NewPipeline creates a Pipeline using the default category rules.
func NewPipeline(logger *zap.Logger, opts ...Option) *Pipeline {
	o := pipelineOptions{
		rules: rules.DefaultRules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Pipeline{
		categories: rules.NewCategoryClassifier(o.rules, logger),
		now:        o.now,
		logger:     logger.Named("normalizer"),
	}
}

// Extract runs the parser matching the payload's format.
func Extract(raw RawPayload) (Extracted, error) {
	if raw.Format == domain.FormatXML {
		fields, err := ParseXML(raw.Text)
		if err != nil {
			return nil, err
		}
		return fields, nil
	}
	return ParseKeyValue(raw.Text), nil
}

// Normalize detects the payload format, extracts its fields and derives
// severity, category, timestamp and the composed description.
// currentYear completes timestamps that carry no year.
//
// The result depends only on the arguments unless no timestamp can be
// recovered from the payload, in which case processing time is used.
func (p *Pipeline) Normalize(payload string, currentYear int) (*domain.CanonicalIncident, error) {
	raw := NewRawPayload(payload)

	extracted, err := Extract(raw)
	if err != nil {
		p.logger.Debug("payload rejected", zap.String("format", string(raw.Format)), zap.Error(err))
		return nil, err
	}

	inc := p.Canonicalize(extracted, currentYear)

	p.logger.Debug("incident normalized",
		zap.String("format", string(inc.Format)),
		zap.String("severity", string(inc.SeverityName)),
		zap.String("category", inc.Category),
		zap.String("timestamp_source", string(inc.TimestampSource)),
	)

	return inc, nil
}

// Canonicalize derives a CanonicalIncident from extracted fields.
func (p *Pipeline) Canonicalize(ex Extracted, currentYear int) *domain.CanonicalIncident {
	c := ex.Fields()

	inc := &domain.CanonicalIncident{
		Format:         ex.Format(),
		IncidentID:     c.IncidentID.OrNA(),
		RuleName:       c.RuleName.OrNA(),
		SourceIP:       c.SourceIP.OrNA(),
		SourceHost:     c.SourceHost.OrNA(),
		DestinationIP:  c.DestinationIP.OrNA(),
		FirewallAction: c.FirewallAction.OrNA(),
		Description:    c.Description.Or(defaultDescription),
		Remediation:    c.Remediation.Or(""),
		RawLog:         c.RawLog,
	}

	tsInput := TimestampInput{RawLog: c.RawLog, CurrentYear: currentYear}

	switch f := ex.(type) {
	case XMLFields:
		inc.SeverityName = rules.SeverityFromNumeric(c.RawSeverity.Or("0"))
		inc.DisplayTime = f.DisplayTime.Or("")
		tsInput.DisplayTime = f.DisplayTime
	case KeyValueFields:
		inc.SeverityName = rules.SeverityFromLevel(c.RawSeverity.Or(rules.DefaultLevel))
		inc.URL = f.URL.OrNA()
		inc.Hostname = f.Hostname.OrNA()
		inc.User = f.User.OrNA()
		inc.SentBytes = f.SentBytes.OrNA()
		inc.ReceivedBytes = f.ReceivedBytes.OrNA()
		inc.PolicyID = f.PolicyID.OrNA()
	}

	inc.Category = p.categories.Classify(c.RawCategory.OrNA(), inc.RuleName)

	if ts, source, ok := ResolveTimestamp(tsInput); ok {
		inc.ResolvedTimestamp = ts
		inc.TimestampSource = source
	} else {
		inc.ResolvedTimestamp = p.now().UTC()
		inc.TimestampSource = domain.TimestampProcessingTime
	}

	inc.DetailedDescription = ComposeDescription(inc.Description, TechnicalDetails(inc))

	return inc
}
