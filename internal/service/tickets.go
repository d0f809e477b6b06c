// Package service contains the business logic layer.
package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/soc-intake/internal/domain"
	"github.com/soc-intake/internal/normalize"
	"github.com/soc-intake/internal/store"
	"github.com/soc-intake/pkg/sanitizer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Normalizer turns a raw payload into a CanonicalIncident.
type Normalizer interface {
	Normalize(payload string, currentYear int) (*domain.CanonicalIncident, error)
}

// Tickets creates tickets from appliance payloads and keeps their
// summaries in step with the normalizer.
type Tickets struct {
	normalizer Normalizer
	store      store.TicketStore
	sanitizer  *sanitizer.Sanitizer
	config     TicketsConfig
	now        func() time.Time
	newID      func() string
	logger     *zap.Logger
}

// TicketsConfig contains configuration for the Tickets service.
type TicketsConfig struct {
	Reporter           string
	Platform           string
	ResummarizeWorkers int
}

// NewTickets creates a new Tickets service with all dependencies.
func NewTickets(
	normalizer Normalizer,
	ticketStore store.TicketStore,
	sanitizer *sanitizer.Sanitizer,
	config TicketsConfig,
	logger *zap.Logger,
) *Tickets {
	if config.ResummarizeWorkers < 1 {
		config.ResummarizeWorkers = 1
	}
	return &Tickets{
		normalizer: normalizer,
		store:      ticketStore,
		sanitizer:  sanitizer,
		config:     config,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		logger:     logger.Named("tickets"),
	}
}

// currentYear is the year in the appliances' zone, used to complete
// syslog headers.
func (s *Tickets) currentYear() int {
	return s.now().In(normalize.SourceLocation).Year()
}

// Normalize validates and normalizes payload without persisting anything.
func (s *Tickets) Normalize(ctx context.Context, payload string) (*domain.CanonicalIncident, error) {
	if err := s.validate(payload); err != nil {
		return nil, err
	}

	inc, err := s.normalizer.Normalize(payload, s.currentYear())
	if err != nil {
		s.logger.Warn("payload could not be normalized",
			zap.Error(err),
			zap.String("payload_preview", s.sanitizer.Preview(payload)),
		)
		return nil, domain.WrapError("normalize", err, true)
	}
	return inc, nil
}

// CreateFromPayload normalizes payload and stores a new ticket built from
// the result.
func (s *Tickets) CreateFromPayload(ctx context.Context, payload string) (*domain.Ticket, error) {
	startTime := time.Now()
	s.logger.Debug("incident received", zap.String("payload_preview", s.sanitizer.Preview(payload)))

	inc, err := s.Normalize(ctx, payload)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ID:              s.newID(),
		Summary:         inc.RuleName,
		Description:     inc.DetailedDescription,
		Severity:        inc.SeverityName,
		Status:          domain.TicketStatusNew,
		Platform:        s.config.Platform,
		Category:        inc.Category,
		RawLogs:         inc.RawLog,
		RuleName:        inc.RuleName,
		RuleDescription: inc.Description,
		RuleRemediation: inc.Remediation,
		AffectedDevice:  inc.SourceHost,
		ReportedBy:      s.config.Reporter,
		CreatedAt:       inc.ResolvedTimestamp,
		UpdatedAt:       now,
	}

	if err := s.store.Create(ctx, ticket); err != nil {
		return nil, domain.WrapError("store_ticket", err, false)
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("format", string(inc.Format)),
		zap.String("severity", string(ticket.Severity)),
		zap.String("category", ticket.Category),
		zap.String("timestamp_source", string(inc.TimestampSource)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return ticket, nil
}

// Get returns a stored ticket.
func (s *Tickets) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.store.Get(ctx, id)
}

// Resummarize re-runs the normalizer over every stored raw log and
// overwrites summary, description and severity. A ticket is only
// overwritten when the new rule name is usable, so a parser regression
// cannot blank out a good summary. Failures on single tickets are logged
// and counted, never returned.
func (s *Tickets) Resummarize(ctx context.Context) (domain.ResummarizeReport, error) {
	tickets, err := s.store.List(ctx)
	if err != nil {
		return domain.ResummarizeReport{}, domain.WrapError("list_tickets", err, false)
	}

	year := s.currentYear()
	var updated, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.ResummarizeWorkers)

	for _, t := range tickets {
		if strings.TrimSpace(t.RawLogs) == "" {
			skipped.Add(1)
			continue
		}

		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			inc, err := s.normalizer.Normalize(t.RawLogs, year)
			if err != nil {
				s.logger.Warn("could not re-parse raw log", zap.String("ticket_id", t.ID), zap.Error(err))
				failed.Add(1)
				return nil
			}

			if !usableRuleName(inc.RuleName) {
				s.logger.Debug("skipping ticket without a usable rule name", zap.String("ticket_id", t.ID))
				skipped.Add(1)
				return nil
			}

			err = s.store.UpdateSummary(gctx, t.ID, store.SummaryUpdate{
				Summary:     inc.RuleName,
				Description: inc.DetailedDescription,
				Severity:    inc.SeverityName,
			})
			if err != nil {
				s.logger.Error("could not update ticket", zap.String("ticket_id", t.ID), zap.Error(err))
				failed.Add(1)
				return nil
			}

			updated.Add(1)
			return nil
		})
	}

	report := domain.ResummarizeReport{Scanned: len(tickets)}
	waitErr := g.Wait()
	report.Updated = int(updated.Load())
	report.Skipped = int(skipped.Load())
	report.Failed = int(failed.Load())

	if waitErr != nil {
		return report, domain.WrapError("resummarize", waitErr, false)
	}

	s.logger.Info("tickets re-summarized",
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}

func usableRuleName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && name != domain.NotAvailable
}

func (s *Tickets) validate(payload string) error {
	if s.sanitizer.IsEmpty(payload) {
		return domain.WrapError("validate_payload", domain.ErrEmptyPayload, true)
	}
	if s.sanitizer.IsTooLarge(payload) {
		return domain.WrapError("validate_payload", domain.ErrPayloadTooLarge, true)
	}
	return nil
}
