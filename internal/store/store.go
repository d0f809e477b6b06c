// Package store persists tickets created from normalized incidents.
package store

import (
	"context"
	"fmt"

	"github.com/soc-intake/internal/config"
	"github.com/soc-intake/internal/domain"
	"go.uber.org/zap"
)

// TicketStore is the persistence boundary used by the ticket service.
type TicketStore interface {
	// Create stores a new ticket. The ticket ID must already be set.
	Create(ctx context.Context, t *domain.Ticket) error

	// Get returns the ticket with id, or domain.ErrTicketNotFound.
	Get(ctx context.Context, id string) (*domain.Ticket, error)

	// List returns every ticket ordered by creation time.
	List(ctx context.Context) ([]*domain.Ticket, error)

	// UpdateSummary overwrites the fields re-derived from the raw log.
	UpdateSummary(ctx context.Context, id string, update SummaryUpdate) error

	// Ping verifies the store is usable.
	Ping(ctx context.Context) error

	Close() error
}

// SummaryUpdate carries the fields a re-summarization may overwrite.
type SummaryUpdate struct {
	Summary     string
	Description string
	Severity    domain.Severity
}

// Open builds the store selected by cfg.
func Open(cfg config.StoreConfig, logger *zap.Logger) (TicketStore, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreSQLite:
		return OpenSQLite(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", domain.ErrInvalidConfig, cfg.Driver)
	}
}
