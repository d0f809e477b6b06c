package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/soc-intake/internal/domain"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
    id               TEXT PRIMARY KEY,
    summary          TEXT NOT NULL,
    description      TEXT NOT NULL,
    severity         TEXT NOT NULL,
    status           TEXT NOT NULL,
    platform         TEXT NOT NULL,
    category         TEXT NOT NULL,
    raw_logs         TEXT NOT NULL,
    rule_name        TEXT NOT NULL,
    rule_description TEXT NOT NULL,
    rule_remediation TEXT NOT NULL,
    affected_device  TEXT NOT NULL,
    reported_by      TEXT NOT NULL,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(created_at);
CREATE INDEX IF NOT EXISTS idx_tickets_severity ON tickets(severity);
`

const ticketColumns = `id, summary, description, severity, status, platform, category, raw_logs,
    rule_name, rule_description, rule_remediation, affected_device, reported_by, created_at, updated_at`

// SQLiteStore persists tickets in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: SQLite has a single writer, and each ":memory:"
	// connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tickets schema: %w", err)
	}

	logger.Named("sqlite_store").Info("tickets table ready", zap.String("path", path))

	return &SQLiteStore{db: db, logger: logger.Named("sqlite_store")}, nil
}

// Create implements TicketStore.
func (s *SQLiteStore) Create(ctx context.Context, t *domain.Ticket) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Summary, t.Description, string(t.Severity), t.Status, t.Platform, t.Category, t.RawLogs,
		t.RuleName, t.RuleDescription, t.RuleRemediation, t.AffectedDevice, t.ReportedBy,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", t.ID, err)
	}
	s.logger.Debug("ticket stored", zap.String("ticket_id", t.ID))
	return nil
}

// Get implements TicketStore.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	return t, nil
}

// List implements TicketStore.
func (s *SQLiteStore) List(ctx context.Context) ([]*domain.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// UpdateSummary implements TicketStore.
func (s *SQLiteStore) UpdateSummary(ctx context.Context, id string, update SummaryUpdate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET summary = ?, description = ?, severity = ?, updated_at = ? WHERE id = ?`,
		update.Summary, update.Description, string(update.Severity), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update ticket %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ticket %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// Ping implements TicketStore.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements TicketStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(r rowScanner) (*domain.Ticket, error) {
	var (
		t                domain.Ticket
		severity         string
		created, updated string
	)
	err := r.Scan(&t.ID, &t.Summary, &t.Description, &severity, &t.Status, &t.Platform, &t.Category,
		&t.RawLogs, &t.RuleName, &t.RuleDescription, &t.RuleRemediation, &t.AffectedDevice, &t.ReportedBy,
		&created, &updated)
	if err != nil {
		return nil, err
	}
	t.Severity = domain.Severity(severity)

	if t.CreatedAt, err = time.Parse(storedTimeLayout, created); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(storedTimeLayout, updated); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return &t, nil
}

// storedTimeLayout has fixed width so text order matches time order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}
