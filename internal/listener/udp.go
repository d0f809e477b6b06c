// Package listener receives appliance payloads over syslog.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"sync"

	"github.com/leodido/go-syslog/v4/rfc5424"
	"github.com/soc-intake/internal/domain"
	"github.com/soc-intake/internal/normalize"
	"go.uber.org/zap"
)

// maxDatagramSize is the largest UDP payload accepted.
const maxDatagramSize = 64 * 1024

// priPattern matches a bare syslog priority prefix such as "<189>".
var priPattern = regexp.MustCompile(`^<\d{1,3}>`)

// Ingester turns one payload into a ticket.
type Ingester interface {
	CreateFromPayload(ctx context.Context, payload string) (*domain.Ticket, error)
}

// UDP is a syslog listener that feeds every received payload to an Ingester.
type UDP struct {
	port       int
	maxWorkers int
	ingester   Ingester
	logger     *zap.Logger
}

// NewUDP creates a UDP listener. At most maxWorkers datagrams are processed
// at once; datagrams arriving while all workers are busy are dropped.
func NewUDP(port, maxWorkers int, ingester Ingester, logger *zap.Logger) *UDP {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &UDP{
		port:       port,
		maxWorkers: maxWorkers,
		ingester:   ingester,
		logger:     logger.Named("syslog_udp"),
	}
}

// ListenAndServe binds the configured port and serves until ctx is done.
func (l *UDP) ListenAndServe(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listen udp :%d: %w", l.port, err)
	}
	l.logger.Info("syslog listener running", zap.Int("port", l.port))
	return l.Serve(ctx, conn)
}

// Serve reads datagrams from conn until ctx is done, then closes conn and
// waits for in-flight payloads.
func (l *UDP) Serve(ctx context.Context, conn net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	// In-flight payloads finish even after shutdown starts.
	workCtx := context.WithoutCancel(ctx)

	semaphore := make(chan struct{}, l.maxWorkers)
	var wg sync.WaitGroup
	defer wg.Wait()

	buffer := make([]byte, maxDatagramSize)
	for {
		n, addr, err := conn.ReadFrom(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.logger.Warn("error reading from udp", zap.Error(err))
			continue
		}

		data := make([]byte, n)
		copy(data, buffer[:n])

		select {
		case semaphore <- struct{}{}:
			wg.Add(1)
			go func() {
				defer func() {
					<-semaphore
					wg.Done()
				}()
				l.process(workCtx, addr, data)
			}()
		default:
			l.logger.Warn("syslog listener at capacity, dropping datagram", zap.Stringer("remote", addr))
		}
	}
}

func (l *UDP) process(ctx context.Context, addr net.Addr, data []byte) {
	for _, payload := range SplitDatagram(string(data)) {
		ticket, err := l.ingester.CreateFromPayload(ctx, payload)
		if err != nil {
			l.logger.Warn("syslog payload rejected", zap.Stringer("remote", addr), zap.Error(err))
			continue
		}
		l.logger.Debug("ticket created from syslog", zap.Stringer("remote", addr), zap.String("ticket_id", ticket.ID))
	}
}

// SplitDatagram returns the payloads carried by one datagram. An XML
// incident document spans lines and is returned whole; key-value logs are
// one payload per line.
func SplitDatagram(datagram string) []string {
	if body := Unwrap(strings.TrimSpace(datagram)); normalize.DetectFormat(body) == domain.FormatXML {
		return []string{body}
	}

	var payloads []string
	for _, line := range strings.Split(strings.ReplaceAll(datagram, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if body := Unwrap(line); strings.TrimSpace(body) != "" {
			payloads = append(payloads, body)
		}
	}
	return payloads
}

// Unwrap strips the syslog envelope from msg. An RFC 5424 message whose
// MSG part could be recovered yields that part; otherwise only a leading "<PRI>" is removed,
// which keeps BSD style headers in place for timestamp resolution.
func Unwrap(msg string) string {
	parser := rfc5424.NewParser(rfc5424.WithBestEffort())
	parsed, _ := parser.Parse([]byte(msg))
	if m, ok := parsed.(*rfc5424.SyslogMessage); ok && m != nil && m.Message != nil {
		return strings.TrimSpace(*m.Message)
	}
	return strings.TrimLeft(priPattern.ReplaceAllString(msg, ""), " ")
}
