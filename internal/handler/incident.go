// Package handler contains HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soc-intake/internal/domain"
	"go.uber.org/zap"
)

// TicketService is the part of service.Tickets the handlers need.
type TicketService interface {
	CreateFromPayload(ctx context.Context, payload string) (*domain.Ticket, error)
	Normalize(ctx context.Context, payload string) (*domain.CanonicalIncident, error)
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Resummarize(ctx context.Context) (domain.ResummarizeReport, error)
}

// IncidentHandler accepts raw appliance payloads over HTTP.
type IncidentHandler struct {
	tickets     TicketService
	maxBodySize int64
	logger      *zap.Logger
}

// NewIncidentHandler creates a new IncidentHandler. Bodies longer than
// maxBodySize are cut one byte past the limit so the service rejects them.
func NewIncidentHandler(tickets TicketService, maxBodySize int, logger *zap.Logger) *IncidentHandler {
	return &IncidentHandler{
		tickets:     tickets,
		maxBodySize: int64(maxBodySize),
		logger:      logger.Named("incident_handler"),
	}
}

// Create processes POST /incidents requests.
func (h *IncidentHandler) Create(c *gin.Context) {
	logger := h.logger.With(zap.String("request_id", c.GetString(requestIDKey)))

	payload, err := h.readBody(c)
	if err != nil {
		logger.Warn("could not read request body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	ticket, err := h.tickets.CreateFromPayload(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, domain.IntakeResponse{
		Success:     true,
		Ticket:      ticket,
		ProcessedAt: time.Now(),
	})
}

// Normalize processes POST /normalize requests. Nothing is persisted.
func (h *IncidentHandler) Normalize(c *gin.Context) {
	logger := h.logger.With(zap.String("request_id", c.GetString(requestIDKey)))

	payload, err := h.readBody(c)
	if err != nil {
		logger.Warn("could not read request body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	inc, err := h.tickets.Normalize(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, domain.IntakeResponse{
		Success:     true,
		Incident:    inc,
		ProcessedAt: time.Now(),
	})
}

func (h *IncidentHandler) readBody(c *gin.Context) (string, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodySize+1))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (h *IncidentHandler) fail(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrPayloadTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, err.Error())
	case domain.IsClientFault(err):
		logger.Info("payload rejected", zap.Error(err))
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("incident intake failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal error while processing incident")
	}
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, domain.IntakeResponse{
		Success:     false,
		Error:       msg,
		ProcessedAt: time.Now(),
	})
}
