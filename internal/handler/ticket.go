package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soc-intake/internal/domain"
	"go.uber.org/zap"
)

// TicketHandler serves stored tickets and the admin maintenance routes.
type TicketHandler struct {
	tickets TicketService
	logger  *zap.Logger
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(tickets TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		tickets: tickets,
		logger:  logger.Named("ticket_handler"),
	}
}

// Get processes GET /tickets/:id requests.
func (h *TicketHandler) Get(c *gin.Context) {
	id := c.Param("id")

	ticket, err := h.tickets.Get(c.Request.Context(), id)
	if errors.Is(err, domain.ErrTicketNotFound) {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("ticket lookup failed", zap.String("ticket_id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal error while reading ticket")
		return
	}

	c.JSON(http.StatusOK, domain.IntakeResponse{
		Success:     true,
		Ticket:      ticket,
		ProcessedAt: time.Now(),
	})
}

// Resummarize processes POST /admin/tickets/resummarize requests.
func (h *TicketHandler) Resummarize(c *gin.Context) {
	startTime := time.Now()

	report, err := h.tickets.Resummarize(c.Request.Context())
	if err != nil {
		h.logger.Error("resummarize failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal error while re-summarizing tickets",
			"report":  report,
		})
		return
	}

	h.logger.Info("resummarize completed",
		zap.Int("updated", report.Updated),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}
