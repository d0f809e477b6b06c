package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(tickets TicketService, store Pinger, maxBodySize int, logger *zap.Logger) *gin.Engine {
	incidentHandler := NewIncidentHandler(tickets, maxBodySize, logger)
	ticketHandler := NewTicketHandler(tickets, logger)
	healthHandler := NewHealthHandler(logger)
	readyHandler := NewReadyHandler(store, logger)

	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware())

	router.GET("/health", healthHandler.Handle)
	router.GET("/ready", readyHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/incidents", incidentHandler.Create)
		// Route name used by the FortiSIEM notification policy
		v1.POST("/fortisiem-incident", incidentHandler.Create)
		v1.POST("/normalize", incidentHandler.Normalize)
		v1.GET("/tickets/:id", ticketHandler.Get)

		admin := v1.Group("/admin")
		admin.POST("/tickets/resummarize", ticketHandler.Resummarize)
	}

	return router
}
