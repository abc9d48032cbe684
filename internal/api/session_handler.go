package api

import (
	"net/http"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionHandler handles session booking endpoints
type SessionHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "session").Logger(),
	}
}

// List handles GET /v1/customers/:id/sessions
func (h *SessionHandler) List(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	sessions, err := h.services.Session.ListForCustomer(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Book handles POST /v1/customers/:id/sessions
func (h *SessionHandler) Book(c *gin.Context) {
	var req models.BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	req.CustomerID = c.Param("id")

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	session, err := h.services.Session.Book(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Cancel handles POST /v1/sessions/:id/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	session, err := h.services.Session.Cancel(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Complete handles POST /v1/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	session, err := h.services.Session.Complete(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
