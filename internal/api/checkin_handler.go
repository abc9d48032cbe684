package api

import (
	"net/http"
	"strconv"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CheckinHandler handles daily check-in endpoints
type CheckinHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCheckinHandler creates a new CheckinHandler
func NewCheckinHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CheckinHandler {
	return &CheckinHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "checkin").Logger(),
	}
}

// List handles GET /v1/customers/:id/checkins?limit=...
func (h *CheckinHandler) List(c *gin.Context) {
	limit := h.cfg.Dashboard.CheckinHistory
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	checkins, err := h.services.Checkin.ListRecent(ctx, c.Param("id"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkins": checkins})
}

// Record handles POST /v1/customers/:id/checkins
func (h *CheckinHandler) Record(c *gin.Context) {
	var in models.CheckinInput
	if !bindJSON(c, &in) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	checkin, err := h.services.Checkin.Record(ctx, c.Param("id"), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, checkin)
}
