package api

import (
	"net/http"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PlanHandler handles diet and exercise plan endpoints
type PlanHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *PlanHandler {
	return &PlanHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "plan").Logger(),
	}
}

// Get handles GET /v1/customers/:id/plans/:kind
func (h *PlanHandler) Get(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	plan, err := h.services.Plan.Get(ctx, c.Param("id"), models.PlanKind(c.Param("kind")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Save handles PUT /v1/customers/:id/plans/:kind
func (h *PlanHandler) Save(c *gin.Context) {
	var in models.PlanInput
	if !bindJSON(c, &in) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	plan, err := h.services.Plan.Save(ctx, c.Param("id"), models.PlanKind(c.Param("kind")), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
