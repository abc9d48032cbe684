package api

import (
	"net/http"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/service"
	"github.com/coaching-dashboard/internal/table"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	services *service.Services
	cfg      *config.Config
	presets  *config.Presets
	log      zerolog.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(services *service.Services, cfg *config.Config, presets *config.Presets, log zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		services: services,
		cfg:      cfg,
		presets:  presets,
		log:      log.With().Str("handler", "customer").Logger(),
	}
}

// List handles GET /v1/customers?q=...&status=...
// Returns the same rows, in the same order, as the customers page.
func (h *CustomerHandler) List(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	customers, err := h.services.Customer.List(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	browser := table.New(table.Options[*models.Customer]{
		Filters:  h.presets.CustomerFilters,
		Status:   models.SessionStatus,
		Priority: h.presets.PriorityTable(),
	})
	browser.SetSearch(c.Query("q"))
	if status := c.Query("status"); status != "" && !browser.SetFilter(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter: " + status})
		return
	}

	visible := browser.Visible(customers)
	c.JSON(http.StatusOK, gin.H{
		"customers": visible,
		"count":     len(visible),
		"total":     len(customers),
	})
}

// Create handles POST /v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var in models.CustomerInput
	if !bindJSON(c, &in) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	customer, err := h.services.Customer.Create(ctx, &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// Get handles GET /v1/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	customer, err := h.services.Customer.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Update handles PATCH /v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	var patch models.CustomerPatch
	if !bindJSON(c, &patch) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	customer, err := h.services.Customer.Update(ctx, c.Param("id"), &patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
