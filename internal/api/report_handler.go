package api

import (
	"html/template"
	"net/http"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReportHandler handles medical report endpoints
type ReportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "report").Logger(),
	}
}

// reportResponse adds the rendered notes to a report
type reportResponse struct {
	*models.Report
	NotesHTML template.HTML `json:"notes_html,omitempty"`
}

// List handles GET /v1/customers/:id/reports
func (h *ReportHandler) List(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	reports, err := h.services.Report.List(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]reportResponse, len(reports))
	for i, r := range reports {
		out[i] = reportResponse{Report: r, NotesHTML: h.services.Report.RenderNotes(r.Notes)}
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

// Create handles POST /v1/customers/:id/reports
func (h *ReportHandler) Create(c *gin.Context) {
	var in models.ReportInput
	if !bindJSON(c, &in) {
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	report, err := h.services.Report.Create(ctx, c.Param("id"), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, reportResponse{Report: report, NotesHTML: h.services.Report.RenderNotes(report.Notes)})
}

// Delete handles DELETE /v1/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Report.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
