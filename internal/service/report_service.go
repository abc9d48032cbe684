package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/coaching-dashboard/internal/validation"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// reportService is the concrete implementation of ReportService
type reportService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
	log       zerolog.Logger
}

// newReportService creates a new ReportService
func newReportService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *reportService {
	return &reportService{
		repos:     repos,
		validator: validator,
		markdown: goldmark.New(
			goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
		log:    log.With().Str("service", "report").Logger(),
	}
}

// Create stores report metadata for a customer
func (s *reportService) Create(ctx context.Context, customerID string, in *models.ReportInput) (*models.Report, error) {
	if _, err := requireCustomer(ctx, s.repos.Customer, customerID); err != nil {
		return nil, err
	}
	if err := invalid(s.validator.ValidateReport(in)); err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Title:      strings.TrimSpace(in.Title),
		FileURL:    in.FileURL,
		Notes:      in.Notes,
		UploadedAt: time.Now(),
	}
	if err := s.repos.Report.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.log.Info().Str("report_id", report.ID).Str("customer_id", customerID).Msg("Report added")
	return report, nil
}

// List returns a customer's reports, newest first
func (s *reportService) List(ctx context.Context, customerID string) ([]*models.Report, error) {
	if _, err := requireCustomer(ctx, s.repos.Customer, customerID); err != nil {
		return nil, err
	}
	reports, err := s.repos.Report.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Delete removes a report
func (s *reportService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("report %q: %w", id, ErrNotFound)
	}
	deleted, err := s.repos.Report.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if !deleted {
		return fmt.Errorf("report %s: %w", id, ErrNotFound)
	}

	s.log.Info().Str("report_id", id).Msg("Report deleted")
	return nil
}

// RenderNotes converts markdown notes to sanitized HTML
func (s *reportService) RenderNotes(notes string) template.HTML {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(notes), &buf); err != nil {
		s.log.Warn().Err(err).Msg("Failed to render report notes")
		return template.HTML(template.HTMLEscapeString(notes))
	}
	return template.HTML(s.policy.SanitizeBytes(buf.Bytes()))
}
