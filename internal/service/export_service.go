package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coaching-dashboard/internal/models"
	"github.com/coaching-dashboard/internal/repository"
	"github.com/rs/zerolog"
)

// flushEvery is how many records are written between flushes
const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamCustomers streams customers in the specified format
func (s *exportService) StreamCustomers(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting customers export")

	switch format {
	case "ndjson":
		return s.streamCustomersNDJSON(ctx, w)
	case "json":
		return s.streamCustomersJSON(ctx, w)
	case "csv":
		return s.streamCustomersCSV(ctx, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *exportService) streamCustomersNDJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=customers.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Customer.StreamAll(ctx, func(c *models.Customer) error {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Customers export completed")
	return err
}

func (s *exportService) streamCustomersJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=customers.json")

	w.Write([]byte("["))
	first := true

	err := s.repos.Customer.StreamAll(ctx, func(c *models.Customer) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func (s *exportService) streamCustomersCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=customers.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "name", "email", "phone", "session_status", "followup_status", "goal", "plan_ends_at", "created_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	return s.repos.Customer.StreamAll(ctx, func(c *models.Customer) error {
		planEndsAt := ""
		if c.PlanEndsAt != nil {
			planEndsAt = c.PlanEndsAt.UTC().Format(time.RFC3339)
		}
		return writer.Write([]string{
			c.ID,
			c.Name,
			c.Email,
			c.Phone,
			c.Status,
			c.FollowupStatus,
			c.Goal,
			planEndsAt,
			c.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "customers":
		return s.repos.Customer.Count(ctx)
	case "sessions":
		return s.repos.Session.Count(ctx)
	case "checkins":
		return s.repos.Checkin.Count(ctx)
	case "reports":
		return s.repos.Report.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
