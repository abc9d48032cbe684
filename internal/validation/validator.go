package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/coaching-dashboard/internal/models"
	"github.com/google/uuid"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Booking limits
const (
	MinSessionMinutes = 15
	MaxSessionMinutes = 180
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator provides validation methods
type Validator struct {
	now func() time.Time
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt creates a validator with a fixed clock, for tests
func NewValidatorAt(now time.Time) *Validator {
	return &Validator{now: func() time.Time { return now }}
}

// ValidateCustomer validates a new customer
func (v *Validator) ValidateCustomer(in *models.CustomerInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(in.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	errors = append(errors, validateEmail(in.Email)...)
	errors = append(errors, validateStatus(in.Status)...)
	errors = append(errors, validateFollowup(in.FollowupStatus)...)

	return errors
}

// ValidateCustomerPatch validates only the fields present in a patch
func (v *Validator) ValidateCustomerPatch(p *models.CustomerPatch) []ValidationError {
	var errors []ValidationError

	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name must not be empty"})
	}
	if p.Email != nil {
		errors = append(errors, validateEmail(*p.Email)...)
	}
	if p.Status != nil {
		errors = append(errors, validateStatus(*p.Status)...)
	}
	if p.FollowupStatus != nil {
		errors = append(errors, validateFollowup(*p.FollowupStatus)...)
	}

	return errors
}

// ValidateBooking validates a session booking request
func (v *Validator) ValidateBooking(req *models.BookingRequest) []ValidationError {
	var errors []ValidationError

	if !isValidUUID(req.CustomerID) {
		errors = append(errors, ValidationError{Field: "customer_id", Message: "invalid UUID format", Value: req.CustomerID})
	}
	if strings.TrimSpace(req.Coach) == "" {
		errors = append(errors, ValidationError{Field: "coach", Message: "coach is required"})
	}
	if req.StartsAt.IsZero() {
		errors = append(errors, ValidationError{Field: "starts_at", Message: "starts_at is required"})
	} else if req.StartsAt.Before(v.now()) {
		errors = append(errors, ValidationError{Field: "starts_at", Message: "session must start in the future", Value: req.StartsAt.Format(time.RFC3339)})
	}
	if req.DurationMinutes < MinSessionMinutes || req.DurationMinutes > MaxSessionMinutes {
		errors = append(errors, ValidationError{
			Field:   "duration_minutes",
			Message: fmt.Sprintf("duration must be between %d and %d minutes", MinSessionMinutes, MaxSessionMinutes),
			Value:   req.DurationMinutes,
		})
	}

	return errors
}

// ValidatePlan validates a plan of the given kind
func (v *Validator) ValidatePlan(kind models.PlanKind, in *models.PlanInput) []ValidationError {
	var errors []ValidationError

	if !models.ValidPlanKinds[kind] {
		errors = append(errors, ValidationError{Field: "kind", Message: "kind must be one of: diet, exercise", Value: string(kind)})
	}
	if len(in.Groups) == 0 {
		errors = append(errors, ValidationError{Field: "groups", Message: "at least one group is required"})
	}

	seen := make(map[string]bool, len(in.Groups))
	for i, group := range in.Groups {
		field := fmt.Sprintf("groups[%d].name", i)
		name := strings.TrimSpace(group.Name)
		switch {
		case name == "":
			errors = append(errors, ValidationError{Field: field, Message: "group name is required"})
		case seen[strings.ToLower(name)]:
			errors = append(errors, ValidationError{Field: field, Message: "duplicate group name", Value: group.Name})
		default:
			seen[strings.ToLower(name)] = true
		}

		for j, item := range group.Items {
			if strings.TrimSpace(item.Name) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("groups[%d].items[%d].name", i, j),
					Message: "item name is required",
				})
			}
		}
	}

	return errors
}

// ValidateCheckin validates a daily check-in
func (v *Validator) ValidateCheckin(in *models.CheckinInput) []ValidationError {
	var errors []ValidationError

	now := v.now()
	if day, err := time.ParseInLocation(models.DayLayout, in.Day, now.Location()); err != nil {
		errors = append(errors, ValidationError{Field: "day", Message: "day must be YYYY-MM-DD", Value: in.Day})
	} else if day.After(now) {
		errors = append(errors, ValidationError{Field: "day", Message: "day must not be in the future", Value: in.Day})
	}
	if in.Mood < 1 || in.Mood > 5 {
		errors = append(errors, ValidationError{Field: "mood", Message: "mood must be between 1 and 5", Value: in.Mood})
	}
	errors = append(errors, validateRange("weight_kg", in.WeightKg, 0, 500)...)
	errors = append(errors, validateRange("sleep_hours", in.SleepHours, 0, 24)...)
	errors = append(errors, validateRange("water_litres", in.WaterLitres, 0, 20)...)

	return errors
}

// ValidateReport validates medical report metadata
func (v *Validator) ValidateReport(in *models.ReportInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(in.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}
	if in.FileURL == "" {
		errors = append(errors, ValidationError{Field: "file_url", Message: "file_url is required"})
	} else if u, err := url.Parse(in.FileURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{Field: "file_url", Message: "file_url must be an http(s) URL", Value: in.FileURL})
	}

	return errors
}

func validateEmail(email string) []ValidationError {
	if email == "" {
		return []ValidationError{{Field: "email", Message: "email is required"}}
	}
	if !emailRegex.MatchString(email) {
		return []ValidationError{{Field: "email", Message: "invalid email format", Value: email}}
	}
	return nil
}

func validateStatus(status string) []ValidationError {
	if status != "" && !models.ValidStatuses[status] {
		return []ValidationError{{
			Field:   "session_status",
			Message: "invalid status, must be one of: Active, Pending, Expiring Soon, Expired, Inactive, Blocked",
			Value:   status,
		}}
	}
	return nil
}

func validateFollowup(status string) []ValidationError {
	if status != "" && !models.ValidFollowupStatuses[status] {
		return []ValidationError{{
			Field:   "followup_status",
			Message: "invalid follow-up status, must be one of: Pending, Contacted, Converted, Not Interested",
			Value:   status,
		}}
	}
	return nil
}

func validateRange(field string, value, min, max float64) []ValidationError {
	if value < min || value > max {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %g and %g", field, min, max),
			Value:   value,
		}}
	}
	return nil
}

// isValidUUID checks if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
