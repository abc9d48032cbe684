package models

import (
	"time"
)

// SessionState represents the state of a booked coaching session
type SessionState string

const (
	SessionScheduled SessionState = "scheduled"
	SessionCompleted SessionState = "completed"
	SessionCancelled SessionState = "cancelled"
)

// Session represents a booked coaching session
type Session struct {
	ID              string       `json:"id" db:"id"`
	CustomerID      string       `json:"customer_id" db:"customer_id"`
	Coach           string       `json:"coach" db:"coach"`
	StartsAt        time.Time    `json:"starts_at" db:"starts_at"`
	DurationMinutes int          `json:"duration_minutes" db:"duration_minutes"`
	Status          SessionState `json:"status" db:"status"`
	Notes           string       `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}

// EndsAt returns the end of the session
func (s *Session) EndsAt() time.Time {
	return s.StartsAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Overlaps reports whether two sessions share any time
func (s *Session) Overlaps(other *Session) bool {
	return s.StartsAt.Before(other.EndsAt()) && other.StartsAt.Before(s.EndsAt())
}

// BookingRequest represents a session booking request
type BookingRequest struct {
	CustomerID      string    `json:"-"`
	Coach           string    `json:"coach"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes"`
}
