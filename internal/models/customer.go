package models

import (
	"time"

	"github.com/coaching-dashboard/internal/table"
)

// Customer lifecycle labels (session status)
const (
	StatusActive       = table.StatusActive
	StatusPending      = table.StatusPending
	StatusExpiringSoon = table.StatusExpiringSoon
	StatusExpired      = table.StatusExpired
	StatusInactive     = table.StatusInactive
	StatusBlocked      = table.StatusBlocked
)

// Statuses lists the lifecycle labels in display order
var Statuses = []string{
	StatusActive,
	StatusPending,
	StatusExpiringSoon,
	StatusExpired,
	StatusInactive,
	StatusBlocked,
}

// ValidStatuses defines allowed customer lifecycle labels
var ValidStatuses = map[string]bool{
	StatusActive:       true,
	StatusPending:      true,
	StatusExpiringSoon: true,
	StatusExpired:      true,
	StatusInactive:     true,
	StatusBlocked:      true,
}

// Follow-up labels for leads that have not converted yet
const (
	FollowupPending       = "Pending"
	FollowupContacted     = "Contacted"
	FollowupConverted     = "Converted"
	FollowupNotInterested = "Not Interested"
)

// ValidFollowupStatuses defines allowed follow-up labels
var ValidFollowupStatuses = map[string]bool{
	FollowupPending:       true,
	FollowupContacted:     true,
	FollowupConverted:     true,
	FollowupNotInterested: true,
}

// Customer represents a coached customer or a follow-up lead
type Customer struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Email          string     `json:"email" db:"email"`
	Phone          string     `json:"phone" db:"phone"`
	AvatarURL      string     `json:"image" db:"avatar_url"`
	Status         string     `json:"session_status,omitempty" db:"status"`
	FollowupStatus string     `json:"followup_status,omitempty" db:"followup_status"`
	Goal           string     `json:"goal,omitempty" db:"goal"`
	PlanEndsAt     *time.Time `json:"plan_ends_at,omitempty" db:"plan_ends_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

func (c *Customer) RowID() string        { return c.ID }
func (c *Customer) DisplayName() string  { return c.Name }
func (c *Customer) ContactEmail() string { return c.Email }
func (c *Customer) ContactPhone() string { return c.Phone }
func (c *Customer) AvatarRef() string    { return c.AvatarURL }

// SessionStatus selects the lifecycle label of a customer row
func SessionStatus(c *Customer) (string, bool) {
	return c.Status, c.Status != ""
}

// FollowupStatusOf selects the follow-up label of a lead row
func FollowupStatusOf(c *Customer) (string, bool) {
	return c.FollowupStatus, c.FollowupStatus != ""
}

// CustomerInput is the create request body
type CustomerInput struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	AvatarURL      string     `json:"image"`
	Status         string     `json:"session_status"`
	FollowupStatus string     `json:"followup_status"`
	Goal           string     `json:"goal"`
	PlanEndsAt     *time.Time `json:"plan_ends_at"`
}

// CustomerPatch carries only the fields a PATCH request provided
type CustomerPatch struct {
	Name           *string    `json:"name"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	AvatarURL      *string    `json:"image"`
	Status         *string    `json:"session_status"`
	FollowupStatus *string    `json:"followup_status"`
	Goal           *string    `json:"goal"`
	PlanEndsAt     *time.Time `json:"plan_ends_at"`
}

// Apply copies the provided fields onto c
func (p *CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.AvatarURL != nil {
		c.AvatarURL = *p.AvatarURL
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.FollowupStatus != nil {
		c.FollowupStatus = *p.FollowupStatus
	}
	if p.Goal != nil {
		c.Goal = *p.Goal
	}
	if p.PlanEndsAt != nil {
		c.PlanEndsAt = p.PlanEndsAt
	}
}
