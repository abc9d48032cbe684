package models

import (
	"time"
)

// DayLayout is the date format used for check-in days
const DayLayout = "2006-01-02"

// Checkin represents a customer's daily check-in
type Checkin struct {
	ID          string    `json:"id" db:"id"`
	CustomerID  string    `json:"customer_id" db:"customer_id"`
	Day         string    `json:"day" db:"day"` // YYYY-MM-DD
	WeightKg    float64   `json:"weight_kg" db:"weight_kg"`
	SleepHours  float64   `json:"sleep_hours" db:"sleep_hours"`
	WaterLitres float64   `json:"water_litres" db:"water_litres"`
	Mood        int       `json:"mood" db:"mood"` // 1-5
	Notes       string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CheckinInput is the record request body
type CheckinInput struct {
	Day         string  `json:"day"`
	WeightKg    float64 `json:"weight_kg"`
	SleepHours  float64 `json:"sleep_hours"`
	WaterLitres float64 `json:"water_litres"`
	Mood        int     `json:"mood"`
	Notes       string  `json:"notes"`
}
