package models

import (
	"time"
)

// PlanKind distinguishes diet plans from exercise plans
type PlanKind string

const (
	PlanDiet     PlanKind = "diet"
	PlanExercise PlanKind = "exercise"
)

// ValidPlanKinds defines allowed plan kinds
var ValidPlanKinds = map[PlanKind]bool{
	PlanDiet:     true,
	PlanExercise: true,
}

// PlanItem is one entry of a plan group, e.g. a meal or an exercise
type PlanItem struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// PlanGroup is a named group of items, e.g. "Breakfast" or "Day 1"
type PlanGroup struct {
	Name  string     `json:"name"`
	Items []PlanItem `json:"items"`
}

// Plan represents a customer's diet or exercise plan
type Plan struct {
	ID         string      `json:"id" db:"id"`
	CustomerID string      `json:"customer_id" db:"customer_id"`
	Kind       PlanKind    `json:"kind" db:"kind"`
	Title      string      `json:"title" db:"title"`
	Groups     []PlanGroup `json:"groups" db:"groups"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// PlanInput is the save request body
type PlanInput struct {
	Title  string      `json:"title"`
	Groups []PlanGroup `json:"groups"`
}
