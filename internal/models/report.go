package models

import (
	"time"
)

// Report represents an uploaded medical report. The file itself lives in
// external storage; only its URL is kept.
type Report struct {
	ID         string    `json:"id" db:"id"`
	CustomerID string    `json:"customer_id" db:"customer_id"`
	Title      string    `json:"title" db:"title"`
	FileURL    string    `json:"file_url" db:"file_url"`
	Notes      string    `json:"notes,omitempty" db:"notes"` // markdown
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// ReportInput is the create request body
type ReportInput struct {
	Title   string `json:"title"`
	FileURL string `json:"file_url"`
	Notes   string `json:"notes"`
}
