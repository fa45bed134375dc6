package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Inspection statuses. Only draft and submitted are produced by this service;
// the rest are written by external review tooling and read back verbatim.
const (
	StatusDraft       = "draft"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusReassigned  = "reassigned"
	StatusCompleted   = "completed"
	StatusPending     = "pending"
	StatusInProgress  = "in_progress"
)

type Inspection struct {
	ID               uuid.UUID
	InspectionNumber string
	CategoryID       uuid.UUID
	InspectorID      uuid.UUID
	LocationName     string
	Address          sql.NullString
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	LocationAccuracy sql.NullFloat64
	ContactPhone     sql.NullInt64
	PlannedDate      sql.NullTime
	InspectionDate   time.Time
	Status           string
	FormData         json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasCoordinates reports whether the location triple is set. The three
// columns are written together or not at all.
func (i *Inspection) HasCoordinates() bool {
	return i.Latitude.Valid && i.Longitude.Valid && i.LocationAccuracy.Valid
}

type InspectionPhoto struct {
	ID           uuid.UUID
	InspectionID uuid.UUID
	PhotoURL     string
	PhotoName    string
	Description  sql.NullString
	PhotoOrder   int
	UploadedAt   time.Time
}

// Category is one entry of the fixed inspection-type catalog
// (fims_categories). Fetched through PostgREST, hence the json tags.
type Category struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	FormType string    `json:"form_type"`
}
