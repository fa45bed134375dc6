package models

import "github.com/google/uuid"

// SubmitInspectionRequest is the "payload" JSON part of the multipart submit
// request. ID is present when an existing inspection is being re-saved.
type SubmitInspectionRequest struct {
	ID           *uuid.UUID             `json:"id,omitempty"`
	FormType     string                 `json:"form_type"`
	LocationName string                 `json:"location_name"`
	Address      string                 `json:"address,omitempty"`
	Latitude     *float64               `json:"latitude,omitempty"`
	Longitude    *float64               `json:"longitude,omitempty"`
	Accuracy     *float64               `json:"location_accuracy,omitempty"`
	ContactPhone string                 `json:"contact_phone,omitempty"`
	PlannedDate  string                 `json:"planned_date,omitempty"`
	FormData     map[string]interface{} `json:"form_data,omitempty"`
	IsDraft      bool                   `json:"is_draft"`
}

type ReverseGeocodeRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Accuracy  float64 `json:"location_accuracy"`
}
