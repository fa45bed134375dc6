package models

import "time"

type SubmitInspectionResponse struct {
	InspectionID     string   `json:"inspection_id"`
	InspectionNumber string   `json:"inspection_number"`
	Status           string   `json:"status"`
	Created          bool     `json:"created"`
	PhotosUploaded   int      `json:"photos_uploaded"`
	Message          string   `json:"message"`
	RejectedPhotos   []string `json:"rejected_photos,omitempty"`
}

type InspectionResponse struct {
	ID               string                 `json:"id"`
	InspectionNumber string                 `json:"inspection_number"`
	CategoryID       string                 `json:"category_id"`
	LocationName     string                 `json:"location_name"`
	Address          string                 `json:"address,omitempty"`
	Latitude         *float64               `json:"latitude,omitempty"`
	Longitude        *float64               `json:"longitude,omitempty"`
	LocationAccuracy *float64               `json:"location_accuracy,omitempty"`
	PlannedDate      string                 `json:"planned_date,omitempty"`
	InspectionDate   time.Time              `json:"inspection_date"`
	Status           string                 `json:"status"`
	FormData         map[string]interface{} `json:"form_data,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type InspectionListResponse struct {
	Inspections []InspectionSummary `json:"inspections"`
}

type InspectionSummary struct {
	ID               string    `json:"id"`
	InspectionNumber string    `json:"inspection_number"`
	LocationName     string    `json:"location_name"`
	Status           string    `json:"status"`
	InspectionDate   time.Time `json:"inspection_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PhotosResponse struct {
	Photos []PhotoResponse `json:"photos"`
}

type PhotoResponse struct {
	ID          string    `json:"id"`
	PhotoURL    string    `json:"photo_url"`
	PhotoName   string    `json:"photo_name"`
	Description string    `json:"description,omitempty"`
	PhotoOrder  int       `json:"photo_order"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}

type ReverseGeocodeResponse struct {
	Address string `json:"address,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
