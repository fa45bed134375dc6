package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fims-backend/internal/forms"
	"fims-backend/internal/middleware"
	"fims-backend/internal/models"
	"fims-backend/internal/services"
	"fims-backend/internal/staging"
	"fims-backend/internal/supabase"
)

type InspectionsHandler struct {
	dbClient      *supabase.DatabaseClient
	catalogClient *supabase.Client
	submission    *services.SubmissionService
}

func NewInspectionsHandler(dbClient *supabase.DatabaseClient, catalogClient *supabase.Client, submission *services.SubmissionService) *InspectionsHandler {
	return &InspectionsHandler{
		dbClient:      dbClient,
		catalogClient: catalogClient,
		submission:    submission,
	}
}

// Submit accepts one multipart request: a "payload" JSON part describing the
// inspection (with is_draft and, for re-saves, the id) plus staged photo
// files. It drives the whole save workflow.
func (h *InspectionsHandler) Submit(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	inspectorID, ok := inspectorIDFromContext(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	var req models.SubmitInspectionRequest
	payload := c.PostForm("payload")
	if payload == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing payload part"})
		return
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid payload",
			Message: err.Error(),
		})
		return
	}

	formType := forms.FormType(req.FormType)

	catalog, err := h.catalogClient.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load category catalog",
			Message: err.Error(),
		})
		return
	}

	var existing *models.Inspection
	if req.ID != nil {
		existing, err = h.dbClient.GetInspection(*req.ID, inspectorID)
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "inspection not found",
				Message: err.Error(),
			})
			return
		}
	}

	session, err := forms.NewSession(catalog, formType, existing, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "cannot start editing session",
			Message: err.Error(),
		})
		return
	}

	session.LocationName = req.LocationName
	session.SetAddress(req.Address)
	session.ContactPhone = req.ContactPhone
	session.PlannedDate = req.PlannedDate
	if req.Latitude != nil && req.Longitude != nil && req.Accuracy != nil {
		session.SetCoordinates(*req.Latitude, *req.Longitude, *req.Accuracy)
	}
	if req.FormData != nil {
		if err := session.ApplyData(req.FormData); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "cannot apply form data",
				Message: err.Error(),
			})
			return
		}
	}

	buffer := staging.NewBuffer(formType.MaxPhotoBytes())
	rejected, ok := h.stagePhotos(c, buffer)
	if !ok {
		return
	}

	result, err := h.submission.Submit(session, inspectorID, buffer, req.IsDraft)
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	response := models.SubmitInspectionResponse{
		InspectionID:     result.InspectionID.String(),
		InspectionNumber: result.InspectionNumber,
		Status:           result.Status,
		Created:          result.Created,
		PhotosUploaded:   result.PhotosUploaded,
		Message:          result.Message(),
	}
	for _, r := range rejected {
		response.RejectedPhotos = append(response.RejectedPhotos, r.Name+": "+r.Reason)
	}
	c.JSON(http.StatusOK, response)
}

// stagePhotos reads the request's photo files into the staging buffer,
// reporting a batch-limit violation as a client error. Per-file rejections
// are returned for the response and do not fail the request.
func (h *InspectionsHandler) stagePhotos(c *gin.Context, buffer *staging.Buffer) ([]staging.Rejection, bool) {
	form := c.Request.MultipartForm
	if form == nil {
		return nil, true
	}

	var headers []*multipart.FileHeader
	for _, fieldName := range []string{"photos", "photo", "images", "files"} {
		if f := form.File[fieldName]; len(f) > 0 {
			headers = f
			break
		}
	}
	if len(headers) == 0 {
		return nil, true
	}

	files := make([]staging.File, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to open uploaded file",
				Message: header.Filename + ": " + err.Error(),
			})
			return nil, false
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to read uploaded file",
				Message: header.Filename + ": " + err.Error(),
			})
			return nil, false
		}
		files = append(files, staging.File{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	rejected, err := buffer.Add(files)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "too many photos",
			Message: err.Error(),
		})
		return nil, false
	}
	return rejected, true
}

func (h *InspectionsHandler) List(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	inspectorID, ok := inspectorIDFromContext(c)
	if !ok {
		return
	}

	inspections, err := h.dbClient.ListInspections(inspectorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list inspections",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.InspectionSummary, len(inspections))
	for i, insp := range inspections {
		summaries[i] = models.InspectionSummary{
			ID:               insp.ID.String(),
			InspectionNumber: insp.InspectionNumber,
			LocationName:     insp.LocationName,
			Status:           insp.Status,
			InspectionDate:   insp.InspectionDate,
			UpdatedAt:        insp.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, models.InspectionListResponse{Inspections: summaries})
}

func (h *InspectionsHandler) Get(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	inspectorID, ok := inspectorIDFromContext(c)
	if !ok {
		return
	}

	inspectionID, err := uuid.Parse(c.Param("inspection_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid inspection id"})
		return
	}

	insp, err := h.dbClient.GetInspection(inspectionID, inspectorID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "inspection not found",
			Message: err.Error(),
		})
		return
	}

	response := models.InspectionResponse{
		ID:               insp.ID.String(),
		InspectionNumber: insp.InspectionNumber,
		CategoryID:       insp.CategoryID.String(),
		LocationName:     insp.LocationName,
		InspectionDate:   insp.InspectionDate,
		Status:           insp.Status,
		CreatedAt:        insp.CreatedAt,
		UpdatedAt:        insp.UpdatedAt,
	}
	if insp.Address.Valid {
		response.Address = insp.Address.String
	}
	if insp.HasCoordinates() {
		response.Latitude = &insp.Latitude.Float64
		response.Longitude = &insp.Longitude.Float64
		response.LocationAccuracy = &insp.LocationAccuracy.Float64
	}
	if insp.PlannedDate.Valid {
		response.PlannedDate = insp.PlannedDate.Time.Format("2006-01-02")
	}
	if len(insp.FormData) > 0 {
		var formData map[string]interface{}
		if err := json.Unmarshal(insp.FormData, &formData); err == nil {
			response.FormData = formData
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *InspectionsHandler) Photos(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	inspectorID, ok := inspectorIDFromContext(c)
	if !ok {
		return
	}

	inspectionID, err := uuid.Parse(c.Param("inspection_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid inspection id"})
		return
	}

	// Ownership check before exposing photo URLs.
	if _, err := h.dbClient.GetInspection(inspectionID, inspectorID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "inspection not found",
			Message: err.Error(),
		})
		return
	}

	photos, err := h.dbClient.GetInspectionPhotos(inspectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get photos",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.PhotoResponse, len(photos))
	for i, p := range photos {
		responses[i] = models.PhotoResponse{
			ID:         p.ID.String(),
			PhotoURL:   p.PhotoURL,
			PhotoName:  p.PhotoName,
			PhotoOrder: p.PhotoOrder,
			UploadedAt: p.UploadedAt,
		}
		if p.Description.Valid {
			responses[i].Description = p.Description.String
		}
	}

	c.JSON(http.StatusOK, models.PhotosResponse{Photos: responses})
}

func inspectorIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := c.Get(middleware.InspectorIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "inspector id not found"})
		return uuid.Nil, false
	}
	inspectorID, err := uuid.Parse(idStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid inspector id"})
		return uuid.Nil, false
	}
	return inspectorID, true
}

// respondSubmitError maps workflow failures onto HTTP statuses: validation
// and configuration problems are client errors, remote write and upload
// failures surface the store's message.
func respondSubmitError(c *gin.Context, err error) {
	var validationErr *forms.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation failed",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})
		return
	}

	var configErr *services.ConfigError
	if errors.As(err, &configErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "configuration error",
			Message: configErr.Message,
		})
		return
	}

	if errors.Is(err, forms.ErrSubmitInFlight) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "submission in progress",
			Message: err.Error(),
		})
		return
	}

	var submitErr *services.SubmitError
	if errors.As(err, &submitErr) && submitErr.FileName != "" {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "photo upload failed",
			Message: "failed to upload " + submitErr.FileName + ": " + submitErr.Err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "failed to save inspection",
		Message: err.Error(),
	})
}
