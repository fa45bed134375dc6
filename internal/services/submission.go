package services

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fims-backend/internal/forms"
	"fims-backend/internal/models"
	"fims-backend/internal/staging"
)

// Step names one stage of the submission workflow. Steps run strictly in
// order and there is no rollback: a failure leaves earlier steps committed.
type Step string

const (
	StepValidate          Step = "validating"
	StepPersistInspection Step = "persisting_inspection"
	StepPersistDetail     Step = "persisting_detail"
	StepUploadPhotos      Step = "uploading_photos"
)

// InspectionStore is the row-store surface the orchestrator needs.
type InspectionStore interface {
	CreateInspection(insp *models.Inspection) (uuid.UUID, error)
	UpdateInspection(insp *models.Inspection) error
	CreateInspectionPhoto(photo *models.InspectionPhoto) error
	UpsertAdarshaShalaDetail(inspectionID uuid.UUID, detail *forms.AdarshaShalaDetail) error
	UpsertGramPanchayatDetail(inspectionID uuid.UUID, detail *forms.GramPanchayatDetail) error
	UpsertRajyaShaishanikDetail(inspectionID uuid.UUID, detail *forms.RajyaShaishanikDetail) error
	UpsertBandhakamDetail(inspectionID uuid.UUID, detail *forms.BandhakamDetail) error
	ReplaceBhetPraptraRows(inspectionID uuid.UUID, detail *forms.BhetPraptraDetail) error
}

// PhotoStorage is the object-storage surface: upload a binary, get back its
// public URL.
type PhotoStorage interface {
	UploadPhoto(path string, data []byte, contentType string) (string, error)
}

// Notifier tells listening clients a submission finished, so lists refresh.
type Notifier interface {
	PublishInspectionEvent(inspectionID uuid.UUID, event string, payload map[string]interface{}) error
}

// SubmitError wraps a failure with the step it happened in and, for photo
// uploads, the file that failed.
type SubmitError struct {
	Step     Step
	FileName string
	Err      error
}

func (e *SubmitError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("%s (%s): %v", e.Step, e.FileName, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// ConfigError blocks submission before any write, e.g. when the category
// lookup never produced an id.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Result records what a submission accomplished. CompletedSteps carries
// enough to support a later compensating cleanup job; the workflow itself
// never rolls anything back.
type Result struct {
	InspectionID     uuid.UUID
	InspectionNumber string
	Status           string
	Created          bool
	PhotosUploaded   int
	CompletedSteps   []Step
}

// Message phrases the outcome, distinguishing created vs updated and draft
// vs submitted.
func (r *Result) Message() string {
	action := "updated"
	if r.Created {
		action = "created"
	}
	if r.Status == models.StatusDraft {
		return fmt.Sprintf("Inspection %s saved as draft (%s)", r.InspectionNumber, action)
	}
	return fmt.Sprintf("Inspection %s submitted successfully (%s)", r.InspectionNumber, action)
}

// SubmissionService drives how an edited inspection reaches durable storage:
// validate, persist the inspection row, persist the category detail row,
// upload staged photos. Best-effort and strictly sequential.
type SubmissionService struct {
	store    InspectionStore
	storage  PhotoStorage
	notifier Notifier
}

func NewSubmissionService(store InspectionStore, storage PhotoStorage, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		store:    store,
		storage:  storage,
		notifier: notifier,
	}
}

// Submit runs the workflow for one editing session. Drafts skip the photo
// upload step entirely. On failure the session stays open so the user can
// retry; nothing already committed is undone.
func (s *SubmissionService) Submit(session *forms.Session, inspectorID uuid.UUID, photos *staging.Buffer, isDraft bool) (*Result, error) {
	if err := session.BeginSubmit(); err != nil {
		return nil, err
	}
	defer session.EndSubmit()

	result := &Result{}

	// Validate locally before any network call.
	if strings.TrimSpace(session.LocationName) == "" {
		return nil, &SubmitError{Step: StepValidate, Err: &forms.ValidationError{
			Field: "location_name", Message: "location name is required",
		}}
	}
	formData, err := session.MarshalData()
	if err != nil {
		return nil, &SubmitError{Step: StepValidate, Err: err}
	}
	detail, err := forms.Decode(session.FormType, formData)
	if err != nil {
		return nil, &SubmitError{Step: StepValidate, Err: err}
	}
	if err := forms.ValidateRequired(detail); err != nil {
		return nil, &SubmitError{Step: StepValidate, Err: err}
	}
	if session.CategoryID == uuid.Nil {
		return nil, &ConfigError{Message: fmt.Sprintf("no category resolved for form type %q", session.FormType)}
	}
	result.CompletedSteps = append(result.CompletedSteps, StepValidate)

	now := time.Now()
	status := models.StatusSubmitted
	if isDraft {
		status = models.StatusDraft
	}

	insp := &models.Inspection{
		CategoryID:     session.CategoryID,
		InspectorID:    inspectorID,
		LocationName:   strings.TrimSpace(session.LocationName),
		Address:        nullString(session.Address),
		PlannedDate:    normalizePlannedDate(session.PlannedDate),
		ContactPhone:   normalizePhone(session.ContactPhone),
		InspectionDate: now,
		Status:         status,
		FormData:       formData,
	}
	if session.Latitude != nil && session.Longitude != nil && session.Accuracy != nil {
		insp.Latitude = sql.NullFloat64{Float64: *session.Latitude, Valid: true}
		insp.Longitude = sql.NullFloat64{Float64: *session.Longitude, Valid: true}
		insp.LocationAccuracy = sql.NullFloat64{Float64: *session.Accuracy, Valid: true}
	}

	// Persist the inspection row: update when the session was seeded from a
	// stored record, insert otherwise. One session never inserts twice.
	if session.InspectionID != nil {
		insp.ID = *session.InspectionID
		insp.InspectionNumber = session.InspectionNumber
		if err := s.store.UpdateInspection(insp); err != nil {
			return nil, &SubmitError{Step: StepPersistInspection, Err: err}
		}
		result.InspectionID = insp.ID
	} else {
		insp.InspectionNumber = GenerateInspectionNumber(session.FormType, now)
		id, err := s.store.CreateInspection(insp)
		if err != nil {
			return nil, &SubmitError{Step: StepPersistInspection, Err: err}
		}
		insp.ID = id
		session.InspectionID = &id
		session.InspectionNumber = insp.InspectionNumber
		result.InspectionID = id
		result.Created = true
	}
	result.InspectionNumber = insp.InspectionNumber
	result.Status = status
	result.CompletedSteps = append(result.CompletedSteps, StepPersistInspection)

	// The detail row is always subordinate to a confirmed inspection id.
	if err := s.persistDetail(insp.ID, detail); err != nil {
		s.notifyFailure(insp.ID, err)
		return result, &SubmitError{Step: StepPersistDetail, Err: err}
	}
	result.CompletedSteps = append(result.CompletedSteps, StepPersistDetail)

	if !isDraft {
		uploaded, err := s.uploadPhotos(insp.ID, session.FormType, photos, now)
		result.PhotosUploaded = uploaded
		if err != nil {
			s.notifyFailure(insp.ID, err)
			return result, err
		}
		result.CompletedSteps = append(result.CompletedSteps, StepUploadPhotos)
		// Staged entries stay put on draft saves so a later final submit
		// still uploads them.
		if photos != nil {
			photos.Clear()
		}
	}
	if s.notifier != nil {
		event := "submission_completed"
		if isDraft {
			event = "draft_saved"
		}
		_ = s.notifier.PublishInspectionEvent(insp.ID, event,
			completionPayload(insp.ID, status, result.PhotosUploaded))
	}
	return result, nil
}

func (s *SubmissionService) persistDetail(inspectionID uuid.UUID, detail interface{}) error {
	switch d := detail.(type) {
	case *forms.AdarshaShalaDetail:
		return s.store.UpsertAdarshaShalaDetail(inspectionID, d)
	case *forms.GramPanchayatDetail:
		return s.store.UpsertGramPanchayatDetail(inspectionID, d)
	case *forms.RajyaShaishanikDetail:
		return s.store.UpsertRajyaShaishanikDetail(inspectionID, d)
	case *forms.BandhakamDetail:
		return s.store.UpsertBandhakamDetail(inspectionID, d)
	case *forms.BhetPraptraDetail:
		return s.store.ReplaceBhetPraptraRows(inspectionID, d)
	case *forms.OpaqueDetail:
		// Unknown tags have no detail table; the inspection row already
		// holds the payload verbatim.
		return nil
	}
	return fmt.Errorf("unsupported detail type %T", detail)
}

// uploadPhotos stores staged photos one at a time, in add order, inserting
// each photo row only after its binary is durably stored. The first failure
// aborts the remainder; rows already inserted stay.
func (s *SubmissionService) uploadPhotos(inspectionID uuid.UUID, formType forms.FormType, photos *staging.Buffer, now time.Time) (int, error) {
	if photos == nil || photos.Len() == 0 {
		return 0, nil
	}

	uploaded := 0
	for i, f := range photos.Files() {
		path := photoObjectPath(formType, inspectionID, now, i, f.Name)
		url, err := s.storage.UploadPhoto(path, f.Data, f.ContentType)
		if err != nil {
			return uploaded, &SubmitError{Step: StepUploadPhotos, FileName: f.Name, Err: err}
		}

		photo := &models.InspectionPhoto{
			InspectionID: inspectionID,
			PhotoURL:     url,
			PhotoName:    f.Name,
			Description:  nullString(f.Description),
			PhotoOrder:   i + 1,
			UploadedAt:   now,
		}
		if err := s.store.CreateInspectionPhoto(photo); err != nil {
			return uploaded, &SubmitError{Step: StepUploadPhotos, FileName: f.Name, Err: err}
		}
		uploaded++
	}
	return uploaded, nil
}

// GenerateInspectionNumber builds the human-readable code: category prefix,
// the date, and the last six digits of the millisecond timestamp. Heuristic
// uniqueness only; the row id is the authoritative identifier.
func GenerateInspectionNumber(formType forms.FormType, t time.Time) string {
	return fmt.Sprintf("%s-%s-%06d", formType.NumberPrefix(), t.Format("20060102"), t.UnixMilli()%1000000)
}

// photoObjectPath names the stored object: form-type prefix, inspection id,
// timestamp and 0-based index. Collision-resistant, sortable, traceable.
func photoObjectPath(formType forms.FormType, inspectionID uuid.UUID, t time.Time, index int, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s/%d_%d%s", formType.NumberPrefix(), inspectionID.String(), t.UnixMilli(), index, ext)
}

func normalizePlannedDate(value string) sql.NullTime {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// normalizePhone parses numeric-ish free text; anything unparseable stays
// null rather than failing the submission.
func normalizePhone(value string) sql.NullInt64 {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
	if cleaned == "" {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

// notifyFailure reports a partial submission so clients can show what was
// committed before the failure. Best-effort, like the workflow itself.
func (s *SubmissionService) notifyFailure(inspectionID uuid.UUID, cause error) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.PublishInspectionEvent(inspectionID, "submission_failed", map[string]interface{}{
		"inspection_id": inspectionID.String(),
		"status":        "failed",
		"error":         cause.Error(),
	})
}

func completionPayload(inspectionID uuid.UUID, status string, photoCount int) map[string]interface{} {
	return map[string]interface{}{
		"inspection_id": inspectionID.String(),
		"status":        status,
		"photo_count":   photoCount,
	}
}
