package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fims-backend/internal/models"
)

// Mode distinguishes how a session was seeded and what it allows.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeView
)

var (
	ErrReadOnly         = errors.New("session is read-only")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrUnknownCategory  = errors.New("no category matches the form type")
	errFieldPathNotAMap = errors.New("field path traverses a non-object value")
	errEmptyFieldPath   = errors.New("field path is empty")
)

// Session holds the editable state of one inspection: basic scalar fields
// plus the category-specific nested tree. It performs no validation and no
// I/O; the submission service consumes it.
type Session struct {
	Mode             Mode
	InspectionID     *uuid.UUID
	InspectionNumber string
	CategoryID       uuid.UUID
	FormType         FormType

	LocationName string
	Address      string
	Latitude     *float64
	Longitude    *float64
	Accuracy     *float64
	ContactPhone string
	PlannedDate  string // date-only, as shown in date inputs

	Data map[string]interface{}

	submitting bool
}

// NewSession seeds a session either from category defaults (no existing
// record) or from a previously stored inspection. readOnly selects view mode
// and only applies when an existing record is present.
func NewSession(catalog []models.Category, formType FormType, existing *models.Inspection, readOnly bool) (*Session, error) {
	s := &Session{
		Mode:     ModeCreate,
		FormType: formType,
		Data:     Defaults(formType),
	}

	if existing == nil {
		for _, cat := range catalog {
			if cat.FormType == string(formType) {
				s.CategoryID = cat.ID
				break
			}
		}
		if s.CategoryID == uuid.Nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, formType)
		}
		return s, nil
	}

	s.Mode = ModeEdit
	if readOnly {
		s.Mode = ModeView
	}
	id := existing.ID
	s.InspectionID = &id
	s.InspectionNumber = existing.InspectionNumber
	s.CategoryID = existing.CategoryID
	s.LocationName = existing.LocationName
	if existing.Address.Valid {
		s.Address = existing.Address.String
	}
	if existing.HasCoordinates() {
		lat, lng, acc := existing.Latitude.Float64, existing.Longitude.Float64, existing.LocationAccuracy.Float64
		s.Latitude, s.Longitude, s.Accuracy = &lat, &lng, &acc
	}
	if existing.ContactPhone.Valid {
		s.ContactPhone = fmt.Sprintf("%d", existing.ContactPhone.Int64)
	}
	if existing.PlannedDate.Valid {
		// Date inputs want the date component only.
		s.PlannedDate = existing.PlannedDate.Time.Format("2006-01-02")
	}
	if len(existing.FormData) > 0 {
		var stored map[string]interface{}
		if err := json.Unmarshal(existing.FormData, &stored); err != nil {
			return nil, fmt.Errorf("failed to decode stored form data: %w", err)
		}
		s.Data = DeepMerge(s.Data, stored)
	}
	return s, nil
}

// SetField replaces exactly the addressed leaf of the nested tree. Paths are
// dotted, e.g. "marks.class5.marathi". Intermediate objects are created as
// needed; traversing through a non-object value is an error.
func (s *Session) SetField(path string, value interface{}) error {
	if s.Mode == ModeView {
		return ErrReadOnly
	}
	parts := strings.Split(path, ".")
	if len(parts) == 0 || parts[0] == "" {
		return errEmptyFieldPath
	}
	if s.Data == nil {
		s.Data = map[string]interface{}{}
	}
	node := s.Data
	for _, key := range parts[:len(parts)-1] {
		next, ok := node[key]
		if !ok || next == nil {
			child := map[string]interface{}{}
			node[key] = child
			node = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: %s", errFieldPathNotAMap, path)
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return nil
}

// ApplyData merges an incoming payload over the current tree, leaf by leaf.
func (s *Session) ApplyData(incoming map[string]interface{}) error {
	if s.Mode == ModeView {
		return ErrReadOnly
	}
	s.Data = DeepMerge(s.Data, incoming)
	return nil
}

// SetCoordinates stores the position triple as one update. Partial
// coordinates are never written.
func (s *Session) SetCoordinates(lat, lng, accuracy float64) {
	s.Latitude, s.Longitude, s.Accuracy = &lat, &lng, &accuracy
}

// SetAddress fills the address field, e.g. from reverse geocoding. Empty
// values are ignored so already-entered text is preserved.
func (s *Session) SetAddress(address string) {
	if address != "" {
		s.Address = address
	}
}

// MarshalData renders the nested tree for the form_data column.
func (s *Session) MarshalData() (json.RawMessage, error) {
	if s.Data == nil {
		return json.RawMessage("{}"), nil
	}
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form data: %w", err)
	}
	return raw, nil
}

// BeginSubmit gates re-entry: a second submission against the same session
// is rejected until the first one finishes.
func (s *Session) BeginSubmit() error {
	if s.Mode == ModeView {
		return ErrReadOnly
	}
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.submitting = true
	return nil
}

func (s *Session) EndSubmit() {
	s.submitting = false
}

// DeepMerge overlays src onto dst one leaf at a time: nested objects merge
// recursively, everything else is replaced. dst is mutated and returned.
func DeepMerge(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = map[string]interface{}{}
	}
	for key, val := range src {
		srcMap, srcIsMap := val.(map[string]interface{})
		if !srcIsMap {
			dst[key] = val
			continue
		}
		dstMap, dstIsMap := dst[key].(map[string]interface{})
		if !dstIsMap {
			dstMap = map[string]interface{}{}
		}
		dst[key] = DeepMerge(dstMap, srcMap)
	}
	return dst
}
