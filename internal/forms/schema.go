package forms

import (
	"encoding/json"
	"fmt"
)

// Per-category detail schemas. The inspection row stores the payload
// verbatim in form_data; these types are the boundary where it is decoded
// into the typed columns of the category's detail table.

type AdarshaShalaDetail struct {
	SchoolName     string                       `json:"school_name"`
	UDISECode      string                       `json:"udise_code"`
	HeadmasterName string                       `json:"headmaster_name"`
	TotalStudents  int                          `json:"total_students"`
	TotalTeachers  int                          `json:"total_teachers"`
	Marks          map[string]map[string]string `json:"marks"`
	Remarks        string                       `json:"remarks"`
}

type GramPanchayatDetail struct {
	GramPanchayatName string `json:"gram_panchayat_name"`
	SarpanchName      string `json:"sarpanch_name"`
	GramsevakName     string `json:"gramsevak_name"`
	Population        int    `json:"population"`
	TaxCollected      bool   `json:"tax_collected"`
	Remarks           string `json:"remarks"`
}

type RajyaShaishanikDetail struct {
	SchoolName   string `json:"school_name"`
	OfficerName  string `json:"officer_name"`
	Subject      string `json:"subject"`
	Observations string `json:"observations"`
	Remarks      string `json:"remarks"`
}

type BandhakamDetail struct {
	WorkName         string  `json:"work_name"`
	ContractorName   string  `json:"contractor_name"`
	SanctionedAmount float64 `json:"sanctioned_amount"`
	ProgressPercent  int     `json:"progress_percent"`
	Remarks          string  `json:"remarks"`
}

// BhetPraptraDetail is the one list-shaped category: an ordered set of visit
// rows stored one row per entry, replaced wholesale on every save.
type BhetPraptraDetail struct {
	VisitedOfficeName string           `json:"visited_office_name"`
	Rows              []BhetPraptraRow `json:"rows"`
}

type BhetPraptraRow struct {
	OfficerName string `json:"officer_name"`
	Designation string `json:"designation"`
	VisitDate   string `json:"visit_date"`
	Remark      string `json:"remark"`
}

// OpaqueDetail is the fallback for payloads whose form_type this build does
// not know. It is stored and returned verbatim, never flattened.
type OpaqueDetail struct {
	Raw json.RawMessage
}

// Decode resolves a raw form_data payload into the schema matching formType.
// Unknown tags fall back to OpaqueDetail rather than failing.
func Decode(formType FormType, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	var dst interface{}
	switch formType {
	case FormTypeAdarshaShala:
		dst = &AdarshaShalaDetail{}
	case FormTypeGramPanchayat:
		dst = &GramPanchayatDetail{}
	case FormTypeRajyaShaishanik:
		dst = &RajyaShaishanikDetail{}
	case FormTypeBandhakam:
		dst = &BandhakamDetail{}
	case FormTypeBhet:
		dst = &BhetPraptraDetail{}
	default:
		return &OpaqueDetail{Raw: raw}, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("failed to decode %s form data: %w", formType, err)
	}
	return dst, nil
}

// ValidationError reports a missing required field before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired checks the per-category identifying name field. The
// location name is validated separately since every form requires it.
func ValidateRequired(detail interface{}) error {
	switch d := detail.(type) {
	case *AdarshaShalaDetail:
		if d.SchoolName == "" {
			return &ValidationError{Field: "school_name", Message: "school name is required"}
		}
	case *GramPanchayatDetail:
		if d.GramPanchayatName == "" {
			return &ValidationError{Field: "gram_panchayat_name", Message: "gram panchayat name is required"}
		}
	case *RajyaShaishanikDetail:
		if d.OfficerName == "" {
			return &ValidationError{Field: "officer_name", Message: "officer name is required"}
		}
	case *BandhakamDetail:
		if d.WorkName == "" {
			return &ValidationError{Field: "work_name", Message: "work name is required"}
		}
	case *BhetPraptraDetail:
		if d.VisitedOfficeName == "" {
			return &ValidationError{Field: "visited_office_name", Message: "visited office name is required"}
		}
	}
	return nil
}

// Defaults is the empty nested tree a new editing session starts from.
// Stored payloads are merged over this so previously-unset keys keep their
// defaults instead of disappearing.
func Defaults(formType FormType) map[string]interface{} {
	switch formType {
	case FormTypeAdarshaShala:
		marks := map[string]interface{}{}
		for _, class := range []string{"class5", "class6", "class7", "class8"} {
			row := map[string]interface{}{}
			for _, subject := range []string{"marathi", "english", "mathematics", "science"} {
				row[subject] = ""
			}
			marks[class] = row
		}
		return map[string]interface{}{
			"school_name":     "",
			"udise_code":      "",
			"headmaster_name": "",
			"total_students":  0,
			"total_teachers":  0,
			"marks":           marks,
			"remarks":         "",
		}
	case FormTypeGramPanchayat:
		return map[string]interface{}{
			"gram_panchayat_name": "",
			"sarpanch_name":       "",
			"gramsevak_name":      "",
			"population":          0,
			"tax_collected":       false,
			"remarks":             "",
		}
	case FormTypeRajyaShaishanik:
		return map[string]interface{}{
			"school_name":  "",
			"officer_name": "",
			"subject":      "",
			"observations": "",
			"remarks":      "",
		}
	case FormTypeBandhakam:
		return map[string]interface{}{
			"work_name":         "",
			"contractor_name":   "",
			"sanctioned_amount": 0.0,
			"progress_percent":  0,
			"remarks":           "",
		}
	case FormTypeBhet:
		return map[string]interface{}{
			"visited_office_name": "",
			"rows":                []interface{}{},
		}
	}
	return map[string]interface{}{}
}
