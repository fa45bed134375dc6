package forms

// FormType is the fixed tag selecting which specialized form layout and
// detail table apply to an inspection.
type FormType string

const (
	FormTypeBhet            FormType = "bhet_form"
	FormTypeGramPanchayat   FormType = "gram_panchayat"
	FormTypeRajyaShaishanik FormType = "rajya_shaishanik"
	FormTypeAdarshaShala    FormType = "adarsha_shala"
	FormTypeBandhakam       FormType = "bandhakam_vibhag1"
)

func (f FormType) Valid() bool {
	switch f {
	case FormTypeBhet, FormTypeGramPanchayat, FormTypeRajyaShaishanik,
		FormTypeAdarshaShala, FormTypeBandhakam:
		return true
	}
	return false
}

// NumberPrefix is the short code used in generated inspection numbers and
// storage object paths.
func (f FormType) NumberPrefix() string {
	switch f {
	case FormTypeBhet:
		return "BHET"
	case FormTypeGramPanchayat:
		return "GP"
	case FormTypeRajyaShaishanik:
		return "RS"
	case FormTypeAdarshaShala:
		return "AS"
	case FormTypeBandhakam:
		return "BV"
	}
	return "INSP"
}

// MaxPhotoBytes is the per-file staging ceiling. The visit form allows
// larger attachments than the rest.
func (f FormType) MaxPhotoBytes() int64 {
	if f == FormTypeBhet {
		return 10 << 20
	}
	return 5 << 20
}
