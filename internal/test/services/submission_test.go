package services_test

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fims-backend/internal/forms"
	"fims-backend/internal/models"
	"fims-backend/internal/services"
	"fims-backend/internal/staging"
)

type fakeStore struct {
	nextID        uuid.UUID
	created       []*models.Inspection
	updated       []*models.Inspection
	photos        []*models.InspectionPhoto
	detailUpserts int
	bhetReplaces  int
	bhetRows      []forms.BhetPraptraRow
	createErr     error
	detailErr     error
	photoErr      error
}

func (f *fakeStore) CreateInspection(insp *models.Inspection) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	if f.nextID == uuid.Nil {
		f.nextID = uuid.New()
	}
	copied := *insp
	f.created = append(f.created, &copied)
	return f.nextID, nil
}

func (f *fakeStore) UpdateInspection(insp *models.Inspection) error {
	copied := *insp
	f.updated = append(f.updated, &copied)
	return nil
}

func (f *fakeStore) CreateInspectionPhoto(photo *models.InspectionPhoto) error {
	if f.photoErr != nil {
		return f.photoErr
	}
	copied := *photo
	f.photos = append(f.photos, &copied)
	return nil
}

func (f *fakeStore) UpsertAdarshaShalaDetail(inspectionID uuid.UUID, detail *forms.AdarshaShalaDetail) error {
	f.detailUpserts++
	return f.detailErr
}

func (f *fakeStore) UpsertGramPanchayatDetail(inspectionID uuid.UUID, detail *forms.GramPanchayatDetail) error {
	f.detailUpserts++
	return f.detailErr
}

func (f *fakeStore) UpsertRajyaShaishanikDetail(inspectionID uuid.UUID, detail *forms.RajyaShaishanikDetail) error {
	f.detailUpserts++
	return f.detailErr
}

func (f *fakeStore) UpsertBandhakamDetail(inspectionID uuid.UUID, detail *forms.BandhakamDetail) error {
	f.detailUpserts++
	return f.detailErr
}

func (f *fakeStore) ReplaceBhetPraptraRows(inspectionID uuid.UUID, detail *forms.BhetPraptraDetail) error {
	f.bhetReplaces++
	f.bhetRows = detail.Rows
	return f.detailErr
}

type fakeStorage struct {
	uploads []string
	failOn  int // 1-based upload to fail; 0 means never
}

func (f *fakeStorage) UploadPhoto(path string, data []byte, contentType string) (string, error) {
	if f.failOn > 0 && len(f.uploads)+1 == f.failOn {
		return "", errors.New("storage unavailable")
	}
	f.uploads = append(f.uploads, path)
	return "https://example.supabase.co/storage/v1/object/public/inspection-photos/" + path, nil
}

func testCatalog() []models.Category {
	catalog := make([]models.Category, 0, 5)
	for _, ft := range []string{"bhet_form", "gram_panchayat", "rajya_shaishanik", "adarsha_shala", "bandhakam_vibhag1"} {
		catalog = append(catalog, models.Category{ID: uuid.New(), Name: ft, FormType: ft})
	}
	return catalog
}

func newTestSession(t *testing.T, formType forms.FormType) *forms.Session {
	t.Helper()
	session, err := forms.NewSession(testCatalog(), formType, nil, false)
	require.NoError(t, err)
	return session
}

func stagedPhotos(t *testing.T, names ...string) *staging.Buffer {
	t.Helper()
	buffer := staging.NewBuffer(5 << 20)
	files := make([]staging.File, len(names))
	for i, name := range names {
		files[i] = staging.File{
			Name:        name,
			Size:        1024,
			ContentType: "image/jpeg",
			Data:        []byte("jpeg-bytes"),
		}
	}
	rejected, err := buffer.Add(files)
	require.NoError(t, err)
	require.Empty(t, rejected)
	return buffer
}

func TestSubmit_NewInspectionCreatesOneRowAndOneDetail(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{}
	svc := services.NewSubmissionService(store, storage, nil)

	session := newTestSession(t, forms.FormTypeRajyaShaishanik)
	session.LocationName = "Zilla School A"
	require.NoError(t, session.SetField("officer_name", "Jane Doe"))

	result, err := svc.Submit(session, uuid.New(), nil, false)
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Len(t, store.created, 1)
	assert.Empty(t, store.updated)
	assert.Equal(t, 1, store.detailUpserts)
	assert.Equal(t, models.StatusSubmitted, result.Status)
	assert.Regexp(t, regexp.MustCompile(`^RS-\d{8}-\d{6}$`), result.InspectionNumber)
	assert.Equal(t, store.nextID, result.InspectionID)
}

func TestSubmit_DraftNeverUploadsPhotos(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{}
	svc := services.NewSubmissionService(store, storage, nil)

	session := newTestSession(t, forms.FormTypeGramPanchayat)
	session.LocationName = "GP Office"
	require.NoError(t, session.SetField("gram_panchayat_name", "Shirdi"))

	buffer := stagedPhotos(t, "a.jpg", "b.jpg")
	result, err := svc.Submit(session, uuid.New(), buffer, true)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, result.Status)
	assert.Empty(t, storage.uploads)
	assert.Empty(t, store.photos)
	assert.Equal(t, 0, result.PhotosUploaded)
	// Staged photos stay for a later final submit.
	assert.Equal(t, 2, buffer.Len())
}

func TestSubmit_EditUpdatesWithoutSecondInsert(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	existing := &models.Inspection{
		ID:               uuid.New(),
		InspectionNumber: "GP-20250314-123456",
		CategoryID:       uuid.New(),
		LocationName:     "Old name",
		Status:           models.StatusDraft,
	}
	session, err := forms.NewSession(testCatalog(), forms.FormTypeGramPanchayat, existing, false)
	require.NoError(t, err)
	session.LocationName = "New name"
	require.NoError(t, session.SetField("gram_panchayat_name", "Shirdi"))

	result, err := svc.Submit(session, uuid.New(), nil, true)
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Empty(t, store.created)
	require.Len(t, store.updated, 1)
	assert.Equal(t, existing.ID, store.updated[0].ID)
	assert.Equal(t, "New name", store.updated[0].LocationName)
	assert.Equal(t, models.StatusDraft, store.updated[0].Status)
	assert.Equal(t, "GP-20250314-123456", result.InspectionNumber)
}

func TestSubmit_PlannedDateNormalization(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := newTestSession(t, forms.FormTypeBandhakam)
	session.LocationName = "Site 4"
	session.PlannedDate = ""
	require.NoError(t, session.SetField("work_name", "Road widening"))

	_, err := svc.Submit(session, uuid.New(), nil, true)
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.False(t, store.created[0].PlannedDate.Valid)

	session2 := newTestSession(t, forms.FormTypeBandhakam)
	session2.LocationName = "Site 4"
	session2.PlannedDate = "2025-03-14"
	require.NoError(t, session2.SetField("work_name", "Road widening"))

	_, err = svc.Submit(session2, uuid.New(), nil, true)
	require.NoError(t, err)
	require.Len(t, store.created, 2)
	assert.True(t, store.created[1].PlannedDate.Valid)
	assert.Equal(t, "2025-03-14", store.created[1].PlannedDate.Time.Format("2006-01-02"))
}

func TestSubmit_PhoneParsedOrNull(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := newTestSession(t, forms.FormTypeGramPanchayat)
	session.LocationName = "GP Office"
	session.ContactPhone = "98-22-012345"
	require.NoError(t, session.SetField("gram_panchayat_name", "Shirdi"))

	_, err := svc.Submit(session, uuid.New(), nil, true)
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.True(t, store.created[0].ContactPhone.Valid)
	assert.Equal(t, int64(9822012345), store.created[0].ContactPhone.Int64)

	session2 := newTestSession(t, forms.FormTypeGramPanchayat)
	session2.LocationName = "GP Office"
	session2.ContactPhone = "not a number"
	require.NoError(t, session2.SetField("gram_panchayat_name", "Shirdi"))

	_, err = svc.Submit(session2, uuid.New(), nil, true)
	require.NoError(t, err)
	require.Len(t, store.created, 2)
	assert.False(t, store.created[1].ContactPhone.Valid)
}

func TestSubmit_PhotoOrderIsSequentialAndAbortsOnFailure(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{failOn: 2}
	svc := services.NewSubmissionService(store, storage, nil)

	session := newTestSession(t, forms.FormTypeBhet)
	session.LocationName = "Taluka Office"
	require.NoError(t, session.SetField("visited_office_name", "Panchayat Samiti"))

	buffer := stagedPhotos(t, "one.jpg", "two.jpg", "three.jpg")
	result, err := svc.Submit(session, uuid.New(), buffer, false)

	require.Error(t, err)
	var submitErr *services.SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, services.StepUploadPhotos, submitErr.Step)
	assert.Equal(t, "two.jpg", submitErr.FileName)

	// Photo 1 is committed, 2 and 3 never were; inspection and detail rows stay.
	require.Len(t, store.photos, 1)
	assert.Equal(t, 1, store.photos[0].PhotoOrder)
	assert.Equal(t, "one.jpg", store.photos[0].PhotoName)
	assert.Len(t, store.created, 1)
	assert.Equal(t, 1, store.bhetReplaces)

	require.NotNil(t, result)
	assert.Equal(t, 1, result.PhotosUploaded)
	assert.Contains(t, result.CompletedSteps, services.StepPersistDetail)
	assert.NotContains(t, result.CompletedSteps, services.StepUploadPhotos)
	// Buffer is kept so the user can retry.
	assert.Equal(t, 3, buffer.Len())
}

func TestSubmit_FullSuccessUploadsInOrderAndClearsBuffer(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{}
	svc := services.NewSubmissionService(store, storage, nil)

	session := newTestSession(t, forms.FormTypeAdarshaShala)
	session.LocationName = "Zilla School A"
	require.NoError(t, session.SetField("school_name", "Adarsha Vidyalaya"))

	buffer := stagedPhotos(t, "front.jpg", "class.png")
	result, err := svc.Submit(session, uuid.New(), buffer, false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.PhotosUploaded)
	require.Len(t, store.photos, 2)
	for i, p := range store.photos {
		assert.Equal(t, i+1, p.PhotoOrder)
		assert.NotEmpty(t, p.PhotoURL)
	}
	assert.Equal(t, "front.jpg", store.photos[0].PhotoName)
	assert.Equal(t, "class.png", store.photos[1].PhotoName)
	assert.Equal(t, 0, buffer.Len())
	assert.Contains(t, result.CompletedSteps, services.StepUploadPhotos)
}

func TestSubmit_ValidationFailureHasNoSideEffects(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := newTestSession(t, forms.FormTypeRajyaShaishanik)
	session.LocationName = "   "

	_, err := svc.Submit(session, uuid.New(), nil, false)
	require.Error(t, err)

	var validationErr *forms.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "location_name", validationErr.Field)
	assert.Empty(t, store.created)
	assert.Empty(t, store.updated)
	assert.Equal(t, 0, store.detailUpserts)
}

func TestSubmit_MissingIdentifyingNameFails(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := newTestSession(t, forms.FormTypeRajyaShaishanik)
	session.LocationName = "Zilla School A"

	_, err := svc.Submit(session, uuid.New(), nil, false)
	require.Error(t, err)

	var validationErr *forms.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "officer_name", validationErr.Field)
	assert.Empty(t, store.created)
}

func TestSubmit_UnresolvedCategoryIsConfigError(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := &forms.Session{
		FormType:     forms.FormTypeBandhakam,
		LocationName: "Site 4",
		Data:         forms.Defaults(forms.FormTypeBandhakam),
	}
	require.NoError(t, session.SetField("work_name", "Bridge repair"))

	_, err := svc.Submit(session, uuid.New(), nil, false)
	require.Error(t, err)

	var configErr *services.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Empty(t, store.created)
}

func TestSubmit_RejectsReentry(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := newTestSession(t, forms.FormTypeGramPanchayat)
	session.LocationName = "GP Office"
	require.NoError(t, session.SetField("gram_panchayat_name", "Shirdi"))

	require.NoError(t, session.BeginSubmit())
	defer session.EndSubmit()

	_, err := svc.Submit(session, uuid.New(), nil, true)
	assert.ErrorIs(t, err, forms.ErrSubmitInFlight)
	assert.Empty(t, store.created)
}

func TestSubmit_DetailFailureKeepsInspectionRow(t *testing.T) {
	store := &fakeStore{detailErr: errors.New("detail table unavailable")}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := newTestSession(t, forms.FormTypeAdarshaShala)
	session.LocationName = "Zilla School A"
	require.NoError(t, session.SetField("school_name", "Adarsha Vidyalaya"))

	result, err := svc.Submit(session, uuid.New(), nil, false)
	require.Error(t, err)

	var submitErr *services.SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, services.StepPersistDetail, submitErr.Step)

	// No compensating delete: the inspection row is already committed.
	assert.Len(t, store.created, 1)
	require.NotNil(t, result)
	assert.Contains(t, result.CompletedSteps, services.StepPersistInspection)
	assert.NotContains(t, result.CompletedSteps, services.StepPersistDetail)
}

func TestSubmit_BhetRowsReplacedInOrder(t *testing.T) {
	store := &fakeStore{}
	svc := services.NewSubmissionService(store, &fakeStorage{}, nil)

	session := newTestSession(t, forms.FormTypeBhet)
	session.LocationName = "Taluka Office"
	require.NoError(t, session.SetField("visited_office_name", "Panchayat Samiti"))
	require.NoError(t, session.ApplyData(map[string]interface{}{
		"rows": []interface{}{
			map[string]interface{}{"officer_name": "A", "designation": "Clerk"},
			map[string]interface{}{"officer_name": "B", "designation": "Officer"},
		},
	}))

	_, err := svc.Submit(session, uuid.New(), nil, true)
	require.NoError(t, err)

	assert.Equal(t, 1, store.bhetReplaces)
	require.Len(t, store.bhetRows, 2)
	assert.Equal(t, "A", store.bhetRows[0].OfficerName)
	assert.Equal(t, "B", store.bhetRows[1].OfficerName)
}

func TestGenerateInspectionNumber(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	number := services.GenerateInspectionNumber(forms.FormTypeBhet, at)

	assert.Regexp(t, regexp.MustCompile(`^BHET-20250314-\d{6}$`), number)
	assert.Equal(t, fmt.Sprintf("BHET-20250314-%06d", at.UnixMilli()%1000000), number)
}
