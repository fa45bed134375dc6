package supabase

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"fims-backend/internal/forms"
	"fims-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// CreateInspection inserts a new inspection row and returns the id assigned
// by the store.
func (d *DatabaseClient) CreateInspection(insp *models.Inspection) (uuid.UUID, error) {
	var id uuid.UUID
	err := d.db.QueryRow(`
		INSERT INTO fims_inspections
			(inspection_number, category_id, inspector_id, location_name, address,
			 latitude, longitude, location_accuracy, contact_phone, planned_date,
			 inspection_date, status, form_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, insp.InspectionNumber, insp.CategoryID, insp.InspectorID, insp.LocationName,
		insp.Address, insp.Latitude, insp.Longitude, insp.LocationAccuracy,
		insp.ContactPhone, insp.PlannedDate, insp.InspectionDate, insp.Status,
		[]byte(insp.FormData)).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create inspection: %w", err)
	}
	return id, nil
}

// UpdateInspection re-saves an existing row. The inspection number, category
// and inspector are fixed at creation and never touched here.
func (d *DatabaseClient) UpdateInspection(insp *models.Inspection) error {
	result, err := d.db.Exec(`
		UPDATE fims_inspections
		SET location_name = $1, address = $2, latitude = $3, longitude = $4,
		    location_accuracy = $5, contact_phone = $6, planned_date = $7,
		    inspection_date = $8, status = $9, form_data = $10, updated_at = NOW()
		WHERE id = $11
	`, insp.LocationName, insp.Address, insp.Latitude, insp.Longitude,
		insp.LocationAccuracy, insp.ContactPhone, insp.PlannedDate,
		insp.InspectionDate, insp.Status, []byte(insp.FormData), insp.ID)
	if err != nil {
		return fmt.Errorf("failed to update inspection: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("inspection %s not found", insp.ID)
	}
	return nil
}

func (d *DatabaseClient) GetInspection(inspectionID, inspectorID uuid.UUID) (*models.Inspection, error) {
	var insp models.Inspection
	var formData []byte
	err := d.db.QueryRow(`
		SELECT id, inspection_number, category_id, inspector_id, location_name,
		       address, latitude, longitude, location_accuracy, contact_phone,
		       planned_date, inspection_date, status, form_data, created_at, updated_at
		FROM fims_inspections
		WHERE id = $1 AND inspector_id = $2
	`, inspectionID, inspectorID).Scan(
		&insp.ID, &insp.InspectionNumber, &insp.CategoryID, &insp.InspectorID,
		&insp.LocationName, &insp.Address, &insp.Latitude, &insp.Longitude,
		&insp.LocationAccuracy, &insp.ContactPhone, &insp.PlannedDate,
		&insp.InspectionDate, &insp.Status, &formData, &insp.CreatedAt, &insp.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get inspection: %w", err)
	}
	insp.FormData = formData
	return &insp, nil
}

func (d *DatabaseClient) ListInspections(inspectorID uuid.UUID) ([]models.Inspection, error) {
	rows, err := d.db.Query(`
		SELECT id, inspection_number, category_id, inspector_id, location_name,
		       address, latitude, longitude, location_accuracy, contact_phone,
		       planned_date, inspection_date, status, form_data, created_at, updated_at
		FROM fims_inspections
		WHERE inspector_id = $1
		ORDER BY updated_at DESC
	`, inspectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	var inspections []models.Inspection
	for rows.Next() {
		var insp models.Inspection
		var formData []byte
		err := rows.Scan(
			&insp.ID, &insp.InspectionNumber, &insp.CategoryID, &insp.InspectorID,
			&insp.LocationName, &insp.Address, &insp.Latitude, &insp.Longitude,
			&insp.LocationAccuracy, &insp.ContactPhone, &insp.PlannedDate,
			&insp.InspectionDate, &insp.Status, &formData, &insp.CreatedAt, &insp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		insp.FormData = formData
		inspections = append(inspections, insp)
	}

	return inspections, nil
}

func (d *DatabaseClient) CreateInspectionPhoto(photo *models.InspectionPhoto) error {
	_, err := d.db.Exec(`
		INSERT INTO fims_inspection_photos
			(inspection_id, photo_url, photo_name, description, photo_order, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, photo.InspectionID, photo.PhotoURL, photo.PhotoName, photo.Description,
		photo.PhotoOrder, photo.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create photo row: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetInspectionPhotos(inspectionID uuid.UUID) ([]models.InspectionPhoto, error) {
	rows, err := d.db.Query(`
		SELECT id, inspection_id, photo_url, photo_name, description, photo_order, uploaded_at
		FROM fims_inspection_photos
		WHERE inspection_id = $1
		ORDER BY photo_order ASC
	`, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []models.InspectionPhoto
	for rows.Next() {
		var p models.InspectionPhoto
		err := rows.Scan(&p.ID, &p.InspectionID, &p.PhotoURL, &p.PhotoName,
			&p.Description, &p.PhotoOrder, &p.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}

	return photos, nil
}

// Detail-table writers. Each category has one denormalized table keyed by
// inspection_id; single-row categories upsert, the list-shaped bhet praptra
// is replaced wholesale.

func (d *DatabaseClient) UpsertAdarshaShalaDetail(inspectionID uuid.UUID, detail *forms.AdarshaShalaDetail) error {
	marks, err := marshalMarks(detail.Marks)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`
		INSERT INTO fims_adarsha_shala
			(inspection_id, school_name, udise_code, headmaster_name,
			 total_students, total_teachers, marks, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (inspection_id) DO UPDATE
		SET school_name = EXCLUDED.school_name, udise_code = EXCLUDED.udise_code,
		    headmaster_name = EXCLUDED.headmaster_name,
		    total_students = EXCLUDED.total_students,
		    total_teachers = EXCLUDED.total_teachers,
		    marks = EXCLUDED.marks, remarks = EXCLUDED.remarks,
		    updated_at = NOW()
	`, inspectionID, detail.SchoolName, detail.UDISECode, detail.HeadmasterName,
		detail.TotalStudents, detail.TotalTeachers, marks, detail.Remarks)
	if err != nil {
		return fmt.Errorf("failed to upsert adarsha shala detail: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpsertGramPanchayatDetail(inspectionID uuid.UUID, detail *forms.GramPanchayatDetail) error {
	_, err := d.db.Exec(`
		INSERT INTO fims_gram_panchayat
			(inspection_id, gram_panchayat_name, sarpanch_name, gramsevak_name,
			 population, tax_collected, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (inspection_id) DO UPDATE
		SET gram_panchayat_name = EXCLUDED.gram_panchayat_name,
		    sarpanch_name = EXCLUDED.sarpanch_name,
		    gramsevak_name = EXCLUDED.gramsevak_name,
		    population = EXCLUDED.population,
		    tax_collected = EXCLUDED.tax_collected,
		    remarks = EXCLUDED.remarks, updated_at = NOW()
	`, inspectionID, detail.GramPanchayatName, detail.SarpanchName,
		detail.GramsevakName, detail.Population, detail.TaxCollected, detail.Remarks)
	if err != nil {
		return fmt.Errorf("failed to upsert gram panchayat detail: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpsertRajyaShaishanikDetail(inspectionID uuid.UUID, detail *forms.RajyaShaishanikDetail) error {
	_, err := d.db.Exec(`
		INSERT INTO fims_rajya_shaishanik
			(inspection_id, school_name, officer_name, subject, observations, remarks)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (inspection_id) DO UPDATE
		SET school_name = EXCLUDED.school_name, officer_name = EXCLUDED.officer_name,
		    subject = EXCLUDED.subject, observations = EXCLUDED.observations,
		    remarks = EXCLUDED.remarks, updated_at = NOW()
	`, inspectionID, detail.SchoolName, detail.OfficerName, detail.Subject,
		detail.Observations, detail.Remarks)
	if err != nil {
		return fmt.Errorf("failed to upsert rajya shaishanik detail: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpsertBandhakamDetail(inspectionID uuid.UUID, detail *forms.BandhakamDetail) error {
	_, err := d.db.Exec(`
		INSERT INTO fims_bandhakam_vibhag1
			(inspection_id, work_name, contractor_name, sanctioned_amount,
			 progress_percent, remarks)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (inspection_id) DO UPDATE
		SET work_name = EXCLUDED.work_name,
		    contractor_name = EXCLUDED.contractor_name,
		    sanctioned_amount = EXCLUDED.sanctioned_amount,
		    progress_percent = EXCLUDED.progress_percent,
		    remarks = EXCLUDED.remarks, updated_at = NOW()
	`, inspectionID, detail.WorkName, detail.ContractorName,
		detail.SanctionedAmount, detail.ProgressPercent, detail.Remarks)
	if err != nil {
		return fmt.Errorf("failed to upsert bandhakam detail: %w", err)
	}
	return nil
}

// ReplaceBhetPraptraRows deletes the inspection's visit rows and reinserts
// the current list in order, in one transaction.
func (d *DatabaseClient) ReplaceBhetPraptraRows(inspectionID uuid.UUID, detail *forms.BhetPraptraDetail) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM fims_bhet_praptra WHERE inspection_id = $1`, inspectionID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete bhet praptra rows: %w", err)
	}

	for i, row := range detail.Rows {
		_, err := tx.Exec(`
			INSERT INTO fims_bhet_praptra
				(inspection_id, row_order, visited_office_name, officer_name,
				 designation, visit_date, remark)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, inspectionID, i+1, detail.VisitedOfficeName, row.OfficerName,
			row.Designation, row.VisitDate, row.Remark)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert bhet praptra row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bhet praptra rows: %w", err)
	}
	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func marshalMarks(marks map[string]map[string]string) ([]byte, error) {
	if marks == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(marks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode marks: %w", err)
	}
	return raw, nil
}
