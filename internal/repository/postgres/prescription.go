package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, patient_id, clinician_id, medication, dosage, frequency, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.q(query),
		p.ID, p.PatientID, p.ClinicianID, p.Medication, p.Dosage, p.Frequency, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", classify(err))
	}
	return nil
}

const prescriptionViewQuery = `
	SELECT rx.id, rx.patient_id, rx.clinician_id, rx.medication, rx.dosage,
		rx.frequency, rx.created_at,
		COALESCE(c.first_name, '') AS prescriber_first_name,
		COALESCE(c.last_name, '') AS prescriber_last_name
	FROM prescriptions rx
	LEFT JOIN accounts c ON c.id = rx.clinician_id
`

func (r *prescriptionRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionView, error) {
	query := prescriptionViewQuery + ` WHERE rx.patient_id = ? ORDER BY rx.created_at DESC`

	views := []*model.PrescriptionView{}
	if err := r.db.SelectContext(ctx, &views, r.q(query), patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient prescriptions: %w", classify(err))
	}
	return views, nil
}

func (r *prescriptionRepository) ListForClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.PrescriptionView, error) {
	query := prescriptionViewQuery + ` WHERE rx.clinician_id = ? ORDER BY rx.created_at DESC`

	views := []*model.PrescriptionView{}
	if err := r.db.SelectContext(ctx, &views, r.q(query), clinicianID); err != nil {
		return nil, fmt.Errorf("failed to list clinician prescriptions: %w", classify(err))
	}
	return views, nil
}
