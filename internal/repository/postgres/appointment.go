package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

const appointmentColumns = `a.id, a.patient_id, a.clinician_id, a.appointment_date,
	a.slot_time, a.reason, a.created_at`

// Book inserts the appointment unless its (clinician, date, time) triple is taken,
// and records event in the same transaction. A taken slot yields ErrSlotTaken and
// leaves the ledger unchanged.
func (r *appointmentRepository) Book(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, clinician_id, appointment_date, slot_time, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (clinician_id, appointment_date, slot_time) DO NOTHING
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now().UTC()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, r.q(query),
			appointment.ID,
			appointment.PatientID,
			appointment.ClinicianID,
			appointment.Date,
			appointment.Time,
			appointment.Reason,
			appointment.CreatedAt,
		)
		if err != nil {
			err = classify(err)
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: %w", repository.ErrSlotTaken, err)
			}
			return fmt.Errorf("failed to insert appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", classify(err))
		}
		if rows == 0 {
			return repository.ErrSlotTaken
		}

		if event == nil {
			return nil
		}
		return insertOutboxEvent(ctx, tx, event)
	})
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, clinicianID uuid.UUID, date model.Date) ([]model.Slot, error) {
	query := `
		SELECT slot_time
		FROM appointments
		WHERE clinician_id = ? AND appointment_date = ?
	`
	slots := []model.Slot{}
	if err := r.db.SelectContext(ctx, &slots, r.q(query), clinicianID, date); err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", classify(err))
	}
	return slots, nil
}

func (r *appointmentRepository) ListForClinicianOn(ctx context.Context, clinicianID uuid.UUID, date model.Date) ([]*model.AppointmentView, error) {
	query := `
		SELECT ` + appointmentColumns + `,
			p.id AS counterpart_id,
			p.first_name AS counterpart_first_name,
			p.last_name AS counterpart_last_name
		FROM appointments a
		JOIN accounts p ON p.id = a.patient_id
		WHERE a.clinician_id = ? AND a.appointment_date = ?
	`
	return r.selectViews(ctx, query, clinicianID, date)
}

func (r *appointmentRepository) ListForPatientOn(ctx context.Context, patientID uuid.UUID, date model.Date) ([]*model.AppointmentView, error) {
	query := `
		SELECT ` + appointmentColumns + `,
			c.id AS counterpart_id,
			c.first_name AS counterpart_first_name,
			c.last_name AS counterpart_last_name
		FROM appointments a
		JOIN accounts c ON c.id = a.clinician_id
		WHERE a.patient_id = ? AND a.appointment_date = ?
	`
	return r.selectViews(ctx, query, patientID, date)
}

func (r *appointmentRepository) selectViews(ctx context.Context, query string, args ...interface{}) ([]*model.AppointmentView, error) {
	views := []*model.AppointmentView{}
	if err := r.db.SelectContext(ctx, &views, r.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", classify(err))
	}
	return views, nil
}

func (r *appointmentRepository) ListForClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		WHERE a.clinician_id = ?
	`
	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, r.q(query), clinicianID); err != nil {
		return nil, fmt.Errorf("failed to list clinician appointments: %w", classify(err))
	}
	return appointments, nil
}

func (r *appointmentRepository) ListPatientsOf(ctx context.Context, clinicianID uuid.UUID) ([]*model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id IN (SELECT patient_id FROM appointments WHERE clinician_id = ?)
		ORDER BY last_name, first_name
	`
	patients := []*model.Account{}
	if err := r.db.SelectContext(ctx, &patients, r.q(query), clinicianID); err != nil {
		return nil, fmt.Errorf("failed to list roster patients: %w", classify(err))
	}
	return patients, nil
}

func (r *appointmentRepository) ListCareTeam(ctx context.Context, patientID uuid.UUID) ([]*model.CareTeamMember, error) {
	query := `
		SELECT id, first_name, last_name, COALESCE(specialty, '') AS specialty
		FROM accounts
		WHERE role = ?
		AND id IN (SELECT clinician_id FROM appointments WHERE patient_id = ?)
		ORDER BY last_name, first_name
	`
	team := []*model.CareTeamMember{}
	if err := r.db.SelectContext(ctx, &team, r.q(query), model.RoleClinician, patientID); err != nil {
		return nil, fmt.Errorf("failed to list care team: %w", classify(err))
	}
	return team, nil
}

func (r *appointmentRepository) CountPatientsPerClinician(ctx context.Context) ([]model.ClinicianPatientCount, error) {
	query := `
		SELECT c.id AS clinician_id, c.first_name, c.last_name,
			COALESCE(c.specialty, '') AS specialty,
			COUNT(DISTINCT a.patient_id) AS patients
		FROM accounts c
		LEFT JOIN appointments a ON a.clinician_id = c.id
		WHERE c.role = ?
		GROUP BY c.id, c.first_name, c.last_name, c.specialty
		ORDER BY c.last_name, c.first_name, c.id
	`
	counts := []model.ClinicianPatientCount{}
	if err := r.db.SelectContext(ctx, &counts, r.q(query), model.RoleClinician); err != nil {
		return nil, fmt.Errorf("failed to count patients per clinician: %w", classify(err))
	}
	return counts, nil
}

func (r *appointmentRepository) CountAppointmentsPerPatient(ctx context.Context) ([]model.PatientAppointmentCount, error) {
	query := `
		SELECT p.id AS patient_id, p.first_name, p.last_name,
			COUNT(a.id) AS appointments
		FROM accounts p
		LEFT JOIN appointments a ON a.patient_id = p.id
		WHERE p.role = ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY p.last_name, p.first_name, p.id
	`
	counts := []model.PatientAppointmentCount{}
	if err := r.db.SelectContext(ctx, &counts, r.q(query), model.RolePatient); err != nil {
		return nil, fmt.Errorf("failed to count appointments per patient: %w", classify(err))
	}
	return counts, nil
}
