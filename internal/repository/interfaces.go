package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken reports that the (clinician, date, time) triple is already booked.
	ErrSlotTaken = errors.New("slot already booked")
	ErrDuplicate = errors.New("duplicate record")
	// ErrTransient marks storage failures that may succeed when retried.
	ErrTransient = errors.New("transient storage failure")
)

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// All repository interfaces in one file
type (
	AccountRepository interface {
		Create(ctx context.Context, account *model.Account) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		GetByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error)
		ListClinicians(ctx context.Context) ([]*model.ClinicianSummary, error)
		CountByRole(ctx context.Context, role model.Role) (int, error)
	}

	// AppointmentRepository is the appointment ledger. Book is its only write.
	AppointmentRepository interface {
		Book(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		BookedSlots(ctx context.Context, clinicianID uuid.UUID, date model.Date) ([]model.Slot, error)
		ListForClinicianOn(ctx context.Context, clinicianID uuid.UUID, date model.Date) ([]*model.AppointmentView, error)
		ListForPatientOn(ctx context.Context, patientID uuid.UUID, date model.Date) ([]*model.AppointmentView, error)
		ListForClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.Appointment, error)
		ListPatientsOf(ctx context.Context, clinicianID uuid.UUID) ([]*model.Account, error)
		ListCareTeam(ctx context.Context, patientID uuid.UUID) ([]*model.CareTeamMember, error)
		CountPatientsPerClinician(ctx context.Context) ([]model.ClinicianPatientCount, error)
		CountAppointmentsPerPatient(ctx context.Context) ([]model.PatientAppointmentCount, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, p *model.Prescription) error
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionView, error)
		ListForClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.PrescriptionView, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending marks up to limit events as processing and returns them,
		// oldest first. Failed events are reclaimed while retry_count < maxRetries.
		ClaimPending(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
