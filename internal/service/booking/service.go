package booking

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/internal/service"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/errors"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/metrics"
)

const MaxReasonLength = 500

type Service struct {
	accounts     repository.AccountRepository
	appointments repository.AppointmentRepository
	storage      service.Storage
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	accounts repository.AccountRepository,
	appointments repository.AppointmentRepository,
	storage service.Storage,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		accounts:     accounts,
		appointments: appointments,
		storage:      storage,
		logger:       logger,
		metrics:      metrics,
		now:          time.Now,
	}
}

// Resolve turns a booking request into a command. The caller's own side of the
// booking always comes from the verified identity; any id the body supplies for
// that side is ignored.
func Resolve(caller auth.Identity, req model.BookAppointmentRequest) (model.BookCommand, error) {
	cmd := model.BookCommand{
		Reason:   strings.TrimSpace(req.Reason),
		BookedBy: caller.SubjectID,
		BookedAs: caller.Role,
	}

	switch caller.Role {
	case model.RolePatient:
		id, err := uuid.Parse(req.ClinicianID)
		if err != nil {
			return cmd, errors.InvalidInput("clinician_id is required", err)
		}
		cmd.PatientID, cmd.ClinicianID = caller.SubjectID, id
	case model.RoleClinician:
		id, err := uuid.Parse(req.PatientID)
		if err != nil {
			return cmd, errors.InvalidInput("patient_id is required", err)
		}
		cmd.ClinicianID, cmd.PatientID = caller.SubjectID, id
	default:
		return cmd, errors.Forbidden("only patients and clinicians can book appointments")
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return cmd, errors.InvalidInput("date must be YYYY-MM-DD", err)
	}
	slot, err := model.ParseSlot(req.Time)
	if err != nil {
		return cmd, errors.InvalidInput(fmt.Sprintf("time must be one of %s", templateList()), err)
	}
	cmd.Date, cmd.Time = date, slot
	return cmd, nil
}

func templateList() string {
	labels := make([]string, 0, 8)
	for _, s := range model.DailyTemplate() {
		labels = append(labels, s.String())
	}
	return strings.Join(labels, ", ")
}

// Book commits the appointment if its slot is still free. Concurrent bookings of
// one slot produce exactly one success; the rest get Conflict.
func (s *Service) Book(ctx context.Context, cmd model.BookCommand) (*model.Appointment, error) {
	appt, err := s.book(ctx, cmd)
	s.metrics.Bookings.WithLabelValues(outcome(err)).Inc()
	return appt, err
}

func (s *Service) book(ctx context.Context, cmd model.BookCommand) (*model.Appointment, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	clinician, err := s.account(ctx, cmd.ClinicianID, model.RoleClinician)
	if err != nil {
		return nil, err
	}
	patient, err := s.account(ctx, cmd.PatientID, model.RolePatient)
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		ID:          uuid.New(),
		PatientID:   patient.ID,
		ClinicianID: clinician.ID,
		Date:        cmd.Date,
		Time:        cmd.Time,
		Reason:      cmd.Reason,
	}

	payload, err := json.Marshal(model.AppointmentBookedPayload{
		AppointmentID: appt.ID,
		ClinicianID:   clinician.ID,
		ClinicianName: clinician.FullName(),
		PatientID:     patient.ID,
		PatientName:   patient.FullName(),
		PatientEmail:  patient.Email,
		Date:          appt.Date,
		Time:          appt.Time,
		Reason:        appt.Reason,
		BookedByRole:  cmd.BookedAs,
		BookedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to encode booking event: %w", err))
	}
	event := &model.OutboxEvent{EventType: model.EventAppointmentBooked, Payload: payload}

	err = s.storage.Do(ctx, "book_appointment", func() error {
		return s.appointments.Book(ctx, appt, event)
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrSlotTaken) {
			s.logger.WithRequestID(ctx).Info("slot already booked",
				"clinician_id", cmd.ClinicianID.String(),
				"date", cmd.Date.String(),
				"time", cmd.Time.String())
			return nil, errors.Conflict(
				fmt.Sprintf("slot %s on %s is no longer available", cmd.Time, cmd.Date), err)
		}
		return nil, service.StorageError(err)
	}

	s.logger.WithRequestID(ctx).Info("appointment booked",
		"appointment_id", appt.ID.String(),
		"clinician_id", appt.ClinicianID.String(),
		"patient_id", appt.PatientID.String(),
		"booked_as", string(cmd.BookedAs))
	return appt, nil
}

func validate(cmd model.BookCommand) error {
	if cmd.Date.IsZero() {
		return errors.InvalidInput("date is required", nil)
	}
	if !cmd.Time.InTemplate() {
		return errors.InvalidInput(fmt.Sprintf("time must be one of %s", templateList()), nil)
	}
	if utf8.RuneCountInString(cmd.Reason) > MaxReasonLength {
		return errors.InvalidInput(fmt.Sprintf("reason must be at most %d characters", MaxReasonLength), nil)
	}
	return nil
}

func (s *Service) account(ctx context.Context, id uuid.UUID, role model.Role) (*model.Account, error) {
	var account *model.Account
	err := s.storage.Do(ctx, "get_account", func() (err error) {
		account, err = s.accounts.Get(ctx, id)
		return err
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(string(role), err)
		}
		return nil, service.StorageError(err)
	}
	if account.Role != role {
		return nil, errors.NotFound(string(role), nil)
	}
	return account, nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeBooked
	}
	switch errors.CodeOf(err) {
	case errors.ErrConflict:
		return metrics.OutcomeConflict
	case errors.ErrInvalidInput:
		return metrics.OutcomeInvalid
	case errors.ErrNotFound:
		return metrics.OutcomeNotFound
	case errors.ErrUnavailable:
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
