package caregraph

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/internal/service"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/errors"
)

// Service derives care relationships from the appointment ledger. Unknown ids
// produce empty results rather than errors.
type Service struct {
	accounts     repository.AccountRepository
	appointments repository.AppointmentRepository
	storage      service.Storage
	loc          *time.Location
	now          func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, e.g. for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	accounts repository.AccountRepository,
	appointments repository.AppointmentRepository,
	storage service.Storage,
	loc *time.Location,
	opts ...Option,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		accounts:     accounts,
		appointments: appointments,
		storage:      storage,
		loc:          loc,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the clinic-local calendar day containing the current instant.
func (s *Service) Today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

// TodaysAppointments lists the caller's appointments for today ordered by slot
// start, each naming the other party. The returned date is the day the list
// was read for.
func (s *Service) TodaysAppointments(ctx context.Context, caller auth.Identity) (model.Date, []*model.AppointmentView, error) {
	today := s.Today()

	var list func(context.Context, uuid.UUID, model.Date) ([]*model.AppointmentView, error)
	switch caller.Role {
	case model.RoleClinician:
		list = s.appointments.ListForClinicianOn
	case model.RolePatient:
		list = s.appointments.ListForPatientOn
	default:
		return model.Date{}, nil, errors.Forbidden("only patients and clinicians have appointments")
	}

	var views []*model.AppointmentView
	err := s.storage.Do(ctx, "list_todays_appointments", func() (err error) {
		views, err = list(ctx, caller.SubjectID, today)
		return err
	})
	if err != nil {
		return model.Date{}, nil, service.StorageError(err)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return model.SlotLess(views[i].Time, views[j].Time)
	})
	return today, views, nil
}

func (s *Service) Roster(ctx context.Context, clinicianID uuid.UUID) ([]model.RosterEntry, error) {
	var (
		patients     []*model.Account
		appointments []*model.Appointment
	)
	err := s.storage.Do(ctx, "list_roster", func() (err error) {
		if patients, err = s.appointments.ListPatientsOf(ctx, clinicianID); err != nil {
			return err
		}
		appointments, err = s.appointments.ListForClinician(ctx, clinicianID)
		return err
	})
	if err != nil {
		return nil, service.StorageError(err)
	}

	return BuildRoster(patients, appointments, s.now(), s.loc), nil
}

func (s *Service) CareTeam(ctx context.Context, patientID uuid.UUID) ([]*model.CareTeamMember, error) {
	var team []*model.CareTeamMember
	err := s.storage.Do(ctx, "list_care_team", func() (err error) {
		team, err = s.appointments.ListCareTeam(ctx, patientID)
		return err
	})
	if err != nil {
		return nil, service.StorageError(err)
	}
	return team, nil
}

func (s *Service) OverviewCounts(ctx context.Context) (*model.OverviewCounts, error) {
	counts := &model.OverviewCounts{}
	err := s.storage.Do(ctx, "overview_counts", func() (err error) {
		if counts.TotalClinicians, err = s.accounts.CountByRole(ctx, model.RoleClinician); err != nil {
			return err
		}
		if counts.TotalPatients, err = s.accounts.CountByRole(ctx, model.RolePatient); err != nil {
			return err
		}
		counts.Clinicians, err = s.appointments.CountPatientsPerClinician(ctx)
		return err
	})
	if err != nil {
		return nil, service.StorageError(err)
	}
	return counts, nil
}

func (s *Service) PatientOverview(ctx context.Context) ([]model.PatientAppointmentCount, error) {
	var counts []model.PatientAppointmentCount
	err := s.storage.Do(ctx, "patient_overview", func() (err error) {
		counts, err = s.appointments.CountAppointmentsPerPatient(ctx)
		return err
	})
	if err != nil {
		return nil, service.StorageError(err)
	}
	return counts, nil
}
