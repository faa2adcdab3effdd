package availability

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/internal/service"
	"github.com/jwalitptl/care-portal/pkg/errors"
)

type Service struct {
	accounts     repository.AccountRepository
	appointments repository.AppointmentRepository
	storage      service.Storage
}

func NewService(accounts repository.AccountRepository, appointments repository.AppointmentRepository, storage service.Storage) *Service {
	return &Service{
		accounts:     accounts,
		appointments: appointments,
		storage:      storage,
	}
}

// FreeSlots lists the template slots the clinician has not booked on date. The
// answer is advisory; only booking decides occupancy.
func (s *Service) FreeSlots(ctx context.Context, clinicianID uuid.UUID, date model.Date) (*model.FreeSlots, error) {
	if date.IsZero() {
		return nil, errors.InvalidInput("date is required", nil)
	}

	var clinician *model.Account
	err := s.storage.Do(ctx, "get_clinician", func() (err error) {
		clinician, err = s.accounts.Get(ctx, clinicianID)
		return err
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("clinician", err)
		}
		return nil, service.StorageError(err)
	}
	if clinician.Role != model.RoleClinician {
		return nil, errors.NotFound("clinician", nil)
	}

	var booked []model.Slot
	err = s.storage.Do(ctx, "booked_slots", func() (err error) {
		booked, err = s.appointments.BookedSlots(ctx, clinicianID, date)
		return err
	})
	if err != nil {
		return nil, service.StorageError(err)
	}

	return &model.FreeSlots{
		ClinicianID: clinicianID,
		Date:        date,
		Slots:       Subtract(model.DailyTemplate(), booked),
	}, nil
}

// Subtract returns template without the booked labels, in template order.
func Subtract(template, booked []model.Slot) []model.Slot {
	taken := make(map[model.Slot]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	free := make([]model.Slot, 0, len(template))
	for _, slot := range template {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}
