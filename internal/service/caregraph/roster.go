package caregraph

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/model"
)

// BuildRoster annotates each patient with the latest appointment that started
// before now and the earliest one starting at or after now. It depends only on
// its arguments.
func BuildRoster(patients []*model.Account, appointments []*model.Appointment, now time.Time, loc *time.Location) []model.RosterEntry {
	type visits struct {
		last, next *model.VisitRef
	}
	byPatient := make(map[uuid.UUID]*visits, len(patients))
	for _, p := range patients {
		byPatient[p.ID] = &visits{}
	}

	for _, a := range appointments {
		v, ok := byPatient[a.PatientID]
		if !ok {
			continue
		}
		ref := &model.VisitRef{
			AppointmentID: a.ID,
			Date:          a.Date,
			Time:          a.Time,
			StartsAt:      a.StartsAt(loc),
		}
		if ref.StartsAt.Before(now) {
			if v.last == nil || ref.StartsAt.After(v.last.StartsAt) {
				v.last = ref
			}
			continue
		}
		if v.next == nil || ref.StartsAt.Before(v.next.StartsAt) {
			v.next = ref
		}
	}

	roster := make([]model.RosterEntry, 0, len(patients))
	for _, p := range patients {
		v := byPatient[p.ID]
		roster = append(roster, model.RosterEntry{
			PatientID:       p.ID,
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			Email:           p.Email,
			LastVisit:       v.last,
			NextAppointment: v.next,
		})
	}
	return roster
}
