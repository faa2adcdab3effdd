package caregraph

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/care-portal/internal/model"
)

func appt(patient *model.Account, date model.Date, slot model.Slot) *model.Appointment {
	return &model.Appointment{ID: uuid.New(), PatientID: patient.ID, Date: date, Time: slot}
}

func TestBuildRoster(t *testing.T) {
	ada := &model.Account{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace"}
	alan := &model.Account{ID: uuid.New(), FirstName: "Alan", LastName: "Turing"}
	may1 := model.Date{Year: 2024, Month: 5, Day: 1}
	now := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)

	oldest := appt(ada, may1.AddDays(-30), "10:00")
	latestPast := appt(ada, may1, "12:00")
	startsNow := appt(ada, may1, "13:00")
	later := appt(ada, may1.AddDays(7), "10:00")
	alanPast := appt(alan, may1.AddDays(-1), "17:00")
	stray := appt(&model.Account{ID: uuid.New()}, may1, "15:00")

	roster := BuildRoster(
		[]*model.Account{ada, alan},
		[]*model.Appointment{later, oldest, startsNow, latestPast, alanPast, stray},
		now, time.UTC,
	)
	require.Len(t, roster, 2)

	assert.Equal(t, ada.ID, roster[0].PatientID)
	require.NotNil(t, roster[0].LastVisit)
	assert.Equal(t, latestPast.ID, roster[0].LastVisit.AppointmentID)
	require.NotNil(t, roster[0].NextAppointment)
	// An appointment starting exactly now counts as upcoming.
	assert.Equal(t, startsNow.ID, roster[0].NextAppointment.AppointmentID)

	assert.Equal(t, alan.ID, roster[1].PatientID)
	require.NotNil(t, roster[1].LastVisit)
	assert.Equal(t, alanPast.ID, roster[1].LastVisit.AppointmentID)
	assert.Nil(t, roster[1].NextAppointment)
}

func TestBuildRoster_Monotonic(t *testing.T) {
	ada := &model.Account{ID: uuid.New()}
	may1 := model.Date{Year: 2024, Month: 5, Day: 1}
	appointments := []*model.Appointment{
		appt(ada, may1, "10:00"),
		appt(ada, may1, "14:00"),
		appt(ada, may1.AddDays(1), "11:00"),
	}

	var prevLast time.Time
	for hour := 8; hour <= 36; hour++ {
		now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hour) * time.Hour)
		entry := BuildRoster([]*model.Account{ada}, appointments, now, time.UTC)[0]

		if entry.LastVisit != nil {
			assert.True(t, entry.LastVisit.StartsAt.Before(now))
			assert.False(t, entry.LastVisit.StartsAt.Before(prevLast), "last visit moved backwards at %s", now)
			prevLast = entry.LastVisit.StartsAt
		}
		if entry.NextAppointment != nil {
			assert.False(t, entry.NextAppointment.StartsAt.Before(now))
		}
		if entry.LastVisit != nil && entry.NextAppointment != nil {
			assert.True(t, entry.LastVisit.StartsAt.Before(entry.NextAppointment.StartsAt))
		}
	}
}

func TestBuildRoster_TimeZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ada := &model.Account{ID: uuid.New()}
	visit := appt(ada, model.Date{Year: 2024, Month: 5, Day: 1}, "10:00")

	// 10:00 in New York is 14:00 UTC.
	before := BuildRoster([]*model.Account{ada}, []*model.Appointment{visit},
		time.Date(2024, 5, 1, 13, 59, 0, 0, time.UTC), ny)[0]
	assert.Nil(t, before.LastVisit)
	assert.NotNil(t, before.NextAppointment)

	after := BuildRoster([]*model.Account{ada}, []*model.Appointment{visit},
		time.Date(2024, 5, 1, 14, 1, 0, 0, time.UTC), ny)[0]
	assert.NotNil(t, after.LastVisit)
	assert.Nil(t, after.NextAppointment)
}

func TestBuildRoster_NoPatients(t *testing.T) {
	roster := BuildRoster(nil, nil, time.Now(), time.UTC)
	assert.NotNil(t, roster)
	assert.Empty(t, roster)
}
