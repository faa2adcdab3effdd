package postgres_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/internal/repository/postgres"
	"github.com/jwalitptl/care-portal/internal/testutil"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func bookedEvent(t *testing.T, a *model.Appointment) *model.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(model.AppointmentBookedPayload{
		AppointmentID: a.ID,
		ClinicianID:   a.ClinicianID,
		PatientID:     a.PatientID,
		Date:          a.Date,
		Time:          a.Time,
	})
	require.NoError(t, err)
	return &model.OutboxEvent{EventType: model.EventAppointmentBooked, Payload: payload}
}

func TestAppointmentRepository_Book(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := postgres.NewAppointmentRepository(postgres.NewBaseRepository(db))
	outbox := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	clinician := fx.Clinician("Grace", "Hopper", "Cardiology")
	p1 := fx.Patient("Ada", "Lovelace")
	p2 := fx.Patient("Alan", "Turing")
	day := mustDate(t, "2024-05-01")

	first := &model.Appointment{PatientID: p1.ID, ClinicianID: clinician.ID, Date: day, Time: "14:00", Reason: "checkup"}
	require.NoError(t, repo.Book(ctx, first, bookedEvent(t, first)))
	assert.NotEmpty(t, first.ID)

	slots, err := repo.BookedSlots(ctx, clinician.ID, day)
	require.NoError(t, err)
	assert.Equal(t, []model.Slot{"14:00"}, slots)

	// Same slot, other patient.
	clash := &model.Appointment{PatientID: p2.ID, ClinicianID: clinician.ID, Date: day, Time: "14:00"}
	err = repo.Book(ctx, clash, bookedEvent(t, clash))
	assert.ErrorIs(t, err, repository.ErrSlotTaken)

	next := &model.Appointment{PatientID: p2.ID, ClinicianID: clinician.ID, Date: day, Time: "15:00"}
	require.NoError(t, repo.Book(ctx, next, bookedEvent(t, next)))

	slots, err = repo.BookedSlots(ctx, clinician.ID, day)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Slot{"14:00", "15:00"}, slots)

	// Only the two successful bookings produced events.
	events, err := outbox.ClaimPending(ctx, 10, 3)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	other, err := repo.BookedSlots(ctx, clinician.ID, day.AddDays(1))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAppointmentRepository_ConcurrentBookingSameSlot(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := postgres.NewAppointmentRepository(postgres.NewBaseRepository(db))

	clinician := fx.Clinician("Grace", "Hopper", "Cardiology")
	day := mustDate(t, "2024-05-01")

	const attempts = 8
	patients := make([]*model.Account, attempts)
	for i := range patients {
		patients[i] = fx.Patient("Patient", "Number")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(p *model.Account) {
			defer wg.Done()
			err := repo.Book(ctx, &model.Appointment{
				PatientID: p.ID, ClinicianID: clinician.ID, Date: day, Time: "10:00",
			}, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, repository.ErrSlotTaken):
				conflicts++
			}
		}(patients[i])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestAppointmentRepository_DailyLists(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := postgres.NewAppointmentRepository(postgres.NewBaseRepository(db))

	clinician := fx.Clinician("Grace", "Hopper", "Cardiology")
	patient := fx.Patient("Ada", "Lovelace")
	day := mustDate(t, "2024-05-01")

	require.NoError(t, repo.Book(ctx, &model.Appointment{
		PatientID: patient.ID, ClinicianID: clinician.ID, Date: day, Time: "11:00", Reason: "follow-up",
	}, nil))
	require.NoError(t, repo.Book(ctx, &model.Appointment{
		PatientID: patient.ID, ClinicianID: clinician.ID, Date: day.AddDays(1), Time: "11:00",
	}, nil))

	forClinician, err := repo.ListForClinicianOn(ctx, clinician.ID, day)
	require.NoError(t, err)
	require.Len(t, forClinician, 1)
	assert.Equal(t, patient.ID, forClinician[0].CounterpartID)
	assert.Equal(t, "Ada", forClinician[0].CounterpartFirstName)
	assert.Equal(t, "follow-up", forClinician[0].Reason)
	assert.Equal(t, day, forClinician[0].Date)

	forPatient, err := repo.ListForPatientOn(ctx, patient.ID, day)
	require.NoError(t, err)
	require.Len(t, forPatient, 1)
	assert.Equal(t, clinician.ID, forPatient[0].CounterpartID)
	assert.Equal(t, "Hopper", forPatient[0].CounterpartLastName)

	all, err := repo.ListForClinician(ctx, clinician.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAppointmentRepository_CareGraph(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := postgres.NewAppointmentRepository(postgres.NewBaseRepository(db))

	c1 := fx.Clinician("Grace", "Hopper", "Cardiology")
	c2 := fx.Clinician("Barbara", "Liskov", "Neurology")
	idle := fx.Clinician("Idle", "Doctor", "Dermatology")
	p1 := fx.Patient("Ada", "Lovelace")
	p2 := fx.Patient("Alan", "Turing")
	day := mustDate(t, "2024-05-01")

	book := func(p, c *model.Account, d model.Date, slot model.Slot) {
		require.NoError(t, repo.Book(ctx, &model.Appointment{
			PatientID: p.ID, ClinicianID: c.ID, Date: d, Time: slot,
		}, nil))
	}
	book(p1, c1, day, "10:00")
	book(p1, c1, day.AddDays(7), "10:00")
	book(p1, c2, day, "12:00")
	book(p2, c1, day, "11:00")

	team, err := repo.ListCareTeam(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, c1.ID, team[0].ClinicianID)
	assert.Equal(t, "Cardiology", team[0].Specialty)
	assert.Equal(t, c2.ID, team[1].ClinicianID)

	roster, err := repo.ListPatientsOf(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, p1.ID, roster[0].ID)
	assert.Equal(t, p2.ID, roster[1].ID)

	counts, err := repo.CountPatientsPerClinician(ctx)
	require.NoError(t, err)
	byID := map[string]int{}
	for _, c := range counts {
		byID[c.ClinicianID.String()] = c.Patients
	}
	assert.Equal(t, 2, byID[c1.ID.String()])
	assert.Equal(t, 1, byID[c2.ID.String()])
	assert.Equal(t, 0, byID[idle.ID.String()])
	assert.Len(t, counts, 3)

	perPatient, err := repo.CountAppointmentsPerPatient(ctx)
	require.NoError(t, err)
	require.Len(t, perPatient, 2)
	for _, pc := range perPatient {
		switch pc.PatientID {
		case p1.ID:
			assert.Equal(t, 3, pc.Appointments)
		case p2.ID:
			assert.Equal(t, 1, pc.Appointments)
		}
	}

	unknown, err := repo.ListCareTeam(ctx, idle.ID)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}
