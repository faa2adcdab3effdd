package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitRef points at one appointment from a roster entry.
type VisitRef struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Date          Date      `json:"date"`
	Time          Slot      `json:"time"`
	StartsAt      time.Time `json:"starts_at"`
}

type RosterEntry struct {
	PatientID       uuid.UUID `json:"patient_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	LastVisit       *VisitRef `json:"last_visit"`
	NextAppointment *VisitRef `json:"next_appointment"`
}

type CareTeamMember struct {
	ClinicianID uuid.UUID `db:"id" json:"clinician_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Specialty   string    `db:"specialty" json:"specialty"`
}

type ClinicianPatientCount struct {
	ClinicianID uuid.UUID `db:"clinician_id" json:"clinician_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Specialty   string    `db:"specialty" json:"specialty"`
	Patients    int       `db:"patients" json:"patients"`
}

type PatientAppointmentCount struct {
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Appointments int       `db:"appointments" json:"appointments"`
}

type OverviewCounts struct {
	TotalClinicians int                     `json:"total_clinicians"`
	TotalPatients   int                     `json:"total_patients"`
	Clinicians      []ClinicianPatientCount `json:"clinicians"`
}
