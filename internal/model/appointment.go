package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is one ledger entry. The ledger never updates or deletes rows.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	ClinicianID uuid.UUID `db:"clinician_id" json:"clinician_id"`
	Date        Date      `db:"appointment_date" json:"date"`
	Time        Slot      `db:"slot_time" json:"time"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// StartsAt is the instant the appointment begins in the clinic's time zone.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.Time.On(a.Date, loc)
}

// AppointmentView is an appointment annotated with the other party's name.
type AppointmentView struct {
	Appointment
	CounterpartID        uuid.UUID `db:"counterpart_id" json:"counterpart_id"`
	CounterpartFirstName string    `db:"counterpart_first_name" json:"counterpart_first_name"`
	CounterpartLastName  string    `db:"counterpart_last_name" json:"counterpart_last_name"`
}

// BookAppointmentRequest is the booking body. The caller's own id is never read
// from it; see the appointment handler.
type BookAppointmentRequest struct {
	ClinicianID string `json:"clinician_id" binding:"omitempty,uuid"`
	PatientID   string `json:"patient_id" binding:"omitempty,uuid"`
	Date        string `json:"date" binding:"required,calendar_date"`
	Time        string `json:"time" binding:"required,slot"`
	Reason      string `json:"reason" binding:"max=500"`
}

// BookCommand is a validated booking with both parties resolved.
type BookCommand struct {
	ClinicianID uuid.UUID
	PatientID   uuid.UUID
	Date        Date
	Time        Slot
	Reason      string
	BookedBy    uuid.UUID
	BookedAs    Role
}

// FreeSlots is the availability answer for one clinician and day.
type FreeSlots struct {
	ClinicianID uuid.UUID `json:"clinician_id"`
	Date        Date      `json:"date"`
	Slots       []Slot    `json:"slots"`
}
