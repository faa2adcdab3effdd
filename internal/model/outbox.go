package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusProcessed  OutboxStatus = "processed"
	OutboxStatusFailed     OutboxStatus = "failed"
)

const EventAppointmentBooked = "appointment.booked"

// EventPayload holds raw JSON and scans from both text and bytes.
type EventPayload []byte

func (p EventPayload) Value() (driver.Value, error) {
	return string(p), nil
}

func (p *EventPayload) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		*p = append((*p)[:0], v...)
	case string:
		*p = EventPayload(v)
	case nil:
		*p = nil
	default:
		return fmt.Errorf("cannot scan %T into EventPayload", src)
	}
	return nil
}

type OutboxEvent struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	EventType    string       `db:"event_type" json:"event_type"`
	Payload      EventPayload `db:"payload" json:"payload"`
	Status       OutboxStatus `db:"status" json:"status"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int          `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// AppointmentBookedPayload is the body of an appointment.booked event.
type AppointmentBookedPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	ClinicianID   uuid.UUID `json:"clinician_id"`
	ClinicianName string    `json:"clinician_name"`
	PatientID     uuid.UUID `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	PatientEmail  string    `json:"patient_email"`
	Date          Date      `json:"date"`
	Time          Slot      `json:"time"`
	Reason        string    `json:"reason"`
	BookedByRole  Role      `json:"booked_by_role"`
	BookedAt      time.Time `json:"booked_at"`
}
