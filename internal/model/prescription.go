package model

import (
	"time"

	"github.com/google/uuid"
)

type Prescription struct {
	ID          uuid.UUID `db:"id" json:"id" yaml:"-"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id" yaml:"-"`
	ClinicianID uuid.UUID `db:"clinician_id" json:"clinician_id" yaml:"-"`
	Medication  string    `db:"medication" json:"medication" yaml:"medication"`
	Dosage      string    `db:"dosage" json:"dosage" yaml:"dosage"`
	Frequency   string    `db:"frequency" json:"frequency" yaml:"frequency"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// PrescriptionView attributes a prescription to its prescriber.
type PrescriptionView struct {
	Prescription
	PrescriberFirstName string `db:"prescriber_first_name" json:"prescriber_first_name"`
	PrescriberLastName  string `db:"prescriber_last_name" json:"prescriber_last_name"`
}
