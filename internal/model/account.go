package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient   Role = "patient"
	RoleClinician Role = "clinician"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleClinician, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Role          Role      `db:"role" json:"role"`
	Specialty     *string   `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber *string   `db:"license_number" json:"license_number,omitempty"`
	PhoneNumber   *string   `db:"phone_number" json:"phone_number,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// ClinicianSummary is the public directory view of a clinician.
type ClinicianSummary struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Specialty string    `db:"specialty" json:"specialty"`
}

type ProvisionClinicianRequest struct {
	FirstName     string `json:"first_name" binding:"required,max=100"`
	LastName      string `json:"last_name" binding:"required,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Specialty     string `json:"specialty" binding:"required,max=100"`
	LicenseNumber string `json:"license_number" binding:"required,max=50"`
	PhoneNumber   string `json:"phone_number" binding:"omitempty,max=30"`
}

type ProvisionAdminRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}
