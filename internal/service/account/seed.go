package account

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/pkg/errors"
)

type SeedPerson struct {
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	Email         string `yaml:"email"`
	Password      string `yaml:"password"`
	Specialty     string `yaml:"specialty"`
	LicenseNumber string `yaml:"license_number"`
	PhoneNumber   string `yaml:"phone_number"`
}

type SeedPrescription struct {
	model.Prescription `yaml:",inline"`

	PatientEmail   string `yaml:"patient_email"`
	ClinicianEmail string `yaml:"clinician_email"`
}

// Fixture is the seed file layout.
type Fixture struct {
	Admins        []SeedPerson       `yaml:"admins"`
	Clinicians    []SeedPerson       `yaml:"clinicians"`
	Patients      []SeedPerson       `yaml:"patients"`
	Prescriptions []SeedPrescription `yaml:"prescriptions"`
}

type SeedResult struct {
	Accounts      int
	Prescriptions int
	Skipped       int
}

func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode seed fixture: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	svc           *Service
	prescriptions repository.PrescriptionRepository
}

func NewSeeder(svc *Service, prescriptions repository.PrescriptionRepository) *Seeder {
	return &Seeder{svc: svc, prescriptions: prescriptions}
}

// Seed creates the fixture's accounts and prescriptions. Accounts that already
// exist are skipped, so seeding twice is harmless.
func (s *Seeder) Seed(ctx context.Context, f *Fixture) (*SeedResult, error) {
	res := &SeedResult{}
	ids := map[string]*model.Account{}
	key := func(role model.Role, email string) string {
		return string(role) + "/" + strings.ToLower(strings.TrimSpace(email))
	}

	record := func(role model.Role, email string, account *model.Account, err error) error {
		if errors.Is(err, errors.ErrConflict) {
			res.Skipped++
			existing, getErr := s.svc.accounts.GetByEmail(ctx, role, email)
			if getErr != nil {
				return fmt.Errorf("failed to load existing %s %s: %w", role, email, getErr)
			}
			ids[key(role, email)] = existing
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to seed %s %s: %w", role, email, err)
		}
		res.Accounts++
		ids[key(role, email)] = account
		return nil
	}

	for _, p := range f.Admins {
		a, err := s.svc.ProvisionAdmin(ctx, &model.ProvisionAdminRequest{
			FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Password: p.Password,
		})
		if err := record(model.RoleAdmin, p.Email, a, err); err != nil {
			return res, err
		}
	}
	for _, p := range f.Clinicians {
		a, err := s.svc.ProvisionClinician(ctx, &model.ProvisionClinicianRequest{
			FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Password: p.Password,
			Specialty: p.Specialty, LicenseNumber: p.LicenseNumber, PhoneNumber: p.PhoneNumber,
		})
		if err := record(model.RoleClinician, p.Email, a, err); err != nil {
			return res, err
		}
	}
	for _, p := range f.Patients {
		a, err := s.svc.ProvisionPatient(ctx, p.FirstName, p.LastName, p.Email, p.Password)
		if err := record(model.RolePatient, p.Email, a, err); err != nil {
			return res, err
		}
	}

	for _, rx := range f.Prescriptions {
		patient, ok := ids[key(model.RolePatient, rx.PatientEmail)]
		if !ok {
			return res, fmt.Errorf("prescription references unknown patient %s", rx.PatientEmail)
		}
		clinician, ok := ids[key(model.RoleClinician, rx.ClinicianEmail)]
		if !ok {
			return res, fmt.Errorf("prescription references unknown clinician %s", rx.ClinicianEmail)
		}
		p := rx.Prescription
		p.PatientID, p.ClinicianID = patient.ID, clinician.ID
		if err := s.prescriptions.Create(ctx, &p); err != nil {
			return res, err
		}
		res.Prescriptions++
	}
	return res, nil
}
