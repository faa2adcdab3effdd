package prescription

import (
	"context"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/internal/service"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/errors"
)

type Service struct {
	repo    repository.PrescriptionRepository
	storage service.Storage
}

func NewService(repo repository.PrescriptionRepository, storage service.Storage) *Service {
	return &Service{repo: repo, storage: storage}
}

// ListFor returns the caller's prescriptions with prescriber attribution: those
// written for a patient, or those a clinician issued.
func (s *Service) ListFor(ctx context.Context, caller auth.Identity) ([]*model.PrescriptionView, error) {
	var views []*model.PrescriptionView
	var err error

	switch caller.Role {
	case model.RolePatient:
		err = s.storage.Do(ctx, "list_patient_prescriptions", func() (err error) {
			views, err = s.repo.ListForPatient(ctx, caller.SubjectID)
			return err
		})
	case model.RoleClinician:
		err = s.storage.Do(ctx, "list_clinician_prescriptions", func() (err error) {
			views, err = s.repo.ListForClinician(ctx, caller.SubjectID)
			return err
		})
	default:
		return nil, errors.Forbidden("only patients and clinicians have prescriptions")
	}
	if err != nil {
		return nil, service.StorageError(err)
	}
	return views, nil
}
