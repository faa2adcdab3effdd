package account

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/internal/service"
	"github.com/jwalitptl/care-portal/pkg/errors"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/security"
)

type Service struct {
	accounts repository.AccountRepository
	hasher   security.PasswordHasher
	storage  service.Storage
	logger   *logger.Logger
}

func NewService(accounts repository.AccountRepository, hasher security.PasswordHasher, storage service.Storage, logger *logger.Logger) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		storage:  storage,
		logger:   logger,
	}
}

func (s *Service) ListClinicians(ctx context.Context) ([]*model.ClinicianSummary, error) {
	var clinicians []*model.ClinicianSummary
	err := s.storage.Do(ctx, "list_clinicians", func() (err error) {
		clinicians, err = s.accounts.ListClinicians(ctx)
		return err
	})
	if err != nil {
		return nil, service.StorageError(err)
	}
	return clinicians, nil
}

func (s *Service) ProvisionClinician(ctx context.Context, req *model.ProvisionClinicianRequest) (*model.Account, error) {
	specialty := strings.TrimSpace(req.Specialty)
	license := strings.TrimSpace(req.LicenseNumber)
	account := &model.Account{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         req.Email,
		Role:          model.RoleClinician,
		Specialty:     &specialty,
		LicenseNumber: &license,
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		account.PhoneNumber = &phone
	}
	if err := s.create(ctx, account, req.Password); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) ProvisionAdmin(ctx context.Context, req *model.ProvisionAdminRequest) (*model.Account, error) {
	account := &model.Account{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Role:      model.RoleAdmin,
	}
	if err := s.create(ctx, account, req.Password); err != nil {
		return nil, err
	}
	return account, nil
}

// ProvisionPatient is used by seeding; patients otherwise register through the
// external signup flow.
func (s *Service) ProvisionPatient(ctx context.Context, first, last, email, password string) (*model.Account, error) {
	account := &model.Account{
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
		Email:     email,
		Role:      model.RolePatient,
	}
	if err := s.create(ctx, account, password); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) create(ctx context.Context, account *model.Account, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return errors.InvalidInput(err.Error(), err)
		}
		return errors.Internal(err)
	}
	account.PasswordHash = hash

	err = s.storage.Do(ctx, "create_account", func() error {
		return s.accounts.Create(ctx, account)
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return errors.Conflict("an account with this email or license number already exists", err)
		}
		return service.StorageError(err)
	}

	s.logger.WithRequestID(ctx).Info("account provisioned",
		"account_id", account.ID.String(), "role", string(account.Role))
	return nil
}
