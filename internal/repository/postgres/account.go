package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
)

type accountRepository struct {
	BaseRepository
}

func NewAccountRepository(base BaseRepository) repository.AccountRepository {
	return &accountRepository{base}
}

const accountColumns = `id, first_name, last_name, email, password_hash, role,
	specialty, license_number, phone_number, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.q(query),
		account.ID,
		account.FirstName,
		account.LastName,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Specialty,
		account.LicenseNumber,
		account.PhoneNumber,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", classify(err))
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, r.q(query), id); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", classify(err))
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = ? AND email = ?`

	var account model.Account
	err := r.db.GetContext(ctx, &account, r.q(query), role, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", classify(err))
	}
	return &account, nil
}

func (r *accountRepository) ListClinicians(ctx context.Context) ([]*model.ClinicianSummary, error) {
	query := `
		SELECT id, first_name, last_name, COALESCE(specialty, '') AS specialty
		FROM accounts
		WHERE role = ?
		ORDER BY last_name, first_name
	`
	clinicians := []*model.ClinicianSummary{}
	if err := r.db.SelectContext(ctx, &clinicians, r.q(query), model.RoleClinician); err != nil {
		return nil, fmt.Errorf("failed to list clinicians: %w", classify(err))
	}
	return clinicians, nil
}

func (r *accountRepository) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.q(`SELECT COUNT(*) FROM accounts WHERE role = ?`), role); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", classify(err))
	}
	return n, nil
}
