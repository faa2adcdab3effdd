// Package testutil provides a migrated sqlite database and account fixtures for
// package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/care-portal/internal/config"
	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/internal/repository/postgres"
)

// NewDB returns a migrated sqlite database in a temp dir. A single connection
// serializes writers the way row locks would on postgres.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on",
		filepath.Join(t.TempDir(), "portal.db"))
	db, err := postgres.NewDB(config.DatabaseConfig{Driver: "sqlite3", DSN: dsn, MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(context.Background(), db))
	return db
}

type Fixtures struct {
	t        *testing.T
	accounts repository.AccountRepository
}

func NewFixtures(t *testing.T, db *sqlx.DB) *Fixtures {
	return &Fixtures{
		t:        t,
		accounts: postgres.NewAccountRepository(postgres.NewBaseRepository(db)),
	}
}

func (f *Fixtures) create(role model.Role, first, last string, specialty *string) *model.Account {
	f.t.Helper()
	id := uuid.New()
	account := &model.Account{
		ID:           id,
		FirstName:    first,
		LastName:     last,
		Email:        fmt.Sprintf("%s.%s@example.com", first, id.String()[:8]),
		PasswordHash: "x",
		Role:         role,
		Specialty:    specialty,
	}
	if role == model.RoleClinician {
		license := "LIC-" + id.String()[:8]
		account.LicenseNumber = &license
	}
	require.NoError(f.t, f.accounts.Create(context.Background(), account))
	return account
}

func (f *Fixtures) Patient(first, last string) *model.Account {
	f.t.Helper()
	return f.create(model.RolePatient, first, last, nil)
}

func (f *Fixtures) Clinician(first, last, specialty string) *model.Account {
	f.t.Helper()
	return f.create(model.RoleClinician, first, last, &specialty)
}

func (f *Fixtures) Admin(first, last string) *model.Account {
	f.t.Helper()
	return f.create(model.RoleAdmin, first, last, nil)
}
