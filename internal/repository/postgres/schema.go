package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Column types differ only where postgres has a richer native type.
var postgresTypes = map[string]string{
	"uuid": "UUID", "date": "DATE", "ts": "TIMESTAMPTZ", "json": "JSONB",
}

var sqliteTypes = map[string]string{
	"uuid": "TEXT", "date": "DATE", "ts": "TIMESTAMP", "json": "TEXT",
}

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS accounts (
	id {{uuid}} PRIMARY KEY,
	first_name VARCHAR(100) NOT NULL,
	last_name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL CHECK (role IN ('patient', 'clinician', 'admin')),
	specialty VARCHAR(100),
	license_number VARCHAR(50) UNIQUE,
	phone_number VARCHAR(30),
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL,
	UNIQUE (role, email)
);

CREATE TABLE IF NOT EXISTS appointments (
	id {{uuid}} PRIMARY KEY,
	patient_id {{uuid}} NOT NULL REFERENCES accounts(id),
	clinician_id {{uuid}} NOT NULL REFERENCES accounts(id),
	appointment_date {{date}} NOT NULL,
	slot_time VARCHAR(5) NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at {{ts}} NOT NULL,
	CONSTRAINT appointments_slot_unique UNIQUE (clinician_id, appointment_date, slot_time)
);

CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments (patient_id, appointment_date);

CREATE TABLE IF NOT EXISTS prescriptions (
	id {{uuid}} PRIMARY KEY,
	patient_id {{uuid}} NOT NULL REFERENCES accounts(id),
	clinician_id {{uuid}} NOT NULL REFERENCES accounts(id),
	medication VARCHAR(255) NOT NULL,
	dosage VARCHAR(100) NOT NULL,
	frequency VARCHAR(100) NOT NULL,
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prescriptions_patient ON prescriptions (patient_id);

CREATE TABLE IF NOT EXISTS outbox_events (
	id {{uuid}} PRIMARY KEY,
	event_type VARCHAR(100) NOT NULL,
	payload {{json}} NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	error_message TEXT,
	retry_count INTEGER NOT NULL DEFAULT 0,
	created_at {{ts}} NOT NULL,
	processed_at {{ts}},
	updated_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outbox_events_status ON outbox_events (status, created_at);
`

// Schema renders the DDL for the given driver.
func Schema(driverName string) (string, error) {
	types := postgresTypes
	switch driverName {
	case "postgres":
	case "sqlite3":
		types = sqliteTypes
	default:
		return "", fmt.Errorf("unsupported driver %q", driverName)
	}
	out := schemaTemplate
	for k, v := range types {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out, nil
}

// Migrate creates any missing tables and indexes. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	ddl, err := Schema(db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
