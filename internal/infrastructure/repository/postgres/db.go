package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema bootstraps all tables. The advisory lock serializes DDL
// across concurrent api/worker startups.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS rfps (
	id TEXT PRIMARY KEY,
	solicitation_number TEXT NOT NULL UNIQUE,
	project_title TEXT NOT NULL,
	agency TEXT NOT NULL,
	due_date TIMESTAMPTZ,
	budget_min BIGINT NOT NULL DEFAULT 0,
	budget_max BIGINT NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'USD',
	security_clearance TEXT,
	timeline TEXT,
	description TEXT,
	required_capabilities JSONB NOT NULL DEFAULT '[]'::jsonb,
	required_certifications JSONB NOT NULL DEFAULT '[]'::jsonb,
	categories JSONB NOT NULL DEFAULT '[]'::jsonb,
	contact_name TEXT,
	contact_email TEXT,
	contact_phone TEXT,
	status TEXT NOT NULL,
	document_key TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rfps_status ON rfps(status);
CREATE INDEX IF NOT EXISTS idx_rfps_agency ON rfps(agency);

CREATE TABLE IF NOT EXISTS vendors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	location TEXT,
	clearance_level TEXT,
	capabilities JSONB NOT NULL DEFAULT '[]'::jsonb,
	certifications JSONB NOT NULL DEFAULT '[]'::jsonb,
	specialties JSONB NOT NULL DEFAULT '[]'::jsonb,
	past_performance_score INT NOT NULL DEFAULT 0,
	employees_count TEXT,
	total_contract_value TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS compatibility_scores (
	rfp_id TEXT NOT NULL,
	vendor_id TEXT NOT NULL,
	score INT NOT NULL DEFAULT 0,
	rationale TEXT,
	factors JSONB,
	win_probability INT,
	risk_level TEXT,
	competition_level TEXT,
	estimated_cost TEXT,
	reasons JSONB,
	source TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (rfp_id, vendor_id)
);

CREATE INDEX IF NOT EXISTS idx_scores_vendor ON compatibility_scores(vendor_id);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_type TEXT NOT NULL,
	user_id TEXT NOT NULL,
	rfp_id TEXT,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	metadata JSONB,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
