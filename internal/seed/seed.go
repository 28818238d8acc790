package seed

import (
	"context"
	"errors"
	"fmt"

	"billboardwatch/internal/password"
	"billboardwatch/internal/store"
	"billboardwatch/internal/utils"
	"billboardwatch/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS billboardwatch;

CREATE TABLE IF NOT EXISTS billboardwatch.users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'public',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON billboardwatch.users (email);

CREATE TABLE IF NOT EXISTS billboardwatch.reports (
	id TEXT PRIMARY KEY,
	reporter_id TEXT NOT NULL REFERENCES billboardwatch.users (id),
	address TEXT NOT NULL,
	lat DOUBLE PRECISION,
	lng DOUBLE PRECISION,
	billboard_size TEXT NOT NULL,
	billboard_type TEXT NOT NULL,
	billboard_content TEXT,
	image_url TEXT,
	image_delete_handle TEXT,
	date_observed TIMESTAMPTZ NOT NULL,
	date_reported TIMESTAMPTZ NOT NULL DEFAULT now(),
	status TEXT NOT NULL DEFAULT 'pending',
	verification_notes TEXT,
	verified_by TEXT REFERENCES billboardwatch.users (id)
);

CREATE INDEX IF NOT EXISTS reports_reporter_id_idx ON billboardwatch.reports (reporter_id);
CREATE INDEX IF NOT EXISTS reports_date_reported_idx ON billboardwatch.reports (date_reported DESC);
`

// ApplySchema creates the schema and tables when they do not exist yet.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SeedOrganizationUser bootstraps a reviewer account so the first deployment
// has someone who can verify reports. Idempotent on email.
func SeedOrganizationUser(ctx context.Context, users *store.UserRepository, name, email, plaintext string) (*types.User, error) {
	existing, err := users.ByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		ID:           utils.NanoID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         types.UserRoleOrganization,
	}

	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to seed organization user: %w", err)
	}

	return user, nil
}
