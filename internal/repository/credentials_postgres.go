package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCredentialStore persists credentials in tenant_credentials so a
// refreshed token survives restarts.
type PostgresCredentialStore struct {
	pool *pgxpool.Pool
}

func NewPostgresCredentialStore(pool *pgxpool.Pool) *PostgresCredentialStore {
	return &PostgresCredentialStore{pool: pool}
}

const credentialColumns = `tenant, access_token, user_id, refreshed_at, updated_at`

func scanCredential(row pgx.Row) (model.Credential, error) {
	var cred model.Credential
	err := row.Scan(&cred.Tenant, &cred.AccessToken, &cred.UserID, &cred.RefreshedAt, &cred.UpdatedAt)
	return cred, err
}

func (s *PostgresCredentialStore) Get(ctx context.Context, tenant string) (model.Credential, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+credentialColumns+` FROM tenant_credentials WHERE tenant = $1`, tenant)

	cred, err := scanCredential(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Credential{}, ErrCredentialNotFound
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("get credential %s: %w", tenant, err)
	}
	return cred, nil
}

func (s *PostgresCredentialStore) List(ctx context.Context) ([]model.Credential, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+credentialColumns+` FROM tenant_credentials ORDER BY tenant`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	creds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Credential, error) {
		return scanCredential(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

// Seed upserts a configured credential. A token refreshed since the last seed
// is kept unless the configured token itself changed.
func (s *PostgresCredentialStore) Seed(ctx context.Context, cred model.Credential) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tenant_credentials (tenant, access_token, user_id, seeded_token)
		VALUES ($1, $2, $3, $2)
		ON CONFLICT (tenant) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			access_token = CASE
				WHEN tenant_credentials.refreshed_at IS NULL
					OR tenant_credentials.seeded_token <> EXCLUDED.seeded_token
				THEN EXCLUDED.access_token
				ELSE tenant_credentials.access_token
			END,
			refreshed_at = CASE
				WHEN tenant_credentials.seeded_token <> EXCLUDED.seeded_token THEN NULL
				ELSE tenant_credentials.refreshed_at
			END,
			seeded_token = EXCLUDED.seeded_token,
			updated_at = now()`,
		cred.Tenant, cred.AccessToken, cred.UserID)
	if err != nil {
		return fmt.Errorf("seed credential %s: %w", cred.Tenant, err)
	}
	return nil
}

func (s *PostgresCredentialStore) SaveRefreshed(ctx context.Context, tenant, accessToken string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tenant_credentials
		SET access_token = $2, refreshed_at = now(), updated_at = now()
		WHERE tenant = $1`,
		tenant, accessToken)
	if err != nil {
		return fmt.Errorf("save refreshed credential %s: %w", tenant, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
