package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resumehub/api/internal/models"
)

var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository stores at most one refresh-token hash per account.
// The user_id primary key plus the ON CONFLICT upsert make overwrite-on-
// rotate unconditional: concurrent rotations race last-write-wins on a
// single row and can never leave partial state.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) Upsert(ctx context.Context, cred models.Credential) error {
	const query = `
		INSERT INTO refresh_credentials (
			user_id, token_hash, expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, NOW(), NOW()
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		cred.UserID,
		cred.TokenHash,
		cred.ExpiresAt,
	)
	return err
}

func (r *CredentialRepository) GetByUser(ctx context.Context, userID string) (models.Credential, error) {
	const query = `
		SELECT user_id, token_hash, expires_at, created_at, updated_at
		FROM refresh_credentials
		WHERE user_id = $1
	`

	row := r.pool.QueryRow(ctx, query, userID)
	var cred models.Credential
	if err := row.Scan(
		&cred.UserID,
		&cred.TokenHash,
		&cred.ExpiresAt,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Credential{}, ErrCredentialNotFound
		}
		return models.Credential{}, err
	}
	return cred, nil
}

func (r *CredentialRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM refresh_credentials WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// DeleteExpired prunes rows whose refresh token can no longer verify anyway.
// Called from the scheduler, not from any request path.
func (r *CredentialRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM refresh_credentials WHERE expires_at < NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
