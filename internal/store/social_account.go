package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/folioworks/identity/types"
)

// SocialAccountRepository handles persistence for provider links.
type SocialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

const socialColumns = `id, user_id, provider, provider_id, access_token, refresh_token, token_expiry,
		created_at, updated_at`

// Upsert creates the provider link or refreshes its token pair. provider_id
// is globally unique, so re-linking the same external identity updates in
// place instead of growing a second row.
func (r *SocialAccountRepository) Upsert(ctx context.Context, account types.UserSocialAccount) (types.UserSocialAccount, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	const query = `
		INSERT INTO user_social_accounts (id, user_id, provider, provider_id, access_token,
			refresh_token, token_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (provider_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.UserID,
		account.Provider,
		account.ProviderID,
		account.AccessToken,
		account.RefreshToken,
		account.TokenExpiry,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return types.UserSocialAccount{}, translate(err)
	}
	return account, nil
}

func (r *SocialAccountRepository) GetByProvider(ctx context.Context, provider, providerID string) (types.UserSocialAccount, error) {
	const query = `
		SELECT ` + socialColumns + `
		FROM user_social_accounts
		WHERE provider = $1 AND provider_id = $2`
	var account types.UserSocialAccount
	err := r.db.QueryRowContext(ctx, query, provider, providerID).Scan(
		&account.ID,
		&account.UserID,
		&account.Provider,
		&account.ProviderID,
		&account.AccessToken,
		&account.RefreshToken,
		&account.TokenExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.UserSocialAccount{}, ErrNotFound
		}
		return types.UserSocialAccount{}, err
	}
	return account, nil
}

func (r *SocialAccountRepository) ListByUser(ctx context.Context, userID string) ([]types.UserSocialAccount, error) {
	const query = `
		SELECT ` + socialColumns + `
		FROM user_social_accounts
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []types.UserSocialAccount
	for rows.Next() {
		var account types.UserSocialAccount
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.Provider,
			&account.ProviderID,
			&account.AccessToken,
			&account.RefreshToken,
			&account.TokenExpiry,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *SocialAccountRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM user_social_accounts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
