package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/folioworks/identity/types"
)

// OtpChallenge is the outstanding-code material for one session's step-up.
// One row per session; re-issuing a challenge replaces the code in place.
type OtpChallenge struct {
	SessionID string
	Method    types.OtpMethod
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// OtpChallengeRepository handles persistence for outstanding challenges.
type OtpChallengeRepository struct {
	db *sql.DB
}

func NewOtpChallengeRepository(db *sql.DB) *OtpChallengeRepository {
	return &OtpChallengeRepository{db: db}
}

// Upsert stores or regenerates the challenge for a session.
func (r *OtpChallengeRepository) Upsert(ctx context.Context, challenge OtpChallenge) error {
	const query = `
		INSERT INTO otp_challenges (session_id, method, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			method = EXCLUDED.method,
			code_hash = EXCLUDED.code_hash,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`
	_, err := r.db.ExecContext(
		ctx,
		query,
		challenge.SessionID,
		challenge.Method,
		challenge.CodeHash,
		challenge.ExpiresAt,
		challenge.CreatedAt,
	)
	return translate(err)
}

func (r *OtpChallengeRepository) Get(ctx context.Context, sessionID string) (OtpChallenge, error) {
	const query = `
		SELECT session_id, method, code_hash, expires_at, created_at
		FROM otp_challenges
		WHERE session_id = $1`
	var challenge OtpChallenge
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&challenge.SessionID,
		&challenge.Method,
		&challenge.CodeHash,
		&challenge.ExpiresAt,
		&challenge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OtpChallenge{}, ErrNotFound
		}
		return OtpChallenge{}, err
	}
	return challenge, nil
}

func (r *OtpChallengeRepository) Delete(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM otp_challenges WHERE session_id = $1`
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}
