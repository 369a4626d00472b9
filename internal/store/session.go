package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/folioworks/identity/types"
)

// SessionRepository handles persistence for user sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `user_session_id, user_id, access_token, refresh_token, session_expiry,
		otp_verify_needed, otp_verified_at, ip, os, device, browser, city, state, country,
		device_fingerprint, created_at, updated_at`

func (r *SessionRepository) Create(ctx context.Context, session types.UserSession) (types.UserSession, error) {
	const query = `
		INSERT INTO user_sessions (user_session_id, user_id, access_token, refresh_token, session_expiry,
			otp_verify_needed, otp_verified_at, ip, os, device, browser, city, state, country,
			device_fingerprint, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.AccessToken,
		session.RefreshToken,
		session.SessionExpiry,
		session.OtpVerifyNeeded,
		session.OtpVerifiedAt,
		session.Device.IP,
		session.Device.OS,
		session.Device.Device,
		session.Device.Browser,
		session.Device.City,
		session.Device.State,
		session.Device.Country,
		session.Device.DeviceFingerprint,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return types.UserSession{}, translate(err)
	}
	return session, nil
}

func (r *SessionRepository) GetByAccessToken(ctx context.Context, token string) (types.UserSession, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE access_token = $1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, token))
}

func (r *SessionRepository) GetByRefreshToken(ctx context.Context, token string) (types.UserSession, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE refresh_token = $1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, token))
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (types.UserSession, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_session_id = $1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]types.UserSession, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []types.UserSession
	for rows.Next() {
		session, err := r.scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// UpdateTokens replaces the token pair of a session. Trust fields are not
// touched; rotation never changes the step-up state.
func (r *SessionRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, updatedAt time.Time) error {
	const query = `
		UPDATE user_sessions
		SET access_token = $1, refresh_token = $2, updated_at = $3
		WHERE user_session_id = $4`
	result, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, updatedAt, id)
	if err != nil {
		return translate(err)
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

// MarkOtpVerified flips the step-up flag in a single statement so two
// concurrent completions cannot diverge.
func (r *SessionRepository) MarkOtpVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	const query = `
		UPDATE user_sessions
		SET otp_verify_needed = FALSE, otp_verified_at = $1, updated_at = $1
		WHERE user_session_id = $2`
	result, err := r.db.ExecContext(ctx, query, verifiedAt, id)
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

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM user_sessions WHERE user_session_id = $1`
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

// DeleteExpired removes every session whose expiry has passed. The boundary
// is inclusive to match token validation.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM user_sessions WHERE session_expiry <= $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepository) scanSession(row *sql.Row) (types.UserSession, error) {
	session, err := r.scanSessionRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.UserSession{}, ErrNotFound
		}
		return types.UserSession{}, err
	}
	return session, nil
}

func (r *SessionRepository) scanSessionRow(row rowScanner) (types.UserSession, error) {
	var session types.UserSession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.AccessToken,
		&session.RefreshToken,
		&session.SessionExpiry,
		&session.OtpVerifyNeeded,
		&session.OtpVerifiedAt,
		&session.Device.IP,
		&session.Device.OS,
		&session.Device.Device,
		&session.Device.Browser,
		&session.Device.City,
		&session.Device.State,
		&session.Device.Country,
		&session.Device.DeviceFingerprint,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return types.UserSession{}, err
	}
	return session, nil
}
