package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/folioworks/identity/types"
	"github.com/lib/pq"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, phone, password, user_role, user_status, otp_methods, otp_secret,
		user_security, user_preferences, user_profile, created_at, updated_at, deleted_at`

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, email, phone, password, user_role, user_status, otp_methods, otp_secret,
			user_security, user_preferences, user_profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.Phone,
		user.Password,
		user.Role,
		user.Status,
		pq.Array(methodsToStrings(user.OtpMethods)),
		user.OtpSecret,
		jsonOrNil(user.Security),
		jsonOrNil(user.Preferences),
		jsonOrNil(user.Profile),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET email = $1,
			phone = $2,
			password = $3,
			user_role = $4,
			user_status = $5,
			otp_methods = $6,
			otp_secret = $7,
			user_security = $8,
			user_preferences = $9,
			user_profile = $10,
			updated_at = $11
		WHERE id = $12`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.Phone,
		user.Password,
		user.Role,
		user.Status,
		pq.Array(methodsToStrings(user.OtpMethods)),
		user.OtpSecret,
		jsonOrNil(user.Security),
		jsonOrNil(user.Preferences),
		jsonOrNil(user.Profile),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// SoftDelete stamps deleted_at without removing the row. Sessions owned by
// the user are purged in the same transaction, so a stamped user can never
// be left with live sessions.
func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	const query = `
		UPDATE users
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL`
	result, err := tx.ExecContext(ctx, query, now, id)
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	var methods pq.StringArray
	var security, preferences, profile []byte
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.Password,
		&user.Role,
		&user.Status,
		&methods,
		&user.OtpSecret,
		&security,
		&preferences,
		&profile,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.OtpMethods = stringsToMethods(methods)
	user.Security = security
	user.Preferences = preferences
	user.Profile = profile
	return user, nil
}

func methodsToStrings(methods []types.OtpMethod) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = string(m)
	}
	return out
}

func stringsToMethods(values []string) []types.OtpMethod {
	if len(values) == 0 {
		return nil
	}
	out := make([]types.OtpMethod, len(values))
	for i, v := range values {
		out[i] = types.OtpMethod(v)
	}
	return out
}

func jsonOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
