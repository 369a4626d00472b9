package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/folioworks/identity/types"
	"github.com/lib/pq"
)

// LikeRepository handles persistence for likes.
//
// Two partial unique indexes carry the deduplication contract:
// (post_id, user_id) where user_id is set, and
// (post_id, ip_address, device_fingerprint) where it is not. A duplicate
// insert on either path surfaces as ErrDuplicate, which callers treat as a
// normal already-liked outcome.
type LikeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Create(ctx context.Context, like types.Like) (types.Like, error) {
	like.CreatedAt = time.Now()

	const query = `
		INSERT INTO likes (like_id, post_id, user_id, ip_address, device_fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		like.ID,
		like.PostID,
		like.UserID,
		like.IPAddress,
		like.DeviceFingerprint,
		like.CreatedAt,
	)
	if err != nil {
		return types.Like{}, translateLikeInsert(err)
	}
	return like, nil
}

// translateLikeInsert keeps the insert's two foreign keys apart: only the
// post reference maps to ErrForeignKey (callers read it as unknown post). A
// dangling user id means the caller holds a stale user record, which is a
// fault, not an outcome.
func translateLikeInsert(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint != "likes_post_id_fkey" {
		return err
	}
	return translate(err)
}

// DeleteByUser removes the authenticated-tier like for a post.
func (r *LikeRepository) DeleteByUser(ctx context.Context, postID, userID string) error {
	const query = `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`
	return r.deleteOne(ctx, query, postID, userID)
}

// DeleteByVisitor removes the anonymous-tier like for a post. Only rows
// without a user id match, so an authenticated like from the same browser
// is never touched.
func (r *LikeRepository) DeleteByVisitor(ctx context.Context, postID, ip, fingerprint string) error {
	const query = `
		DELETE FROM likes
		WHERE post_id = $1 AND ip_address = $2 AND device_fingerprint = $3 AND user_id IS NULL`
	return r.deleteOne(ctx, query, postID, ip, fingerprint)
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	const query = `SELECT COUNT(1) FROM likes WHERE post_id = $1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, postID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LikeRepository) deleteOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
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
