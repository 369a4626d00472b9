package services

import (
	"context"
	"errors"
	"strings"

	"github.com/folioworks/identity/internal/store"
	"github.com/folioworks/identity/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LikeOutcome is the terminal result of a like/unlike request. Duplicate
// likes and missing unlikes are outcomes, not errors: both operations are
// idempotent and safe to retry.
type LikeOutcome string

const (
	LikeCreated       LikeOutcome = "created"
	LikeAlreadyExists LikeOutcome = "already_liked"
	LikeRemoved       LikeOutcome = "removed"
	LikeNotFound      LikeOutcome = "not_found"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	Create(ctx context.Context, like types.Like) (types.Like, error)
	DeleteByUser(ctx context.Context, postID, userID string) error
	DeleteByVisitor(ctx context.Context, postID, ip, fingerprint string) error
	CountByPost(ctx context.Context, postID string) (int64, error)
}

// EngagementService decides whether a like action is a new like, a
// duplicate, or an unlike, using a layered visitor identity: an
// authenticated user id when present, otherwise the ip+fingerprint pair.
// The two tiers never deduplicate against each other.
type EngagementService struct {
	likes  LikeRepository
	logger *zap.Logger
}

func NewEngagementService(likes LikeRepository, logger *zap.Logger) *EngagementService {
	return &EngagementService{likes: likes, logger: logger}
}

// Like records a like for the post under the resolved identity tier.
// Hitting the tier's unique constraint reports LikeAlreadyExists; an
// unknown post reports store.ErrNotFound.
func (s *EngagementService) Like(ctx context.Context, postID string, identity types.VisitorIdentity) (LikeOutcome, error) {
	if strings.TrimSpace(postID) == "" {
		return "", store.ErrNotFound
	}

	like := types.Like{
		ID:     uuid.NewString(),
		PostID: postID,
	}
	if identity.Authenticated() {
		userID := identity.UserID
		like.UserID = &userID
		// The anonymous half is still recorded for abuse analysis; it
		// does not participate in the authenticated uniqueness path.
		if identity.IPAddress != "" {
			ip := identity.IPAddress
			like.IPAddress = &ip
		}
		if identity.DeviceFingerprint != "" {
			fp := identity.DeviceFingerprint
			like.DeviceFingerprint = &fp
		}
	} else {
		if identity.IPAddress == "" || identity.DeviceFingerprint == "" {
			return "", ErrInsufficientIdentity
		}
		ip, fp := identity.IPAddress, identity.DeviceFingerprint
		like.IPAddress = &ip
		like.DeviceFingerprint = &fp
	}

	_, err := s.likes.Create(ctx, like)
	switch {
	case err == nil:
		return LikeCreated, nil
	case errors.Is(err, store.ErrDuplicate):
		return LikeAlreadyExists, nil
	case errors.Is(err, store.ErrForeignKey):
		return "", store.ErrNotFound
	default:
		return "", err
	}
}

// Unlike removes the like matching the resolved identity tier. Absence
// reports LikeNotFound.
func (s *EngagementService) Unlike(ctx context.Context, postID string, identity types.VisitorIdentity) (LikeOutcome, error) {
	if strings.TrimSpace(postID) == "" {
		return "", store.ErrNotFound
	}

	var err error
	if identity.Authenticated() {
		err = s.likes.DeleteByUser(ctx, postID, identity.UserID)
	} else {
		if identity.IPAddress == "" || identity.DeviceFingerprint == "" {
			return "", ErrInsufficientIdentity
		}
		err = s.likes.DeleteByVisitor(ctx, postID, identity.IPAddress, identity.DeviceFingerprint)
	}

	switch {
	case err == nil:
		return LikeRemoved, nil
	case errors.Is(err, store.ErrNotFound):
		return LikeNotFound, nil
	default:
		return "", err
	}
}

// CountLikes returns the number of likes on the post across both tiers.
func (s *EngagementService) CountLikes(ctx context.Context, postID string) (int64, error) {
	if strings.TrimSpace(postID) == "" {
		return 0, store.ErrNotFound
	}
	return s.likes.CountByPost(ctx, postID)
}
