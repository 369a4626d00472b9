package services

import (
	"context"
	"errors"
	"testing"

	"github.com/folioworks/identity/internal/store"
	"github.com/folioworks/identity/types"
	"go.uber.org/zap"
)

// fakeLikes mirrors the likes table, including its two partial unique
// constraints and the post foreign key.
type fakeLikes struct {
	knownPosts map[string]bool
	rows       []types.Like
}

func newFakeLikes(posts ...string) *fakeLikes {
	f := &fakeLikes{knownPosts: make(map[string]bool)}
	for _, p := range posts {
		f.knownPosts[p] = true
	}
	return f
}

func (f *fakeLikes) Create(_ context.Context, like types.Like) (types.Like, error) {
	if !f.knownPosts[like.PostID] {
		return types.Like{}, store.ErrForeignKey
	}
	for _, row := range f.rows {
		if row.PostID != like.PostID {
			continue
		}
		if like.UserID != nil {
			if row.UserID != nil && *row.UserID == *like.UserID {
				return types.Like{}, store.ErrDuplicate
			}
		} else if row.UserID == nil && *row.IPAddress == *like.IPAddress && *row.DeviceFingerprint == *like.DeviceFingerprint {
			return types.Like{}, store.ErrDuplicate
		}
	}
	f.rows = append(f.rows, like)
	return like, nil
}

func (f *fakeLikes) DeleteByUser(_ context.Context, postID, userID string) error {
	for i, row := range f.rows {
		if row.PostID == postID && row.UserID != nil && *row.UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeLikes) DeleteByVisitor(_ context.Context, postID, ip, fingerprint string) error {
	for i, row := range f.rows {
		if row.PostID == postID && row.UserID == nil && *row.IPAddress == ip && *row.DeviceFingerprint == fingerprint {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeLikes) CountByPost(_ context.Context, postID string) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.PostID == postID {
			n++
		}
	}
	return n, nil
}

func authedVisitor(userID string) types.VisitorIdentity {
	return types.VisitorIdentity{UserID: userID, IPAddress: "203.0.113.9", DeviceFingerprint: "fp-abc"}
}

func anonVisitor(ip, fingerprint string) types.VisitorIdentity {
	return types.VisitorIdentity{IPAddress: ip, DeviceFingerprint: fingerprint}
}

func TestLikeIdempotence(t *testing.T) {
	tests := []struct {
		name     string
		identity types.VisitorIdentity
	}{
		{name: "authenticated", identity: authedVisitor("u1")},
		{name: "anonymous", identity: anonVisitor("203.0.113.9", "fp-abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEngagementService(newFakeLikes("p1"), zap.NewNop())
			ctx := context.Background()

			outcome, err := svc.Like(ctx, "p1", tt.identity)
			if err != nil || outcome != LikeCreated {
				t.Fatalf("first like = %q, %v; want created, nil", outcome, err)
			}
			outcome, err = svc.Like(ctx, "p1", tt.identity)
			if err != nil || outcome != LikeAlreadyExists {
				t.Fatalf("second like = %q, %v; want already_liked, nil", outcome, err)
			}
			if n, _ := svc.CountLikes(ctx, "p1"); n != 1 {
				t.Errorf("count = %d, want 1", n)
			}

			outcome, err = svc.Unlike(ctx, "p1", tt.identity)
			if err != nil || outcome != LikeRemoved {
				t.Fatalf("unlike = %q, %v; want removed, nil", outcome, err)
			}
			outcome, err = svc.Unlike(ctx, "p1", tt.identity)
			if err != nil || outcome != LikeNotFound {
				t.Fatalf("second unlike = %q, %v; want not_found, nil", outcome, err)
			}
			if n, _ := svc.CountLikes(ctx, "p1"); n != 0 {
				t.Errorf("count after unlike = %d, want 0", n)
			}
		})
	}
}

func TestLikeTiersDoNotInterfere(t *testing.T) {
	svc := NewEngagementService(newFakeLikes("p1"), zap.NewNop())
	ctx := context.Background()

	// Same browser, same network: once logged in, once anonymous.
	authed := authedVisitor("u1")
	anon := anonVisitor(authed.IPAddress, authed.DeviceFingerprint)

	if outcome, err := svc.Like(ctx, "p1", authed); err != nil || outcome != LikeCreated {
		t.Fatalf("authenticated like = %q, %v; want created, nil", outcome, err)
	}
	if outcome, err := svc.Like(ctx, "p1", anon); err != nil || outcome != LikeCreated {
		t.Fatalf("anonymous like = %q, %v; want created, nil", outcome, err)
	}
	if n, _ := svc.CountLikes(ctx, "p1"); n != 2 {
		t.Errorf("count = %d, want 2 across tiers", n)
	}

	// Each unlike removes only its own tier's row.
	if outcome, err := svc.Unlike(ctx, "p1", anon); err != nil || outcome != LikeRemoved {
		t.Fatalf("anonymous unlike = %q, %v; want removed, nil", outcome, err)
	}
	if n, _ := svc.CountLikes(ctx, "p1"); n != 1 {
		t.Errorf("count = %d, want 1 after anonymous unlike", n)
	}
	if outcome, err := svc.Unlike(ctx, "p1", authed); err != nil || outcome != LikeRemoved {
		t.Fatalf("authenticated unlike = %q, %v; want removed, nil", outcome, err)
	}
}

func TestAnonymousLikesDistinguishedByFingerprint(t *testing.T) {
	svc := NewEngagementService(newFakeLikes("p1"), zap.NewNop())
	ctx := context.Background()

	// Two visitors behind the same NAT differ only by fingerprint.
	first := anonVisitor("203.0.113.9", "fp-one")
	second := anonVisitor("203.0.113.9", "fp-two")

	if outcome, err := svc.Like(ctx, "p1", first); err != nil || outcome != LikeCreated {
		t.Fatalf("first visitor like = %q, %v; want created, nil", outcome, err)
	}
	if outcome, err := svc.Like(ctx, "p1", second); err != nil || outcome != LikeCreated {
		t.Fatalf("second visitor like = %q, %v; want created, nil", outcome, err)
	}
	if n, _ := svc.CountLikes(ctx, "p1"); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestLikeInsufficientIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity types.VisitorIdentity
	}{
		{name: "ip only", identity: types.VisitorIdentity{IPAddress: "203.0.113.9"}},
		{name: "fingerprint only", identity: types.VisitorIdentity{DeviceFingerprint: "fp-abc"}},
		{name: "nothing", identity: types.VisitorIdentity{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEngagementService(newFakeLikes("p1"), zap.NewNop())
			ctx := context.Background()

			if _, err := svc.Like(ctx, "p1", tt.identity); !errors.Is(err, ErrInsufficientIdentity) {
				t.Errorf("Like error = %v, want ErrInsufficientIdentity", err)
			}
			if _, err := svc.Unlike(ctx, "p1", tt.identity); !errors.Is(err, ErrInsufficientIdentity) {
				t.Errorf("Unlike error = %v, want ErrInsufficientIdentity", err)
			}
		})
	}
}

func TestLikeUnknownPost(t *testing.T) {
	svc := NewEngagementService(newFakeLikes("p1"), zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Like(ctx, "missing", authedVisitor("u1")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown post error = %v, want store.ErrNotFound", err)
	}
	if _, err := svc.Like(ctx, "  ", authedVisitor("u1")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("blank post error = %v, want store.ErrNotFound", err)
	}
	if _, err := svc.CountLikes(ctx, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("blank count error = %v, want store.ErrNotFound", err)
	}
	if n, err := svc.CountLikes(ctx, "p1"); err != nil || n != 0 {
		t.Errorf("count for unliked post = %d, %v; want 0, nil", n, err)
	}
}

func TestAuthenticatedLikeSurvivesPartialContext(t *testing.T) {
	// A logged-in user likes with no ip or fingerprint at all; the user id
	// alone is a sufficient identity.
	svc := NewEngagementService(newFakeLikes("p1"), zap.NewNop())
	ctx := context.Background()

	bare := types.VisitorIdentity{UserID: "u1"}
	if outcome, err := svc.Like(ctx, "p1", bare); err != nil || outcome != LikeCreated {
		t.Fatalf("like = %q, %v; want created, nil", outcome, err)
	}
	if outcome, err := svc.Like(ctx, "p1", authedVisitor("u1")); err != nil || outcome != LikeAlreadyExists {
		t.Fatalf("like with full context = %q, %v; want already_liked, nil", outcome, err)
	}
	if outcome, err := svc.Unlike(ctx, "p1", bare); err != nil || outcome != LikeRemoved {
		t.Fatalf("unlike = %q, %v; want removed, nil", outcome, err)
	}
}
