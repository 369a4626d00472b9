package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/folioworks/identity/internal/store"
	"github.com/folioworks/identity/types"
)

// In-memory fakes mirroring the store repositories, including their
// uniqueness behavior, so service semantics can be exercised without a
// database.

type fakeUsers struct {
	byID map[string]types.User
}

func newFakeUsers(users ...types.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]types.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (types.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]types.UserSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: make(map[string]types.UserSession)}
}

func (f *fakeSessions) Create(_ context.Context, session types.UserSession) (types.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.AccessToken == session.AccessToken || existing.RefreshToken == session.RefreshToken {
			return types.UserSession{}, store.ErrDuplicate
		}
	}
	f.byID[session.ID] = session
	return session, nil
}

func (f *fakeSessions) GetByAccessToken(_ context.Context, token string) (types.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.AccessToken == token {
			return s, nil
		}
	}
	return types.UserSession{}, store.ErrNotFound
}

func (f *fakeSessions) GetByRefreshToken(_ context.Context, token string) (types.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.RefreshToken == token {
			return s, nil
		}
	}
	return types.UserSession{}, store.ErrNotFound
}

func (f *fakeSessions) UpdateTokens(_ context.Context, id, accessToken, refreshToken string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for otherID, other := range f.byID {
		if otherID == id {
			continue
		}
		if other.AccessToken == accessToken || other.RefreshToken == refreshToken {
			return store.ErrDuplicate
		}
	}
	s, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.UpdatedAt = updatedAt
	f.byID[id] = s
	return nil
}

func (f *fakeSessions) MarkOtpVerified(_ context.Context, id string, verifiedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	s.OtpVerifyNeeded = false
	s.OtpVerifiedAt = &verifiedAt
	s.UpdatedAt = verifiedAt
	f.byID[id] = s
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, s := range f.byID {
		if !now.Before(s.SessionExpiry) {
			delete(f.byID, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeChallenges struct {
	bySession map[string]store.OtpChallenge
}

func newFakeChallenges() *fakeChallenges {
	return &fakeChallenges{bySession: make(map[string]store.OtpChallenge)}
}

func (f *fakeChallenges) Upsert(_ context.Context, challenge store.OtpChallenge) error {
	f.bySession[challenge.SessionID] = challenge
	return nil
}

func (f *fakeChallenges) Get(_ context.Context, sessionID string) (store.OtpChallenge, error) {
	if c, ok := f.bySession[sessionID]; ok {
		return c, nil
	}
	return store.OtpChallenge{}, store.ErrNotFound
}

func (f *fakeChallenges) Delete(_ context.Context, sessionID string) error {
	delete(f.bySession, sessionID)
	return nil
}

type dispatched struct {
	method types.OtpMethod
	email  string
	code   string
}

type fakeDispatcher struct {
	sent []dispatched
}

func (f *fakeDispatcher) Dispatch(_ context.Context, user types.User, method types.OtpMethod, code string) error {
	f.sent = append(f.sent, dispatched{method: method, email: user.Email, code: code})
	return nil
}

func (f *fakeDispatcher) lastCode() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].code
}

// seqTokens hands out a fixed sequence so tests can force collisions.
type seqTokens struct {
	tokens []string
	next   int
}

func (s *seqTokens) NewToken() (string, error) {
	if s.next < len(s.tokens) {
		t := s.tokens[s.next]
		s.next++
		return t, nil
	}
	s.next++
	return fmt.Sprintf("token-%04d", s.next), nil
}

// plainVerifier treats the stored hash as the plaintext itself.
type plainVerifier struct{}

func (plainVerifier) Verify(hashedPassword, password string) bool {
	return hashedPassword == password
}
