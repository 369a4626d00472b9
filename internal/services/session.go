package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/folioworks/identity/internal/otp"
	"github.com/folioworks/identity/internal/store"
	"github.com/folioworks/identity/internal/token"
	"github.com/folioworks/identity/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tokenRetries bounds the collision retry loop on token issuance. A
// collision is an internal event resolved with fresh randomness, never a
// business error.
const tokenRetries = 3

// UserLookup defines the user-record reads the authority needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.UserSession) (types.UserSession, error)
	GetByAccessToken(ctx context.Context, accessToken string) (types.UserSession, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (types.UserSession, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, updatedAt time.Time) error
	MarkOtpVerified(ctx context.Context, id string, verifiedAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ChallengeRepository defines persistence for outstanding OTP challenges.
type ChallengeRepository interface {
	Upsert(ctx context.Context, challenge store.OtpChallenge) error
	Get(ctx context.Context, sessionID string) (store.OtpChallenge, error)
	Delete(ctx context.Context, sessionID string) error
}

// CodeDispatcher delivers a generated challenge code to the user over the
// chosen channel. Delivery retries and rate limiting live behind this
// interface, not in the authority.
type CodeDispatcher interface {
	Dispatch(ctx context.Context, user types.User, method types.OtpMethod, code string) error
}

// SessionAuthority creates, validates, and escalates user sessions, and
// owns the OTP step-up state machine.
type SessionAuthority struct {
	users      UserLookup
	sessions   SessionRepository
	challenges ChallengeRepository
	dispatcher CodeDispatcher
	verifier   CredentialVerifier
	tokens     token.Source
	sessionTTL time.Duration
	codeTTL    time.Duration
	logger     *zap.Logger

	now func() time.Time
}

func NewSessionAuthority(
	users UserLookup,
	sessions SessionRepository,
	challenges ChallengeRepository,
	dispatcher CodeDispatcher,
	verifier CredentialVerifier,
	tokens token.Source,
	sessionTTL time.Duration,
	codeTTL time.Duration,
	logger *zap.Logger,
) *SessionAuthority {
	return &SessionAuthority{
		users:      users,
		sessions:   sessions,
		challenges: challenges,
		dispatcher: dispatcher,
		verifier:   verifier,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		codeTTL:    codeTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate verifies an email/password pair and establishes a session.
func (a *SessionAuthority) Authenticate(ctx context.Context, email, password string, device types.DeviceContext) (types.UserSession, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.UserSession{}, ErrInvalidCredentials
		}
		return types.UserSession{}, err
	}
	if !a.verifier.Verify(user.Password, password) {
		return types.UserSession{}, ErrInvalidCredentials
	}
	return a.CreateSession(ctx, user, device)
}

// CreateSession turns a successful credential check into a session record.
// The session starts unverified whenever the user has any OTP method
// enabled.
func (a *SessionAuthority) CreateSession(ctx context.Context, user types.User, device types.DeviceContext) (types.UserSession, error) {
	if !user.Usable() {
		return types.UserSession{}, ErrAccountNotUsable
	}

	now := a.now()
	session := types.UserSession{
		UserID:          user.ID,
		SessionExpiry:   now.Add(a.sessionTTL),
		OtpVerifyNeeded: len(user.OtpMethods) > 0,
		Device:          device,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var err error
	for attempt := 0; attempt < tokenRetries; attempt++ {
		session.ID = uuid.NewString()
		if session.AccessToken, err = a.tokens.NewToken(); err != nil {
			return types.UserSession{}, err
		}
		if session.RefreshToken, err = a.tokens.NewToken(); err != nil {
			return types.UserSession{}, err
		}

		created, createErr := a.sessions.Create(ctx, session)
		if createErr == nil {
			a.logger.Info("session created",
				zap.String("user_id", user.ID),
				zap.Bool("otp_verify_needed", created.OtpVerifyNeeded))
			return created, nil
		}
		err = createErr
		if !errors.Is(createErr, store.ErrDuplicate) {
			return types.UserSession{}, createErr
		}
	}
	return types.UserSession{}, fmt.Errorf("session token collision persisted after %d attempts: %w", tokenRetries, err)
}

// ValidateAccessToken resolves an access token to its session. Unknown
// tokens and expired sessions fail closed with the same error. The expiry
// boundary is inclusive: a session expiring exactly now is already expired.
func (a *SessionAuthority) ValidateAccessToken(ctx context.Context, accessToken string) (types.UserSession, error) {
	session, err := a.sessions.GetByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.UserSession{}, ErrInvalidOrExpiredToken
		}
		return types.UserSession{}, err
	}
	if session.ExpiredAt(a.now()) {
		return types.UserSession{}, ErrInvalidOrExpiredToken
	}
	return session, nil
}

// RequireFullTrust refuses sessions that have not completed step-up
// verification. The error is distinct from ErrInvalidOrExpiredToken so the
// caller can prompt for a challenge instead of a fresh login.
func (a *SessionAuthority) RequireFullTrust(session types.UserSession) error {
	if session.OtpVerifyNeeded {
		return ErrStepUpRequired
	}
	return nil
}

// ValidateForSensitive combines token validation with the full-trust check
// for operations that must not run on a two-tier session.
func (a *SessionAuthority) ValidateForSensitive(ctx context.Context, accessToken string) (types.UserSession, error) {
	session, err := a.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return types.UserSession{}, err
	}
	if err := a.RequireFullTrust(session); err != nil {
		return types.UserSession{}, err
	}
	return session, nil
}

// BeginOtpChallenge generates and dispatches a verification code for the
// session over the given method. Re-issuing replaces the outstanding code
// in place; no new session row is ever created. TOTP_APP needs no dispatch:
// the authenticator app already holds the shared secret.
func (a *SessionAuthority) BeginOtpChallenge(ctx context.Context, session types.UserSession, method types.OtpMethod) error {
	user, err := a.users.GetByID(ctx, session.UserID)
	if err != nil {
		return err
	}
	if !user.Usable() {
		return ErrAccountNotUsable
	}
	if !method.Valid() || !user.HasOtpMethod(method) {
		return ErrUnsupportedOtpMethod
	}

	if method == types.OtpTotpApp {
		if user.OtpSecret == nil {
			return ErrUnsupportedOtpMethod
		}
		// Switching to the authenticator withdraws any dispatched code
		// still outstanding for this session.
		if err := a.challenges.Delete(ctx, session.ID); err != nil {
			return err
		}
		return nil
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}

	now := a.now()
	challenge := store.OtpChallenge{
		SessionID: session.ID,
		Method:    method,
		CodeHash:  otp.HashCode(code),
		ExpiresAt: now.Add(a.codeTTL),
		CreatedAt: now,
	}
	if err := a.challenges.Upsert(ctx, challenge); err != nil {
		return err
	}

	if err := a.dispatcher.Dispatch(ctx, user, method, code); err != nil {
		return err
	}

	a.logger.Info("otp challenge issued",
		zap.String("session_id", session.ID),
		zap.String("method", string(method)))
	return nil
}

// CompleteOtpChallenge verifies a submitted code and, on success, promotes
// the session to full trust in a single update. On mismatch the session is
// left untouched.
func (a *SessionAuthority) CompleteOtpChallenge(ctx context.Context, session types.UserSession, submittedCode string) (types.UserSession, error) {
	user, err := a.users.GetByID(ctx, session.UserID)
	if err != nil {
		return types.UserSession{}, err
	}
	if !user.Usable() {
		return types.UserSession{}, ErrAccountNotUsable
	}

	if err := a.verifyCode(ctx, session, user, submittedCode); err != nil {
		return types.UserSession{}, err
	}

	now := a.now()
	if err := a.sessions.MarkOtpVerified(ctx, session.ID, now); err != nil {
		return types.UserSession{}, err
	}
	// Best-effort cleanup; the challenge is unusable once the session is
	// verified and the delete is idempotent.
	_ = a.challenges.Delete(ctx, session.ID)

	session.OtpVerifyNeeded = false
	session.OtpVerifiedAt = &now
	session.UpdatedAt = now

	a.logger.Info("otp challenge completed", zap.String("session_id", session.ID))
	return session, nil
}

func (a *SessionAuthority) verifyCode(ctx context.Context, session types.UserSession, user types.User, submittedCode string) error {
	challenge, err := a.challenges.Get(ctx, session.ID)
	switch {
	case err == nil:
		if !a.now().After(challenge.ExpiresAt) && otp.CodeMatches(submittedCode, challenge.CodeHash) {
			return nil
		}
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	// TOTP verifies directly against the shared secret, with or without a
	// prior BeginOtpChallenge; an expired or mismatched dispatched code
	// never blocks a valid authenticator code.
	if user.HasOtpMethod(types.OtpTotpApp) && user.OtpSecret != nil {
		if otp.ValidateTOTP(submittedCode, *user.OtpSecret) {
			return nil
		}
	}
	return ErrOtpMismatch
}

// RotateRefreshToken exchanges a refresh token for a fresh token pair.
// Rotation never resets the trust level: an unverified session stays
// unverified and a verified one stays verified.
func (a *SessionAuthority) RotateRefreshToken(ctx context.Context, refreshToken string) (types.UserSession, error) {
	session, err := a.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.UserSession{}, ErrInvalidRefreshToken
		}
		return types.UserSession{}, err
	}
	if session.ExpiredAt(a.now()) {
		return types.UserSession{}, ErrInvalidRefreshToken
	}

	now := a.now()
	for attempt := 0; attempt < tokenRetries; attempt++ {
		var access, refresh string
		if access, err = a.tokens.NewToken(); err != nil {
			return types.UserSession{}, err
		}
		if refresh, err = a.tokens.NewToken(); err != nil {
			return types.UserSession{}, err
		}

		updateErr := a.sessions.UpdateTokens(ctx, session.ID, access, refresh, now)
		if updateErr == nil {
			session.AccessToken = access
			session.RefreshToken = refresh
			session.UpdatedAt = now
			return session, nil
		}
		err = updateErr
		if errors.Is(updateErr, store.ErrNotFound) {
			// Session revoked between lookup and rotation.
			return types.UserSession{}, ErrInvalidRefreshToken
		}
		if !errors.Is(updateErr, store.ErrDuplicate) {
			return types.UserSession{}, updateErr
		}
	}
	return types.UserSession{}, fmt.Errorf("session token collision persisted after %d attempts: %w", tokenRetries, err)
}

// Revoke destroys the session. Revoking an already-revoked session is not
// an error.
func (a *SessionAuthority) Revoke(ctx context.Context, session types.UserSession) error {
	err := a.sessions.Delete(ctx, session.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// SweepExpired destroys every session past its expiry and reports how many
// were removed.
func (a *SessionAuthority) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := a.sessions.DeleteExpired(ctx, a.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		a.logger.Info("swept expired sessions", zap.Int64("removed", removed))
	}
	return removed, nil
}
