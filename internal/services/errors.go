package services

import "errors"

// Business error taxonomy. Callers discriminate with errors.Is; anything
// outside this set is an infrastructure fault from the store or a
// collaborator and should be treated as such.
var (
	// ErrAccountNotUsable means the user is banned, inactive, or
	// soft-deleted; no session may be created and no step-up completed.
	ErrAccountNotUsable = errors.New("account not usable")

	// ErrInvalidCredentials means the email/password pair did not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredToken means the access token is unknown or the
	// session has passed its expiry.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrStepUpRequired means the access token is valid but the session
	// has not completed OTP verification. This is deliberately distinct
	// from ErrInvalidOrExpiredToken: the caller should prompt for a
	// challenge, not re-authenticate.
	ErrStepUpRequired = errors.New("step-up verification required")

	// ErrUnsupportedOtpMethod means the requested channel is not among
	// the user's enabled OTP methods.
	ErrUnsupportedOtpMethod = errors.New("unsupported otp method")

	// ErrOtpMismatch means the submitted code did not verify; the session
	// is left untouched.
	ErrOtpMismatch = errors.New("otp code mismatch")

	// ErrInvalidRefreshToken means the refresh token is unknown or its
	// session has expired.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrInsufficientIdentity means an anonymous like/unlike arrived
	// without the full ip+fingerprint pair. Deduplicating on a partial
	// key would be trivially bypassable, so the action is refused.
	ErrInsufficientIdentity = errors.New("insufficient visitor identity")
)
