package types

import "time"

// DeviceContext carries the device and network descriptors captured at
// login. Every field is optional; absence is recorded as NULL, not an error.
type DeviceContext struct {
	IP                *string `json:"ip,omitempty"`
	OS                *string `json:"os,omitempty"`
	Device            *string `json:"device,omitempty"`
	Browser           *string `json:"browser,omitempty"`
	City              *string `json:"city,omitempty"`
	State             *string `json:"state,omitempty"`
	Country           *string `json:"country,omitempty"`
	DeviceFingerprint *string `json:"device_fingerprint,omitempty"`
}

// UserSession is one row per active device/browser session.
//
// A session with OtpVerifyNeeded set is a two-tier trust session: the access
// token is valid, but sensitive operations must be refused until the OTP
// challenge completes.
type UserSession struct {
	ID     string `json:"user_session_id" db:"user_session_id"`
	UserID string `json:"user_id" db:"user_id"`

	// AccessToken and RefreshToken are opaque unique strings, valid only
	// by lookup. They carry no decodable structure.
	AccessToken  string `json:"access_token" db:"access_token"`
	RefreshToken string `json:"refresh_token" db:"refresh_token"`

	// SessionExpiry is the absolute expiry; a session is expired once
	// now >= SessionExpiry.
	SessionExpiry time.Time `json:"session_expiry" db:"session_expiry"`

	OtpVerifyNeeded bool       `json:"otp_verify_needed" db:"otp_verify_needed"`
	OtpVerifiedAt   *time.Time `json:"otp_verified_at,omitempty" db:"otp_verified_at"`

	Device DeviceContext `json:"device"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ExpiredAt reports whether the session is expired at the given instant.
// The boundary is inclusive: a session whose expiry equals now is expired.
func (s UserSession) ExpiredAt(now time.Time) bool {
	return !now.Before(s.SessionExpiry)
}
