package types

import (
	"encoding/json"
	"time"
)

// UserRole indicates the user's authorization level within the site.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// UserStatus describes whether an account may be used at all.
type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusInactive UserStatus = "INACTIVE"
	StatusBanned   UserStatus = "BANNED"
)

// OtpMethod is one of the step-up verification channels a user may enable.
type OtpMethod string

const (
	OtpEmail   OtpMethod = "EMAIL"
	OtpSMS     OtpMethod = "SMS"
	OtpTotpApp OtpMethod = "TOTP_APP"
	OtpPushApp OtpMethod = "PUSH_APP"
)

// Valid reports whether m is a known OTP method.
func (m OtpMethod) Valid() bool {
	switch m {
	case OtpEmail, OtpSMS, OtpTotpApp, OtpPushApp:
		return true
	}
	return false
}

// User represents an account in the system.
// It contains identity, role, status, and step-up verification metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// Phone is the user's optional, unique phone number.
	Phone *string `json:"phone,omitempty" db:"phone"`

	// Password stores the hashed representation of the user's credential.
	// This field is never exposed in API responses.
	Password string `json:"-" db:"password"`

	// Role indicates the user's authorization level (USER or ADMIN).
	Role UserRole `json:"user_role" db:"user_role"`

	// Status gates whether the account can establish sessions.
	// BANNED accounts always fail session creation.
	Status UserStatus `json:"user_status" db:"user_status"`

	// OtpMethods lists the step-up channels the user has enabled.
	// An empty list means step-up verification is never required.
	OtpMethods []OtpMethod `json:"otp_methods" db:"otp_methods"`

	// OtpSecret holds the shared secret for TOTP_APP verification.
	OtpSecret *string `json:"-" db:"otp_secret"`

	// Security, Preferences, and Profile are free-form JSON blobs
	// owned by the surrounding application.
	Security    json.RawMessage `json:"user_security,omitempty" db:"user_security"`
	Preferences json.RawMessage `json:"user_preferences,omitempty" db:"user_preferences"`
	Profile     json.RawMessage `json:"user_profile,omitempty" db:"user_profile"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// DeletedAt marks the account as soft-deleted when set.
	// Soft-deleted accounts fail session creation and step-up.
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Usable reports whether the account may establish sessions or complete
// step-up verification: it must be ACTIVE and not soft-deleted.
func (u User) Usable() bool {
	return u.Status == StatusActive && u.DeletedAt == nil
}

// HasOtpMethod reports whether the user has enabled the given method.
func (u User) HasOtpMethod(method OtpMethod) bool {
	for _, m := range u.OtpMethods {
		if m == method {
			return true
		}
	}
	return false
}
