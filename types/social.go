package types

import "time"

// UserSocialAccount links a user to an external identity provider.
// Its token pair and expiry are independent of any UserSession.
type UserSocialAccount struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	Provider     string     `json:"provider" db:"provider"`
	ProviderID   string     `json:"provider_id" db:"provider_id"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken *string    `json:"-" db:"refresh_token"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty" db:"token_expiry"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
