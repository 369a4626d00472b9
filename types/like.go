package types

import "time"

// Like is an engagement fact tied to a post.
//
// Exactly one of two identity paths determines deduplication: the user id
// when the visitor was authenticated, or the (ip, fingerprint) pair when
// anonymous. Both halves may be recorded for abuse analysis, but only the
// path matching the creating tier participates in the uniqueness contract.
type Like struct {
	ID                string    `json:"like_id" db:"like_id"`
	PostID            string    `json:"post_id" db:"post_id"`
	UserID            *string   `json:"user_id,omitempty" db:"user_id"`
	IPAddress         *string   `json:"ip_address,omitempty" db:"ip_address"`
	DeviceFingerprint *string   `json:"device_fingerprint,omitempty" db:"device_fingerprint"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// VisitorIdentity is the layered identity a like/unlike request arrives
// with. UserID takes precedence when present; otherwise both IPAddress and
// DeviceFingerprint are required.
type VisitorIdentity struct {
	UserID            string
	IPAddress         string
	DeviceFingerprint string
}

// Authenticated reports whether the identity resolves to the user tier.
func (v VisitorIdentity) Authenticated() bool {
	return v.UserID != ""
}
