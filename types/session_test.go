package types

import (
	"testing"
	"time"
)

func TestUserSessionExpiredAt(t *testing.T) {
	expiry := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	session := UserSession{SessionExpiry: expiry}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "one second before", now: expiry.Add(-time.Second), want: false},
		{name: "exactly at expiry", now: expiry, want: true},
		{name: "one second after", now: expiry.Add(time.Second), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := session.ExpiredAt(tt.now); got != tt.want {
				t.Errorf("ExpiredAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
