package services

import (
	"context"
	"time"

	"github.com/folioworks/identity/types"
	"github.com/google/uuid"
)

// SocialAccountRepository defines persistence for provider links.
type SocialAccountRepository interface {
	Upsert(ctx context.Context, account types.UserSocialAccount) (types.UserSocialAccount, error)
	GetByProvider(ctx context.Context, provider, providerID string) (types.UserSocialAccount, error)
	ListByUser(ctx context.Context, userID string) ([]types.UserSocialAccount, error)
	Delete(ctx context.Context, id string) error
}

// SocialAccountService manages provider links. The OAuth handshake happens
// upstream; this service only persists the resulting link and token pair,
// which live and expire independently of any UserSession.
type SocialAccountService struct {
	accounts SocialAccountRepository
	users    UserLookup
}

func NewSocialAccountService(accounts SocialAccountRepository, users UserLookup) *SocialAccountService {
	return &SocialAccountService{accounts: accounts, users: users}
}

// Link attaches an external identity to a user, refreshing the provider
// token pair in place when the identity is already linked.
func (s *SocialAccountService) Link(ctx context.Context, userID, provider, providerID, accessToken string, refreshToken *string, tokenExpiry *time.Time) (types.UserSocialAccount, error) {
	account := types.UserSocialAccount{
		ID:           uuid.NewString(),
		UserID:       userID,
		Provider:     provider,
		ProviderID:   providerID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenExpiry:  tokenExpiry,
	}
	return s.accounts.Upsert(ctx, account)
}

// UserByProvider resolves an external identity to the linked user, for
// feeding into SessionAuthority.CreateSession on social login.
func (s *SocialAccountService) UserByProvider(ctx context.Context, provider, providerID string) (types.User, error) {
	account, err := s.accounts.GetByProvider(ctx, provider, providerID)
	if err != nil {
		return types.User{}, err
	}
	return s.users.GetByID(ctx, account.UserID)
}

// ListForUser returns every provider link owned by the user.
func (s *SocialAccountService) ListForUser(ctx context.Context, userID string) ([]types.UserSocialAccount, error) {
	return s.accounts.ListByUser(ctx, userID)
}

// Unlink removes a provider link.
func (s *SocialAccountService) Unlink(ctx context.Context, id string) error {
	return s.accounts.Delete(ctx, id)
}
