package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/pongsapak26/Bullet-Journal/config"
	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/identity"
)

// CodeExchangeStrategy is the federated login path: the provider redirects
// back with a one-time code, we exchange it server-side, verify the id_token
// and upsert an account for the email claim. Same contract as the magic-link
// strategy, different issuer.
type CodeExchangeStrategy struct {
	users     domain.UserStore
	providers map[string]*providerData
}

type providerData struct {
	provider    *oidc.Provider
	oauthConfig *oauth2.Config
}

func NewCodeExchangeStrategy(ctx context.Context, users domain.UserStore, configs map[string]config.OIDCProvider) (*CodeExchangeStrategy, error) {
	providers := make(map[string]*providerData)
	for name, cfg := range configs {
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc: provider %s: %w", name, err)
		}
		providers[name] = &providerData{
			provider: provider,
			oauthConfig: &oauth2.Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				Endpoint:     provider.Endpoint(),
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "email"},
			},
		}
	}
	return &CodeExchangeStrategy{users: users, providers: providers}, nil
}

func (s *CodeExchangeStrategy) ID() string { return "oidc" }

// AuthURL returns the provider's consent URL for the given state.
func (s *CodeExchangeStrategy) AuthURL(providerID, state string) (string, error) {
	p, ok := s.providers[providerID]
	if !ok {
		return "", fmt.Errorf("oidc: unknown provider %q", providerID)
	}
	return p.oauthConfig.AuthCodeURL(state), nil
}

// Authenticate exchanges the callback code with the provider, verifies the
// id_token and resolves the account by its email claim.
func (s *CodeExchangeStrategy) Authenticate(ctx context.Context, providerID, code string) (*identity.Upsert, error) {
	p, ok := s.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("oidc: unknown provider %q", providerID)
	}

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("oidc: no id_token in token response")
	}

	verifier := p.provider.Verifier(&oidc.Config{ClientID: p.oauthConfig.ClientID})
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc: parse claims: %w", err)
	}
	email := strings.TrimSpace(strings.ToLower(claims.Email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("oidc: provider returned no usable email: %w", domain.ErrValidation)
	}

	return s.users.UpsertUserByEmail(ctx, email)
}
