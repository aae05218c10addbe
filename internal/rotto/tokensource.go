package rotto

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/service"
	"golang.org/x/oauth2"
)

// TokenSource serves the stored access token to oauth2.Transport.
// Expiry is unknown to the client; the backend signals it with a 401.
type TokenSource struct {
	store service.TokenStore
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// NewTokenSource creates a TokenSource reading from store.
func NewTokenSource(store service.TokenStore) *TokenSource {
	return &TokenSource{store: store}
}

// Token implements oauth2.TokenSource.
func (s *TokenSource) Token() (*oauth2.Token, error) {
	pair, err := s.store.LoadTokens(context.Background())
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: not logged in", common.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	if !pair.Usable() {
		return nil, fmt.Errorf("%w: stored tokens are placeholders", common.ErrUnauthorized)
	}

	return &oauth2.Token{
		AccessToken:  pair.AccessToken,
		TokenType:    pair.GrantType,
		RefreshToken: pair.RefreshToken,
	}, nil
}
