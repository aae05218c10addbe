package model

import "time"

// Placeholder values written by the mobile client before a real login.
// A stored pair holding either of them counts as absent.
const (
	PlaceholderAccessToken  = "accessToken"
	PlaceholderRefreshToken = "refreshToken"
)

// TokenPair holds the credentials issued by the backend on login.
type TokenPair struct {
	UpdatedAt    time.Time
	GrantType    string
	AccessToken  string
	RefreshToken string
}

// Usable reports whether both tokens are present and real.
func (p *TokenPair) Usable() bool {
	if p == nil {
		return false
	}
	return p.AccessToken != "" && p.AccessToken != PlaceholderAccessToken &&
		p.RefreshToken != "" && p.RefreshToken != PlaceholderRefreshToken
}
