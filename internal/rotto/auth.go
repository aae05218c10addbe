package rotto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
)

// Auth endpoint paths.
const (
	LoginPath   = "/auth/login"
	LogoutPath  = "/auth/logout"
	RefreshPath = "/auth/refresh"
)

// Login exchanges credentials for a token pair and stores it when the client has a token store.
func (c *Client) Login(ctx context.Context, phoneNum, password string) (*model.TokenPair, error) {
	if strings.TrimSpace(phoneNum) == "" || password == "" {
		return nil, common.NewUserError("phone number and password are required", common.ErrMissingConfig)
	}

	payload, err := json.Marshal(LoginRequest{PhoneNum: phoneNum, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	body, err := c.do(ctx, c.plain, http.MethodPost, LoginPath, bytes.NewReader(payload), header)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	pair, err := decodeTokens(body)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	if c.tokens != nil {
		if err := c.tokens.SaveTokens(ctx, pair); err != nil {
			return nil, fmt.Errorf("failed to save tokens: %w", err)
		}
	}

	c.logger.Info("Logged in", "grant_type", pair.GrantType)
	return pair, nil
}

// Refresh trades the stored refresh token for a new access token and stores the result.
func (c *Client) Refresh(ctx context.Context) (*model.TokenPair, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("%w: no token store", common.ErrUnauthorized)
	}

	current, err := c.tokens.LoadTokens(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: not logged in", common.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	if !current.Usable() {
		return nil, fmt.Errorf("%w: stored tokens are placeholders", common.ErrUnauthorized)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+current.RefreshToken)

	body, err := c.do(ctx, c.plain, http.MethodPost, RefreshPath, nil, header)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	pair, err := decodeTokens(body)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := c.tokens.SaveTokens(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to save tokens: %w", err)
	}

	c.logger.Debug("Refreshed access token")
	return pair, nil
}

// Logout revokes the stored tokens on the backend and forgets them locally.
// Local tokens are cleared even when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.tokens == nil {
		return nil
	}

	current, err := c.tokens.LoadTokens(ctx)
	if errors.Is(err, common.ErrNotFound) {
		c.logger.Debug("Logout requested without stored tokens")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}

	q := url.Values{}
	q.Set("accessToken", current.AccessToken)
	q.Set("refreshToken", current.RefreshToken)

	_, serverErr := c.do(ctx, c.plain, http.MethodGet, LogoutPath+"?"+q.Encode(), nil, nil)

	if err := c.tokens.ClearTokens(ctx); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	if serverErr != nil {
		return fmt.Errorf("failed to revoke tokens on server: %w", serverErr)
	}

	c.logger.Info("Logged out")
	return nil
}

func decodeTokens(body []byte) (*model.TokenPair, error) {
	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}
	return resp.pair(time.Now().UTC())
}
