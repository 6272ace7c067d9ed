package client

import (
	"context"
	"net/http"
	"net/url"
)

// AuthAPI covers /auth.
type AuthAPI struct{ c *Client }

// Login posts the OAuth2 password form (username, password) to /auth/token.
// It does not touch the client credential.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	return decode[*TokenResponse](a.c.DoForm(ctx, http.MethodPost, "/auth/token", form))
}

func (a *AuthAPI) Register(ctx context.Context, registration Registration) (*Account, error) {
	return decode[*Account](a.c.Do(ctx, http.MethodPost, "/auth/register", registration, nil))
}

// Me returns the account the current credential belongs to.
func (a *AuthAPI) Me(ctx context.Context) (*Account, error) {
	return decode[*Account](a.c.Do(ctx, http.MethodGet, "/auth/me", nil, nil))
}
