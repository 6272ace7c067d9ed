package client

import (
	"context"
	"net/http"
)

// UsersAPI covers /users.
type UsersAPI struct{ c *Client }

// List returns the email of every account.
func (a *UsersAPI) List(ctx context.Context) ([]string, error) {
	return decode[[]string](a.c.Do(ctx, http.MethodGet, "/users/", nil, nil))
}

func (a *UsersAPI) Get(ctx context.Context, id int64) (*Account, error) {
	return decode[*Account](a.c.Do(ctx, http.MethodGet, pathf("/users/%d", id), nil, nil))
}

func (a *UsersAPI) ByRole(ctx context.Context, role string) ([]Account, error) {
	return decode[[]Account](a.c.Do(ctx, http.MethodGet, pathf("/users/role/%s", role), nil, nil))
}
