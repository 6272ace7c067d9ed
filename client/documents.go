package client

import (
	"context"
	"net/http"
)

// DocumentsAPI covers /documents. Uploads are not supported.
type DocumentsAPI struct{ c *Client }

func (a *DocumentsAPI) List(ctx context.Context) ([]Document, error) {
	return decode[[]Document](a.c.Do(ctx, http.MethodGet, "/documents/", nil, nil))
}

func (a *DocumentsAPI) ByCase(ctx context.Context, caseID int64) ([]Document, error) {
	return decode[[]Document](a.c.Do(ctx, http.MethodGet, pathf("/documents/case/%d", caseID), nil, nil))
}

func (a *DocumentsAPI) ByUploader(ctx context.Context, email string) ([]Document, error) {
	return decode[[]Document](a.c.Do(ctx, http.MethodGet, pathf("/documents/uploader/%s", email), nil, nil))
}

func (a *DocumentsAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.c.Do(ctx, http.MethodDelete, pathf("/documents/%d", id), nil, nil)
	return err
}
