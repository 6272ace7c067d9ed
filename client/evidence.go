package client

import (
	"context"
	"net/http"
)

// EvidenceAPI covers /evidence. Uploads are not supported.
type EvidenceAPI struct{ c *Client }

func (a *EvidenceAPI) List(ctx context.Context) ([]Evidence, error) {
	return decode[[]Evidence](a.c.Do(ctx, http.MethodGet, "/evidence/", nil, nil))
}

func (a *EvidenceAPI) ByCase(ctx context.Context, caseID int64) ([]Evidence, error) {
	return decode[[]Evidence](a.c.Do(ctx, http.MethodGet, pathf("/evidence/case/%d", caseID), nil, nil))
}

func (a *EvidenceAPI) ByUploader(ctx context.Context, email string) ([]Evidence, error) {
	return decode[[]Evidence](a.c.Do(ctx, http.MethodGet, pathf("/evidence/uploader/%s", email), nil, nil))
}

func (a *EvidenceAPI) Review(ctx context.Context, id int64, review EvidenceReview) (*Evidence, error) {
	return decode[*Evidence](a.c.Do(ctx, http.MethodPut, pathf("/evidence/%d/review", id), review, nil))
}

func (a *EvidenceAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.c.Do(ctx, http.MethodDelete, pathf("/evidence/%d", id), nil, nil)
	return err
}
