package client

import (
	"context"
	"net/http"
)

// HearingsAPI covers /hearings.
type HearingsAPI struct{ c *Client }

func (a *HearingsAPI) Create(ctx context.Context, create HearingCreate) (*Hearing, error) {
	return decode[*Hearing](a.c.Do(ctx, http.MethodPost, "/hearings/", create, nil))
}

func (a *HearingsAPI) List(ctx context.Context) ([]Hearing, error) {
	return decode[[]Hearing](a.c.Do(ctx, http.MethodGet, "/hearings/", nil, nil))
}

func (a *HearingsAPI) ByCase(ctx context.Context, caseID int64) ([]Hearing, error) {
	return decode[[]Hearing](a.c.Do(ctx, http.MethodGet, pathf("/hearings/case/%d", caseID), nil, nil))
}

func (a *HearingsAPI) ByJudge(ctx context.Context, judgeID int64) ([]Hearing, error) {
	return decode[[]Hearing](a.c.Do(ctx, http.MethodGet, pathf("/hearings/judge/%d", judgeID), nil, nil))
}

func (a *HearingsAPI) Update(ctx context.Context, id int64, update HearingUpdate) (*Hearing, error) {
	return decode[*Hearing](a.c.Do(ctx, http.MethodPut, pathf("/hearings/%d", id), update, nil))
}

func (a *HearingsAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.c.Do(ctx, http.MethodDelete, pathf("/hearings/%d", id), nil, nil)
	return err
}
