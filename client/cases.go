package client

import (
	"context"
	"net/http"
	"net/url"
)

// CasesAPI covers /cases.
type CasesAPI struct{ c *Client }

// File opens a case on behalf of a civilian (form-encoded).
func (a *CasesAPI) File(ctx context.Context, filing CaseFiling) (*Case, error) {
	form := url.Values{}
	form.Set("title", filing.Title)
	form.Set("description", filing.Description)
	form.Set("user_email", filing.UserEmail)
	return decode[*Case](a.c.DoForm(ctx, http.MethodPost, "/cases/file", form))
}

func (a *CasesAPI) Create(ctx context.Context, create CaseCreate) (*Case, error) {
	return decode[*Case](a.c.Do(ctx, http.MethodPost, "/cases/", create, nil))
}

func (a *CasesAPI) List(ctx context.Context) ([]Case, error) {
	return decode[[]Case](a.c.Do(ctx, http.MethodGet, "/cases/", nil, nil))
}

// Mine lists cases filed by email.
func (a *CasesAPI) Mine(ctx context.Context, email string) ([]Case, error) {
	return decode[[]Case](a.c.Do(ctx, http.MethodGet, pathf("/cases/mine/%s", email), nil, nil))
}

func (a *CasesAPI) Get(ctx context.Context, id int64) (*Case, error) {
	return decode[*Case](a.c.Do(ctx, http.MethodGet, pathf("/cases/%d", id), nil, nil))
}

func (a *CasesAPI) Status(ctx context.Context, id int64) (*CaseStatus, error) {
	return decode[*CaseStatus](a.c.Do(ctx, http.MethodGet, pathf("/cases/%d/status", id), nil, nil))
}

func (a *CasesAPI) Update(ctx context.Context, id int64, update CaseUpdate) (*Case, error) {
	return decode[*Case](a.c.Do(ctx, http.MethodPut, pathf("/cases/%d", id), update, nil))
}

func (a *CasesAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.c.Do(ctx, http.MethodDelete, pathf("/cases/%d", id), nil, nil)
	return err
}

func (a *CasesAPI) AddNote(ctx context.Context, note CaseNoteCreate) (*CaseNote, error) {
	return decode[*CaseNote](a.c.Do(ctx, http.MethodPost, "/cases/notes", note, nil))
}

func (a *CasesAPI) Notes(ctx context.Context, id int64) ([]CaseNote, error) {
	return decode[[]CaseNote](a.c.Do(ctx, http.MethodGet, pathf("/cases/%d/notes", id), nil, nil))
}

// Evidence lists evidence attached to case id.
func (a *CasesAPI) Evidence(ctx context.Context, id int64) ([]Evidence, error) {
	return decode[[]Evidence](a.c.Do(ctx, http.MethodGet, pathf("/cases/%d/evidence", id), nil, nil))
}
