package client

import (
	"context"
	"net/http"
)

// PaymentsAPI covers /payments.
type PaymentsAPI struct{ c *Client }

func (a *PaymentsAPI) Create(ctx context.Context, create PaymentCreate) (*Payment, error) {
	return decode[*Payment](a.c.Do(ctx, http.MethodPost, "/payments/", create, nil))
}

func (a *PaymentsAPI) List(ctx context.Context) ([]Payment, error) {
	return decode[[]Payment](a.c.Do(ctx, http.MethodGet, "/payments/", nil, nil))
}

func (a *PaymentsAPI) ByCase(ctx context.Context, caseID int64) ([]Payment, error) {
	return decode[[]Payment](a.c.Do(ctx, http.MethodGet, pathf("/payments/case/%d", caseID), nil, nil))
}

func (a *PaymentsAPI) ByPayer(ctx context.Context, email string) ([]Payment, error) {
	return decode[[]Payment](a.c.Do(ctx, http.MethodGet, pathf("/payments/payer/%s", email), nil, nil))
}

func (a *PaymentsAPI) Update(ctx context.Context, id int64, update PaymentUpdate) (*Payment, error) {
	return decode[*Payment](a.c.Do(ctx, http.MethodPut, pathf("/payments/%d", id), update, nil))
}

func (a *PaymentsAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.c.Do(ctx, http.MethodDelete, pathf("/payments/%d", id), nil, nil)
	return err
}
