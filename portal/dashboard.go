package portal

import (
	"context"
	"fmt"

	goCourt "github.com/MrEthical07/goCourt"
	"github.com/MrEthical07/goCourt/client"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the landing data of one role portal. Only the sections the
// role sees are filled.
type Dashboard struct {
	Role      goCourt.Role      `json:"role"`
	Email     string            `json:"email"`
	Cases     []client.Case     `json:"cases,omitempty"`
	Hearings  []client.Hearing  `json:"hearings,omitempty"`
	Evidence  []client.Evidence `json:"evidence,omitempty"`
	Payments  []client.Payment  `json:"payments,omitempty"`
	Documents []client.Document `json:"documents,omitempty"`
	Users     []string          `json:"users,omitempty"`
}

// LoadDashboard fetches the sections for role concurrently. The first
// failing listing cancels the others and is returned.
func LoadDashboard(ctx context.Context, c *client.Client, role goCourt.Role, email string) (*Dashboard, error) {
	d := &Dashboard{Role: role, Email: email}
	g, ctx := errgroup.WithContext(ctx)

	// Each goroutine owns one field of d.
	switch role {
	case goCourt.RoleCivilian:
		g.Go(func() (err error) { d.Cases, err = c.Cases.Mine(ctx, email); return })
		g.Go(func() (err error) { d.Payments, err = c.Payments.ByPayer(ctx, email); return })
		g.Go(func() (err error) { d.Documents, err = c.Documents.ByUploader(ctx, email); return })
	case goCourt.RoleProsecutor, goCourt.RoleJudge:
		g.Go(func() (err error) { d.Cases, err = c.Cases.List(ctx); return })
		g.Go(func() (err error) { d.Evidence, err = c.Evidence.List(ctx); return })
		g.Go(func() (err error) { d.Hearings, err = c.Hearings.List(ctx); return })
	case goCourt.RoleRegistrar:
		g.Go(func() (err error) { d.Cases, err = c.Cases.List(ctx); return })
		g.Go(func() (err error) { d.Hearings, err = c.Hearings.List(ctx); return })
		g.Go(func() (err error) { d.Payments, err = c.Payments.List(ctx); return })
		g.Go(func() (err error) { d.Users, err = c.Users.List(ctx); return })
	default:
		return nil, fmt.Errorf("%w: %q", goCourt.ErrUnknownRole, role)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
