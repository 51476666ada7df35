package job

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-lived stream that blocks until ctx is done.
type Runner interface {
	Start(ctx context.Context) error
}

// RunAll starts every runner and waits. A runner returning an error cancels the rest.
func RunAll(ctx context.Context, runners ...Runner) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error { return r.Start(ctx) })
	}
	return g.Wait()
}
