package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// both runs fa and fb concurrently and returns both results. The context
// each receives is canceled as soon as the other fails, and on failure
// neither result is returned.
func both[A, B any](
	ctx context.Context,
	fa func(context.Context) (A, error),
	fb func(context.Context) (B, error),
) (A, B, error) {
	var (
		a A
		b B
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = fa(gctx)
		return err
	})
	g.Go(func() (err error) {
		b, err = fb(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var (
			noA A
			noB B
		)
		return noA, noB, fmt.Errorf("concurrent start: %w", err)
	}

	return a, b, nil
}
