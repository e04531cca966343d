package async

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is a named operation.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently and waits for all of them.
//
// With failFast, the context passed to the tasks is cancelled as soon as one
// fails and only that first error is returned. Otherwise every task runs to
// completion and all errors are joined.
func RunParallel(ctx context.Context, tasks []Task, failFast bool) error {
	if len(tasks) == 0 {
		return nil
	}

	if failFast {
		g, gctx := errgroup.WithContext(ctx)
		for _, task := range tasks {
			g.Go(func() error {
				if err := task.Func(gctx); err != nil {
					return fmt.Errorf("%s: %w", task.Name, err)
				}
				return nil
			})
		}
		return g.Wait()
	}

	errs := make([]error, len(tasks))
	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			if err := task.Func(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
