package util

import (
	"context"
	"sync"
)

// Parallel runs fn over inputs with at most workerLimit goroutines and stops
// feeding new work after the first error, which it returns.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	_, err := ParallelMap(ctx, inputs, workerLimit, func(ctx context.Context, in T) (struct{}, error) {
		return struct{}{}, fn(ctx, in)
	})
	return err
}

// ParallelMap is Parallel with results. out[i] belongs to inputs[i] regardless
// of completion order.
func ParallelMap[T, R any](parent context.Context, inputs []T, workerLimit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}
	if workerLimit > len(inputs) {
		workerLimit = len(inputs)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	out := make([]R, len(inputs))
	tasks := make(chan int)
	errCh := make(chan error, 1)

	var wg sync.WaitGroup
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				res, err := fn(ctx, inputs[idx])
				if err != nil {
					select {
					case errCh <- err:
						cancel()
					default:
					}
					return
				}
				out[idx] = res
			}
		}()
	}

	go func() {
		defer close(tasks)
		for idx := range inputs {
			select {
			case <-ctx.Done():
				return
			case tasks <- idx:
			}
		}
	}()

	wg.Wait()

	select {
	case err := <-errCh:
		return out, err
	default:
	}
	if err := parent.Err(); err != nil {
		return out, err
	}
	return out, nil
}
