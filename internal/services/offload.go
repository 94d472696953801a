package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// ErrWorkersBusy is returned when no worker frees up before the caller's
// context ends.
var ErrWorkersBusy = errors.New("all restoration workers are busy")

// workerPool bounds the number of restorations running at once. Each job runs
// on its own goroutine so a caller can stop waiting without stopping the job.
type workerPool struct {
	sem  *semaphore.Weighted
	size int64
}

func newWorkerPool(size int) *workerPool {
	if size <= 0 {
		size = 1
	}
	return &workerPool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// offload runs job on a worker. If ctx ends first the caller gets ctx's error
// and the finished job's result is handed to discard instead.
func offload[T any](ctx context.Context, pool *workerPool, job func() (T, error), discard func(T)) (T, error) {
	var zero T

	if err := pool.sem.Acquire(ctx, 1); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrWorkersBusy, err)
	}

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome)
	abandoned := make(chan struct{})

	go func() {
		defer pool.sem.Release(1)
		value, err := job()
		select {
		case done <- outcome{value: value, err: err}:
		case <-abandoned:
			if err == nil && discard != nil {
				discard(value)
			}
		}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		close(abandoned)
		return zero, ctx.Err()
	}
}
