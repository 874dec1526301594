package installer

import (
	"context"
	"time"

	"github.com/starrohan999/opstrace/internal/config"
)

// runAttemptWithTimeout runs the pipeline in its own goroutine and returns
// its result, or an AttemptTimeoutError if the deadline passes first. On
// timeout the pipeline context is cancelled and the goroutine is awaited
// before returning, so no attempt outlives its call.
func (i *Installer) runAttemptWithTimeout(ctx context.Context, attempt int, cfg *config.ClusterConfig, run *config.RunConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- i.runPipeline(ctx, cfg, run)
	}()

	timeout := i.timeouts.CreateAttemptTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		cancel()
		<-done
		return &AttemptTimeoutError{Attempt: attempt, Timeout: timeout}
	}
}
