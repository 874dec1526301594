package installer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/k8s"
	"github.com/starrohan999/opstrace/internal/util/retry"
	"github.com/starrohan999/opstrace/internal/watcher"
)

// Options wires the collaborators of an Installer.
type Options struct {
	Credentials CredentialResolver
	Images      ImageChecker
	Infra       InfraProvisioner
	Gate        ReadinessGate

	// NewClient defaults to a client-go backed k8s.Client.
	NewClient ClientFactory
	// StartWatcher defaults to watcher.Start.
	StartWatcher WatcherStarter

	// Timeouts defaults to config.DefaultTimeouts().
	Timeouts *config.Timeouts
	Metrics  *Metrics
	Logger   logr.Logger
}

// Installer creates opstrace instances.
type Installer struct {
	credentials  CredentialResolver
	images       ImageChecker
	infra        InfraProvisioner
	gate         ReadinessGate
	newClient    ClientFactory
	startWatcher WatcherStarter

	timeouts *config.Timeouts
	metrics  *Metrics
	logger   logr.Logger
}

// New creates an installer.
func New(opts Options) *Installer {
	i := &Installer{
		credentials:  opts.Credentials,
		images:       opts.Images,
		infra:        opts.Infra,
		gate:         opts.Gate,
		newClient:    opts.NewClient,
		startWatcher: opts.StartWatcher,
		timeouts:     opts.Timeouts,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}

	if i.timeouts == nil {
		i.timeouts = config.DefaultTimeouts()
	}
	if i.newClient == nil {
		logger := i.logger.WithName("k8s")
		i.newClient = func(kubeconfig []byte) (ClusterClient, error) {
			return k8s.NewClientFromBytes(kubeconfig, logger)
		}
	}
	if i.startWatcher == nil {
		i.startWatcher = func(ctx context.Context, cs kubernetes.Interface, logger logr.Logger) Watcher {
			return watcher.Start(ctx, cs, logger)
		}
	}
	return i
}

// Run creates the instance described by cfg. Attempts that fail or time out
// are retried after a fixed delay until the attempt budget is used up;
// invalid configuration is never retried. The error of the last attempt is
// returned.
func (i *Installer) Run(ctx context.Context, cfg *config.ClusterConfig, run *config.RunConfig) error {
	if run == nil {
		run = &config.RunConfig{}
	}
	if err := config.ValidateRunConfig(cfg, run); err != nil {
		return &RunConfigError{Err: err}
	}

	maxAttempts := i.timeouts.CreateAttempts
	err := retry.Do(ctx, func(ctx context.Context, attempt int) error {
		i.logger.Info("starting create attempt", "attempt", attempt, "maxAttempts", maxAttempts)

		start := time.Now()
		err := i.runAttemptWithTimeout(ctx, attempt, cfg, run)
		elapsed := time.Since(start)

		var timeoutErr *AttemptTimeoutError
		switch {
		case err == nil:
			i.metrics.recordAttempt(resultSuccess, elapsed)
		case errors.As(err, &timeoutErr):
			i.metrics.recordAttempt(resultTimeout, elapsed)
			i.logger.Info("attempt timed out", "attempt", attempt, "timeout", timeoutErr.Timeout)
		default:
			i.metrics.recordAttempt(resultFailure, elapsed)
			i.logger.Error(err, "create attempt failed", "attempt", attempt, "retryable", !retry.IsFatal(err))
		}
		return err
	},
		retry.WithMaxAttempts(maxAttempts),
		retry.WithFixedDelay(i.timeouts.CreateRetryDelay),
		retry.WithOnRetry(func(attempt int, _ error, delay time.Duration) {
			i.logger.Info("retrying create", "nextAttempt", attempt+1, "delay", delay)
		}),
	)
	if err != nil {
		i.logger.Error(err, "create operation failed", "cluster", cfg.ClusterName, "provider", cfg.CloudProvider)
		return fmt.Errorf("create %s (%s): %w", cfg.ClusterName, cfg.CloudProvider, err)
	}

	i.logger.Info(fmt.Sprintf("create operation finished: %s (%s)", cfg.ClusterName, cfg.CloudProvider))
	if !run.HoldController {
		i.logger.Info("Log in here: https://" + InstanceDNSName(cfg))
	}
	return nil
}
