// Package handlers implements the behaviour behind the CLI commands.
package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/image"
	"github.com/starrohan999/opstrace/internal/infra"
	"github.com/starrohan999/opstrace/internal/installer"
	"github.com/starrohan999/opstrace/internal/readiness"
)

const metricsPushTimeout = 10 * time.Second

// CreateOptions carries the create command's arguments and flags.
type CreateOptions struct {
	Provider    string
	ClusterName string

	ConfigPath         string
	InfraOutputsPath   string
	KubeconfigPath     string
	TokensDir          string
	GCPCredentialsFile string
	MetricsPushURL     string
	HoldController     bool

	LogLevel string
}

// runner runs a configured installer.
type runner interface {
	Run(ctx context.Context, cfg *config.ClusterConfig, run *config.RunConfig) error
}

// Factory function variables for create - can be replaced in tests.
var (
	newLogger = func(level string) (logr.Logger, error) {
		return NewLogger(level, os.Stderr)
	}

	newInstaller = func(opts installer.Options) runner {
		return installer.New(opts)
	}
)

// Create handles the create command.
//
// It loads the cluster config, the tuning knobs and the tenant API tokens,
// wires the installer's collaborators and runs it. Metrics are pushed when
// a Pushgateway URL is given, whatever the outcome.
func Create(ctx context.Context, opts CreateOptions) error {
	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(opts.ConfigPath, opts.ClusterName, opts.Provider)
	if err != nil {
		return err
	}

	timeouts, err := config.LoadTimeouts()
	if err != nil {
		return err
	}

	run := &config.RunConfig{
		HoldController:     opts.HoldController,
		KubeconfigFilePath: opts.KubeconfigPath,
	}
	if opts.TokensDir != "" {
		tokens, err := config.LoadTenantAPITokens(opts.TokensDir, cfg.Tenants)
		if err != nil {
			return err
		}
		run.TenantAPITokens = tokens
	}

	metrics := installer.NewMetrics()
	prober := readiness.NewProber(logger.WithName("probe"), readiness.ProberOptions{
		Interval:       timeouts.ProbeInterval,
		ConnectTimeout: timeouts.ProbeConnectTimeout,
		RequestTimeout: timeouts.ProbeRequestTimeout,
		OnAttempt: func(t readiness.Target, outcome string) {
			metrics.RecordProbe(t.Group, outcome)
		},
	})

	inst := newInstaller(installer.Options{
		Credentials: infra.NewCredentialResolver(opts.GCPCredentialsFile),
		Images:      image.NewChecker(logger.WithName("image")),
		Infra:       infra.NewProvisioner(opts.InfraOutputsPath, logger.WithName("infra")),
		Gate:        readiness.NewGate(prober, config.SystemTenant, logger.WithName("readiness")),
		Timeouts:    timeouts,
		Metrics:     metrics,
		Logger:      logger.WithName("installer"),
	})

	runErr := inst.Run(ctx, cfg, run)

	if opts.MetricsPushURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, opts.MetricsPushURL, cfg.ClusterName); err != nil {
			logger.Error(err, "failed to push metrics", "url", opts.MetricsPushURL)
		}
	}

	if runErr != nil {
		return fmt.Errorf("create failed: %w", runErr)
	}
	return nil
}
