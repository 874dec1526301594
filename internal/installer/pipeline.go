package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/controllerconfig"
	"github.com/starrohan999/opstrace/internal/infra"
	"github.com/starrohan999/opstrace/internal/k8s"
	"github.com/starrohan999/opstrace/internal/tenants"
	"github.com/starrohan999/opstrace/internal/util/naming"
	"github.com/starrohan999/opstrace/internal/util/retry"
)

const (
	// SystemTokenSecretName is the secret holding the system tenant's API token.
	SystemTokenSecretName = naming.SystemTokenSecret
	// SystemTokenSecretNamespace is where SystemTokenSecretName lives.
	SystemTokenSecretNamespace = "kube-system"
	// SystemTokenSecretKey is the data key of the token.
	SystemTokenSecretKey = "value"

	// placeholderToken is stored when data API authentication is disabled.
	placeholderToken = "not-required"

	deploymentPollInterval = 5 * time.Second
)

// errHold ends the pipeline early and successfully when the controller is held.
var errHold = errors.New("controller held")

// attemptState is the data one pipeline run passes between its steps.
type attemptState struct {
	cfg *config.ClusterConfig
	run *config.RunConfig

	creds            *infra.Credentials
	infra            *infra.Result
	controllerConfig *controllerconfig.Config
	client           ClusterClient
	watcher          Watcher
}

func (s *attemptState) stopWatcher() {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
}

type step struct {
	name string
	run  func(ctx context.Context, s *attemptState) error
}

func (i *Installer) steps() []step {
	return []step{
		{"resolve-credentials", i.resolveCredentials},
		{"check-controller-image", i.checkControllerImage},
		{"create-infrastructure", i.createInfrastructure},
		{"controller-config", i.buildControllerConfig},
		{"kubeconfig", i.useKubeconfig},
		{"cluster-diagnostics", i.logClusterDiagnostics},
		{"apply-config", i.applyConfig},
		{"system-tenant-token", i.storeSystemTenantToken},
		{"hold-controller", i.holdController},
		{"deploy-controller", i.deployController},
		{"start-watcher", i.startClusterWatcher},
		{"wait-controller", i.waitForController},
		{"wait-workloads", i.waitForWorkloads},
		{"stop-watcher", i.stopClusterWatcher},
		{"wait-endpoints", i.waitForEndpoints},
	}
}

// runPipeline executes the steps of one attempt in order. The cluster
// watcher, once started, is stopped on every exit path.
func (i *Installer) runPipeline(ctx context.Context, cfg *config.ClusterConfig, run *config.RunConfig) error {
	s := &attemptState{cfg: cfg, run: run}
	defer s.stopWatcher()

	steps := i.steps()
	start := time.Now()
	for n, st := range steps {
		stepStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", st.name, n+1, len(steps))
		i.logger.V(1).Info("step starting", "step", name)

		err := st.run(ctx, s)
		i.metrics.recordStep(st.name, time.Since(stepStart))
		if errors.Is(err, errHold) {
			i.logger.Info("controller deployment held, stopping here")
			return nil
		}
		if err != nil {
			i.logger.V(1).Info("step failed", "step", name, "error", err.Error())
			return fmt.Errorf("%s: %w", st.name, err)
		}

		i.logger.V(1).Info("step completed", "step", name, "duration", time.Since(stepStart).Round(time.Millisecond))
	}

	i.logger.Info("pipeline completed", "duration", time.Since(start).Round(time.Second))
	return nil
}

func (i *Installer) resolveCredentials(ctx context.Context, s *attemptState) error {
	creds, err := i.credentials.Resolve(ctx, s.cfg)
	if err != nil {
		return &InfraCreationError{Err: err}
	}
	s.creds = creds
	i.logger.Info("resolved cloud credentials", "provider", creds.Provider, "region", creds.Region)
	return nil
}

func (i *Installer) checkControllerImage(ctx context.Context, s *attemptState) error {
	if s.run.HoldController {
		return nil
	}
	dgst, err := i.images.Resolve(ctx, s.cfg.ControllerImage)
	if err != nil {
		return &DeploymentError{Err: err}
	}
	i.logger.Info("controller image found", "image", s.cfg.ControllerImage, "digest", dgst)
	return nil
}

func (i *Installer) createInfrastructure(ctx context.Context, s *attemptState) error {
	res, err := i.infra.EnsureInfra(ctx, s.cfg, s.creds)
	if err != nil {
		return &InfraCreationError{Err: err}
	}
	s.infra = res
	return nil
}

func (i *Installer) buildControllerConfig(_ context.Context, s *attemptState) error {
	cc := controllerconfig.New(s.cfg, s.infra)
	if err := controllerconfig.Validate(cc); err != nil {
		return retry.Fatal(&ConfigValidationError{Err: err})
	}
	s.controllerConfig = cc
	return nil
}

func (i *Installer) useKubeconfig(_ context.Context, s *attemptState) error {
	if path := s.run.KubeconfigFilePath; path != "" {
		if err := os.WriteFile(path, s.infra.Kubeconfig, 0o600); err != nil {
			i.logger.Error(err, "failed to write kubeconfig, continuing", "path", path)
		} else {
			i.logger.Info("wrote kubeconfig", "path", path)
		}
	}

	client, err := i.newClient(s.infra.Kubeconfig)
	if err != nil {
		return &InfraCreationError{Err: fmt.Errorf("unusable kubeconfig: %w", err)}
	}
	s.client = client
	return nil
}

func (i *Installer) logClusterDiagnostics(ctx context.Context, s *attemptState) error {
	namespaces, err := s.client.ListNamespaces(ctx)
	if err != nil {
		i.logger.Error(err, "cluster diagnostics failed, continuing")
		return nil
	}
	i.logger.Info("kubernetes API reachable", "namespaces", len(namespaces))
	i.logger.V(1).Info("namespaces", "names", namespaces)
	return nil
}

func (i *Installer) applyConfig(ctx context.Context, s *attemptState) error {
	data, err := controllerconfig.Render(s.controllerConfig)
	if err != nil {
		return &ApplyConfigError{Object: "controller config", Err: err}
	}
	if err := s.client.ApplyConfigMap(ctx, controllerconfig.ConfigMapNamespace, controllerconfig.ConfigMapName, data); err != nil {
		return &ApplyConfigError{Object: "controller config", Err: err}
	}

	data, err = tenants.Render(tenants.FromNames(s.cfg.Tenants))
	if err != nil {
		return &ApplyConfigError{Object: "tenants config", Err: err}
	}
	if err := s.client.ApplyConfigMap(ctx, tenants.ConfigMapNamespace, tenants.ConfigMapName, data); err != nil {
		return &ApplyConfigError{Object: "tenants config", Err: err}
	}
	return nil
}

func (i *Installer) storeSystemTenantToken(ctx context.Context, s *attemptState) error {
	token := systemTenantToken(s.cfg, s.run)
	err := s.client.StoreSecret(ctx, SystemTokenSecretNamespace, SystemTokenSecretName, map[string][]byte{
		SystemTokenSecretKey: []byte(token),
	})
	if err != nil {
		return &ApplyConfigError{Object: "system tenant token secret", Err: err}
	}
	return nil
}

// systemTenantToken returns the token to store for the system tenant. The
// secret always exists; without authentication it holds a placeholder.
func systemTenantToken(cfg *config.ClusterConfig, run *config.RunConfig) string {
	if token, ok := run.Token(config.SystemTenant); ok {
		return token
	}
	if !cfg.DataAPIAuthenticationDisabled {
		panic("no system tenant API token although data API authentication is enabled")
	}
	return placeholderToken
}

func (i *Installer) holdController(_ context.Context, s *attemptState) error {
	if s.run.HoldController {
		return errHold
	}
	return nil
}

func (i *Installer) deployController(ctx context.Context, s *attemptState) error {
	err := s.client.DeployController(ctx, k8s.ControllerSpec{
		ClusterName: s.cfg.ClusterName,
		Image:       s.cfg.ControllerImage,
	})
	if err != nil {
		return &DeploymentError{Err: err}
	}
	return nil
}

func (i *Installer) startClusterWatcher(ctx context.Context, s *attemptState) error {
	s.watcher = i.startWatcher(ctx, s.client.Clientset(), i.logger.WithName("watcher"))
	return nil
}

func (i *Installer) waitForController(ctx context.Context, s *attemptState) error {
	i.logger.Info("waiting for controller deployment")
	if err := s.client.WaitForDeployment(ctx, k8s.ControllerNamespace, k8s.ControllerName, deploymentPollInterval); err != nil {
		i.logStuckPods(s)
		return &DeploymentError{Err: err}
	}
	i.logger.Info("controller deployment ready")
	return nil
}

func (i *Installer) waitForWorkloads(ctx context.Context, s *attemptState) error {
	i.logger.Info("waiting for the cluster to converge")
	err := s.client.WaitForWorkloadsReady(ctx, deploymentPollInterval, i.timeouts.ProgressInterval, func(p k8s.WorkloadProgress) {
		pending := p.NotReady
		if len(pending) > 5 {
			pending = pending[:5]
		}
		i.logger.Info("installation progress", "ready", p.Ready, "total", p.Total, "waitingFor", pending)
	})
	if err != nil {
		i.logStuckPods(s)
		return &DeploymentError{Err: err}
	}
	return nil
}

func (i *Installer) logStuckPods(s *attemptState) {
	if s.watcher == nil {
		return
	}
	for _, p := range s.watcher.Problems() {
		i.logger.Info("stuck pod", "pod", p)
	}
}

func (i *Installer) stopClusterWatcher(_ context.Context, s *attemptState) error {
	s.stopWatcher()
	return nil
}

func (i *Installer) waitForEndpoints(ctx context.Context, s *attemptState) error {
	dnsName := InstanceDNSName(s.cfg)
	i.logger.Info("waiting for instance endpoints", "dnsName", dnsName)
	if err := i.gate.WaitAllReachable(ctx, dnsName, s.cfg.Tenants, s.run); err != nil {
		return &ReadinessError{Err: err}
	}
	return nil
}
