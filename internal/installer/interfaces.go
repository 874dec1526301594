package installer

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/infra"
	"github.com/starrohan999/opstrace/internal/k8s"
	"github.com/starrohan999/opstrace/internal/readiness"
)

// CredentialResolver resolves the credentials of the configured provider.
type CredentialResolver interface {
	Resolve(ctx context.Context, cfg *config.ClusterConfig) (*infra.Credentials, error)
}

// ImageChecker verifies a container image can be pulled.
type ImageChecker interface {
	Resolve(ctx context.Context, image string) (string, error)
}

// InfraProvisioner creates or adopts the cloud infrastructure. Calling it
// again for the same cluster must be safe.
type InfraProvisioner interface {
	EnsureInfra(ctx context.Context, cfg *config.ClusterConfig, creds *infra.Credentials) (*infra.Result, error)
}

// ClusterClient is the Kubernetes API surface the pipeline uses.
type ClusterClient interface {
	Clientset() kubernetes.Interface
	ListNamespaces(ctx context.Context) ([]string, error)
	ApplyConfigMap(ctx context.Context, namespace, name string, data map[string]string) error
	StoreSecret(ctx context.Context, namespace, name string, data map[string][]byte) error
	DeployController(ctx context.Context, spec k8s.ControllerSpec) error
	WaitForDeployment(ctx context.Context, namespace, name string, interval time.Duration) error
	WaitForWorkloadsReady(ctx context.Context, interval, reportInterval time.Duration, report func(k8s.WorkloadProgress)) error
}

// ClientFactory builds a cluster client from kubeconfig bytes.
type ClientFactory func(kubeconfig []byte) (ClusterClient, error)

// Watcher is a running cluster watcher.
type Watcher interface {
	Stop()
	Problems() []string
}

// WatcherStarter starts a cluster watcher.
type WatcherStarter func(ctx context.Context, clientset kubernetes.Interface, logger logr.Logger) Watcher

// ReadinessGate blocks until the instance's endpoints are reachable.
type ReadinessGate interface {
	WaitAllReachable(ctx context.Context, dnsName string, tenants []string, tokens readiness.TokenSource) error
}
