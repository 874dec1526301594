package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-logr/logr"

	"github.com/starrohan999/opstrace/internal/config"
	awsplatform "github.com/starrohan999/opstrace/internal/platform/aws"
	"github.com/starrohan999/opstrace/internal/platform/gcp"
)

type bucketEnsurer interface {
	EnsureBucket(ctx context.Context, bucketName string) error
}

type endpointLookup interface {
	PostgreSQLEndpoint(ctx context.Context, clusterName, password string) (string, error)
}

// Provisioner adopts infrastructure described by an outputs document.
type Provisioner struct {
	outputsPath string
	logger      logr.Logger

	newBuckets   func(cfg aws.Config, endpoint string) bucketEnsurer
	newDatabases func(cfg aws.Config) endpointLookup
}

// NewProvisioner creates a provisioner reading outputsPath.
func NewProvisioner(outputsPath string, logger logr.Logger) *Provisioner {
	return &Provisioner{
		outputsPath: outputsPath,
		logger:      logger,
		newBuckets: func(cfg aws.Config, endpoint string) bucketEnsurer {
			return awsplatform.NewBuckets(cfg, endpoint)
		},
		newDatabases: func(cfg aws.Config) endpointLookup {
			return awsplatform.NewDatabases(cfg)
		},
	}
}

// EnsureInfra returns the kubeconfig, database endpoint and provider
// references for the cluster.
func (p *Provisioner) EnsureInfra(ctx context.Context, cfg *config.ClusterConfig, creds *Credentials) (*Result, error) {
	out, kubeconfig, err := LoadOutputs(p.outputsPath)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Kubeconfig:         kubeconfig,
		PostgreSQLEndpoint: out.PostgreSQLEndpoint,
		OpstraceDBName:     out.OpstraceDBName,
	}

	switch cfg.CloudProvider {
	case config.ProviderAWS:
		if err := p.ensureAWS(ctx, cfg, creds, out, res); err != nil {
			return nil, err
		}
	case config.ProviderGCP:
		if err := p.ensureGCP(cfg, creds, out, res); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported cloud provider %q", cfg.CloudProvider)
	}

	return res, nil
}

func (p *Provisioner) ensureAWS(ctx context.Context, cfg *config.ClusterConfig, creds *Credentials, out *Outputs, res *Result) error {
	if creds == nil || creds.AWS == nil {
		return fmt.Errorf("AWS credentials are required")
	}
	if out.AWS == nil || out.AWS.CertManagerRoleArn == "" {
		return fmt.Errorf("infra outputs lack aws.cert_manager_role_arn")
	}

	buckets := p.newBuckets(*creds.AWS, out.AWS.S3Endpoint)
	for _, name := range awsplatform.DataBucketNames(cfg.ClusterName) {
		if err := buckets.EnsureBucket(ctx, name); err != nil {
			return err
		}
		p.logger.V(1).Info("data bucket ready", "bucket", name)
	}

	if res.PostgreSQLEndpoint == "" {
		endpoint, err := p.newDatabases(*creds.AWS).PostgreSQLEndpoint(ctx, cfg.ClusterName, out.PostgreSQLPassword)
		if err != nil {
			return err
		}
		res.PostgreSQLEndpoint = endpoint
	}

	res.AWS = &AWSOutputs{CertManagerRoleArn: out.AWS.CertManagerRoleArn}
	return nil
}

func (p *Provisioner) ensureGCP(cfg *config.ClusterConfig, creds *Credentials, out *Outputs, res *Result) error {
	projectID := creds.GCPProjectID()
	if projectID == "" {
		return fmt.Errorf("GCP credentials with a project ID are required")
	}
	if res.PostgreSQLEndpoint == "" {
		return fmt.Errorf("infra outputs lack postgresql_endpoint")
	}

	sa := gcp.ClusterServiceAccounts(cfg.ClusterName, projectID)
	if o := out.GCP; o != nil {
		sa.CertManager = override(sa.CertManager, o.CertManagerServiceAccount)
		sa.ExternalDNS = override(sa.ExternalDNS, o.ExternalDNSServiceAccount)
		sa.Cortex = override(sa.Cortex, o.CortexServiceAccount)
		sa.Loki = override(sa.Loki, o.LokiServiceAccount)
	}

	res.GCP = &GCPOutputs{
		ProjectID:                 projectID,
		CertManagerServiceAccount: sa.CertManager,
		ExternalDNSServiceAccount: sa.ExternalDNS,
		CortexServiceAccount:      sa.Cortex,
		LokiServiceAccount:        sa.Loki,
	}
	return nil
}

func override(def, v string) string {
	if v != "" {
		return v
	}
	return def
}
