package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"golang.org/x/oauth2/google"

	"github.com/starrohan999/opstrace/internal/config"
	awsplatform "github.com/starrohan999/opstrace/internal/platform/aws"
	"github.com/starrohan999/opstrace/internal/platform/gcp"
)

// CredentialResolver turns a cluster config into provider credentials.
type CredentialResolver struct {
	// GCPKeyFile is an optional service account key; application default
	// credentials are used when empty.
	GCPKeyFile string

	resolveAWS func(ctx context.Context, region string) (aws.Config, error)
	resolveGCP func(ctx context.Context, keyFile string) (*google.Credentials, error)
}

// NewCredentialResolver creates a resolver backed by the provider SDKs.
func NewCredentialResolver(gcpKeyFile string) *CredentialResolver {
	return &CredentialResolver{
		GCPKeyFile: gcpKeyFile,
		resolveAWS: awsplatform.ResolveConfig,
		resolveGCP: gcp.ResolveCredentials,
	}
}

// Resolve returns the credentials and region of the configured provider.
// It fails without contacting any API when the provider's sub-config is
// missing.
func (r *CredentialResolver) Resolve(ctx context.Context, cfg *config.ClusterConfig) (*Credentials, error) {
	switch cfg.CloudProvider {
	case config.ProviderAWS:
		if cfg.AWS == nil {
			return nil, fmt.Errorf("cloud provider is aws but the aws config is missing")
		}
		awsCfg, err := r.resolveAWS(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return &Credentials{Provider: config.ProviderAWS, Region: cfg.AWS.Region, AWS: &awsCfg}, nil

	case config.ProviderGCP:
		if cfg.GCP == nil {
			return nil, fmt.Errorf("cloud provider is gcp but the gcp config is missing")
		}
		creds, err := r.resolveGCP(ctx, r.GCPKeyFile)
		if err != nil {
			return nil, err
		}
		return &Credentials{Provider: config.ProviderGCP, Region: cfg.GCP.Region, GCP: creds}, nil

	default:
		return nil, fmt.Errorf("unsupported cloud provider %q", cfg.CloudProvider)
	}
}
