package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"

	"github.com/hashicorp/go-multierror"
)

var (
	clusterNameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
	tenantNameRegex  = regexp.MustCompile(`^[a-z0-9]+$`)
)

// Validate checks the configuration and returns every problem found.
func (c *ClusterConfig) Validate() error {
	var result *multierror.Error

	if c.ClusterName == "" {
		result = multierror.Append(result, errors.New("cluster_name is required"))
	} else if !clusterNameRegex.MatchString(c.ClusterName) || len(c.ClusterName) < 2 || len(c.ClusterName) > 23 {
		result = multierror.Append(result, fmt.Errorf("invalid cluster_name %q: 2-23 characters of [a-z0-9-]", c.ClusterName))
	}

	if err := c.validateProvider(); err != nil {
		result = multierror.Append(result, err)
	}

	if len(c.Tenants) == 0 {
		result = multierror.Append(result, errors.New("tenants needs to contain at least one tenant name"))
	}
	seen := make(map[string]bool, len(c.Tenants))
	for _, t := range c.Tenants {
		switch {
		case !tenantNameRegex.MatchString(t):
			result = multierror.Append(result, fmt.Errorf("invalid tenant name %q", t))
		case t == SystemTenant:
			result = multierror.Append(result, fmt.Errorf("tenant name %q is reserved", t))
		case seen[t]:
			result = multierror.Append(result, fmt.Errorf("duplicate tenant name %q", t))
		}
		seen[t] = true
	}

	if c.CertIssuer != CertIssuerProd && c.CertIssuer != CertIssuerStaging {
		result = multierror.Append(result, fmt.Errorf("invalid cert_issuer %q", c.CertIssuer))
	}
	if c.NodeCount < 1 {
		result = multierror.Append(result, errors.New("node_count must be positive"))
	}
	if c.LogRetentionDays < 1 || c.MetricRetentionDays < 1 {
		result = multierror.Append(result, errors.New("retention days must be positive"))
	}

	for _, cidr := range c.DataAPIAuthorizedIPRanges {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid data_api_authorized_ip_ranges entry: %w", err))
		}
	}

	if !c.DataAPIAuthenticationDisabled && c.TenantAPIAuthenticatorPubkeySetJSON == "" {
		result = multierror.Append(result, errors.New("tenant_api_authenticator_pubkey_set_json is required unless data API authentication is disabled"))
	}

	return result.ErrorOrNil()
}

// validateProvider enforces that exactly one provider sub-config is set and
// that it matches cloud_provider.
func (c *ClusterConfig) validateProvider() error {
	switch c.CloudProvider {
	case ProviderAWS:
		if c.AWS == nil {
			return errors.New("`aws` property expected")
		}
		if c.GCP != nil {
			return errors.New("`gcp` property must not be set when cloud_provider is aws")
		}
		if !KnownAWSRegions[c.AWS.Region] {
			return fmt.Errorf("unknown AWS region %q", c.AWS.Region)
		}
	case ProviderGCP:
		if c.GCP == nil {
			return errors.New("`gcp` property expected")
		}
		if c.AWS != nil {
			return errors.New("`aws` property must not be set when cloud_provider is gcp")
		}
	case "":
		return errors.New("cloud_provider is required")
	default:
		return fmt.Errorf("unsupported cloud_provider %q: must be aws or gcp", c.CloudProvider)
	}
	return nil
}

// ValidateRunConfig checks the run config against the cluster config: when
// data API authentication is enabled every tenant, including the system
// tenant, needs an API token.
func ValidateRunConfig(c *ClusterConfig, r *RunConfig) error {
	if c.DataAPIAuthenticationDisabled {
		return nil
	}

	var result *multierror.Error
	for _, t := range append([]string{SystemTenant}, c.Tenants...) {
		if tok, ok := r.Token(t); !ok || tok == "" {
			result = multierror.Append(result, fmt.Errorf("missing API token for tenant %q", t))
		}
	}
	return result.ErrorOrNil()
}
