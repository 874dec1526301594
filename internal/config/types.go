package config

// ClusterConfig is the validated, rendered cluster configuration.
// It is read-only once loaded.
type ClusterConfig struct {
	ClusterName   string `yaml:"cluster_name"`
	CloudProvider string `yaml:"cloud_provider"`

	Tenants []string `yaml:"tenants"`

	NodeCount       int    `yaml:"node_count"`
	ControllerImage string `yaml:"controller_image"`
	EnvLabel        string `yaml:"env_label,omitempty"`
	CertIssuer      string `yaml:"cert_issuer"`

	LogRetentionDays    int `yaml:"log_retention_days"`
	MetricRetentionDays int `yaml:"metric_retention_days"`

	DataAPIAuthenticationDisabled bool     `yaml:"data_api_authentication_disabled"`
	DataAPIAuthorizedIPRanges     []string `yaml:"data_api_authorized_ip_ranges"`

	// TenantAPIAuthenticatorPubkeySetJSON may be empty when data API
	// authentication is disabled.
	TenantAPIAuthenticatorPubkeySetJSON string `yaml:"tenant_api_authenticator_pubkey_set_json,omitempty"`

	// CustomDNSName replaces <cluster_name>.opstrace.io when set.
	CustomDNSName       string `yaml:"custom_dns_name,omitempty"`
	CustomAuth0ClientID string `yaml:"custom_auth0_client_id,omitempty"`

	AWS *AWSConfig `yaml:"aws,omitempty"`
	GCP *GCPConfig `yaml:"gcp,omitempty"`
}

// AWSConfig holds AWS-specific infrastructure settings.
type AWSConfig struct {
	Region        string   `yaml:"region"`
	ZoneSuffix    string   `yaml:"zone_suffix"`
	InstanceType  string   `yaml:"instance_type"`
	EKSAdminRoles []string `yaml:"eks_admin_roles,omitempty"`
}

// GCPConfig holds GCP-specific infrastructure settings.
type GCPConfig struct {
	Region      string `yaml:"region"`
	ZoneSuffix  string `yaml:"zone_suffix"`
	MachineType string `yaml:"machine_type"`
}

// Region returns the region of the configured provider, or "" if the
// provider's sub-config is missing.
func (c *ClusterConfig) Region() string {
	switch c.CloudProvider {
	case ProviderAWS:
		if c.AWS != nil {
			return c.AWS.Region
		}
	case ProviderGCP:
		if c.GCP != nil {
			return c.GCP.Region
		}
	}
	return ""
}

// RunConfig configures a single create invocation. It does not belong to
// the cluster config semantically and is never persisted.
type RunConfig struct {
	// HoldController skips deploying the controller workload, e.g. to run
	// the controller locally during development.
	HoldController bool

	// TenantAPITokens maps tenant name to data API token. Entries may be
	// missing when data API authentication is disabled.
	TenantAPITokens map[string]string

	// KubeconfigFilePath, if set, receives the cluster's kubeconfig as soon
	// as the Kubernetes cluster exists.
	KubeconfigFilePath string
}

// Token returns the API token of a tenant and whether one was supplied.
func (r *RunConfig) Token(tenant string) (string, bool) {
	if r == nil || r.TenantAPITokens == nil {
		return "", false
	}
	tok, ok := r.TenantAPITokens[tenant]
	return tok, ok
}
