package controllerconfig

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/infra"
	"github.com/starrohan999/opstrace/internal/util/naming"
)

const (
	// ConfigMapName is the ConfigMap the controller reads its config from.
	ConfigMapName = naming.ControllerConfigMap
	// ConfigMapNamespace is where ConfigMapName lives.
	ConfigMapNamespace = "kube-system"
	// ConfigMapKey is the data key holding the rendered config.
	ConfigMapKey = "config.yaml"

	// ParentDNSZone is the zone instance DNS names are delegated from.
	ParentDNSZone = "opstrace.io."
)

// Config is the controller's deployment descriptor.
type Config struct {
	Name               string `json:"name" validate:"required"`
	Target             string `json:"target" validate:"required,oneof=aws gcp"`
	Region             string `json:"region" validate:"required"`
	InfrastructureName string `json:"infrastructureName" validate:"required"`
	EnvLabel           string `json:"envLabel,omitempty"`
	DNSName            string `json:"dnsName" validate:"required"`
	CustomDNSName      string `json:"custom_dns_name,omitempty" validate:"omitempty,fqdn"`

	CertIssuer           string `json:"cert_issuer" validate:"required,oneof=letsencrypt-prod letsencrypt-staging"`
	TLSCertificateIssuer string `json:"tlsCertificateIssuer" validate:"required,eqfield=CertIssuer"`

	LogRetentionDays    int `json:"logRetentionDays" validate:"gte=1"`
	MetricRetentionDays int `json:"metricRetentionDays" validate:"gte=1"`

	Terminate            bool `json:"terminate"`
	ControllerTerminated bool `json:"controllerTerminated"`

	UISourceIPFirewallRules  []string `json:"uiSourceIpFirewallRules" validate:"required,dive,cidr"`
	APISourceIPFirewallRules []string `json:"apiSourceIpFirewallRules" validate:"required,dive,cidr"`

	TenantAPIAuthenticatorPubkeySetJSON string `json:"tenant_api_authenticator_pubkey_set_json"`
	DisableDataAPIAuthentication        bool   `json:"disable_data_api_authentication"`
	CustomAuth0ClientID                 string `json:"custom_auth0_client_id,omitempty"`

	PostgreSQLEndpoint string `json:"postgreSQLEndpoint" validate:"required,url"`
	OpstraceDBName     string `json:"opstraceDBName,omitempty"`

	AWS *AWSConfig `json:"aws,omitempty" validate:"omitempty"`
	GCP *GCPConfig `json:"gcp,omitempty" validate:"omitempty"`
}

// AWSConfig carries AWS resource references.
type AWSConfig struct {
	CertManagerRoleArn string `json:"certManagerRoleArn" validate:"required,startswith=arn:"`
}

// GCPConfig carries GCP service account identities.
type GCPConfig struct {
	ProjectID                 string `json:"projectId" validate:"required"`
	CertManagerServiceAccount string `json:"certManagerServiceAccount" validate:"required,email"`
	ExternalDNSServiceAccount string `json:"externalDNSServiceAccount" validate:"required,email"`
	CortexServiceAccount      string `json:"cortexServiceAccount" validate:"required,email"`
	LokiServiceAccount        string `json:"lokiServiceAccount" validate:"required,email"`
}

// New assembles a controller config from the cluster config and the result
// of infrastructure creation. The result is not validated here.
func New(cfg *config.ClusterConfig, res *infra.Result) *Config {
	c := &Config{
		Name:                                cfg.ClusterName,
		Target:                              cfg.CloudProvider,
		Region:                              cfg.Region(),
		InfrastructureName:                  cfg.ClusterName,
		EnvLabel:                            cfg.EnvLabel,
		DNSName:                             ParentDNSZone,
		CustomDNSName:                       cfg.CustomDNSName,
		CertIssuer:                          cfg.CertIssuer,
		TLSCertificateIssuer:                cfg.CertIssuer,
		LogRetentionDays:                    cfg.LogRetentionDays,
		MetricRetentionDays:                 cfg.MetricRetentionDays,
		UISourceIPFirewallRules:             []string{"0.0.0.0/0"},
		APISourceIPFirewallRules:            append([]string(nil), cfg.DataAPIAuthorizedIPRanges...),
		TenantAPIAuthenticatorPubkeySetJSON: cfg.TenantAPIAuthenticatorPubkeySetJSON,
		DisableDataAPIAuthentication:        cfg.DataAPIAuthenticationDisabled,
		CustomAuth0ClientID:                 cfg.CustomAuth0ClientID,
	}

	if res == nil {
		return c
	}

	c.PostgreSQLEndpoint = res.PostgreSQLEndpoint
	c.OpstraceDBName = res.OpstraceDBName
	if res.AWS != nil {
		c.AWS = &AWSConfig{CertManagerRoleArn: res.AWS.CertManagerRoleArn}
	}
	if res.GCP != nil {
		c.GCP = &GCPConfig{
			ProjectID:                 res.GCP.ProjectID,
			CertManagerServiceAccount: res.GCP.CertManagerServiceAccount,
			ExternalDNSServiceAccount: res.GCP.ExternalDNSServiceAccount,
			CortexServiceAccount:      res.GCP.CortexServiceAccount,
			LokiServiceAccount:        res.GCP.LokiServiceAccount,
		}
	}
	return c
}

// Render returns the ConfigMap data for a controller config.
func Render(c *Config) (map[string]string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to render controller config: %w", err)
	}
	return map[string]string{ConfigMapKey: string(data)}, nil
}
