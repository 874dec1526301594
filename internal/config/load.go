package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads, defaults, and validates a cluster config document.
// clusterName and provider come from the command line and take precedence
// over values in the document.
func LoadFile(path, clusterName, provider string) (*ClusterConfig, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, clusterName, provider)
}

// Parse decodes a cluster config document, applies defaults, and validates it.
func Parse(data []byte, clusterName, provider string) (*ClusterConfig, error) {
	var cfg ClusterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if clusterName != "" {
		cfg.ClusterName = clusterName
	}
	if provider != "" {
		cfg.CloudProvider = provider
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *ClusterConfig) applyDefaults() {
	if c.NodeCount == 0 {
		c.NodeCount = defaultNodeCount
	}
	if c.ControllerImage == "" {
		c.ControllerImage = DefaultControllerImage
	}
	if c.CertIssuer == "" {
		c.CertIssuer = CertIssuerProd
	}
	if c.LogRetentionDays == 0 {
		c.LogRetentionDays = defaultRetentionDays
	}
	if c.MetricRetentionDays == 0 {
		c.MetricRetentionDays = defaultRetentionDays
	}
	if len(c.DataAPIAuthorizedIPRanges) == 0 {
		c.DataAPIAuthorizedIPRanges = []string{"0.0.0.0/0"}
	}

	// The provider sub-config is optional in the document; an absent one
	// is rendered with defaults for the selected provider only.
	switch c.CloudProvider {
	case ProviderAWS:
		if c.AWS == nil {
			c.AWS = &AWSConfig{}
		}
		if c.AWS.Region == "" {
			c.AWS.Region = defaultAWSRegion
		}
		if c.AWS.ZoneSuffix == "" {
			c.AWS.ZoneSuffix = defaultAWSZoneSuffix
		}
		if c.AWS.InstanceType == "" {
			c.AWS.InstanceType = defaultAWSInstanceType
		}
	case ProviderGCP:
		if c.GCP == nil {
			c.GCP = &GCPConfig{}
		}
		if c.GCP.Region == "" {
			c.GCP.Region = defaultGCPRegion
		}
		if c.GCP.ZoneSuffix == "" {
			c.GCP.ZoneSuffix = defaultGCPZoneSuffix
		}
		if c.GCP.MachineType == "" {
			c.GCP.MachineType = defaultGCPMachineType
		}
	}
}
