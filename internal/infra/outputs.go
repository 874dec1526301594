package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Outputs is the document an infrastructure run leaves behind.
type Outputs struct {
	// Kubeconfig is a path, relative paths resolve against the outputs file.
	Kubeconfig         string `yaml:"kubeconfig"`
	PostgreSQLEndpoint string `yaml:"postgresql_endpoint,omitempty"`
	PostgreSQLPassword string `yaml:"postgresql_password,omitempty"`
	OpstraceDBName     string `yaml:"opstrace_db_name,omitempty"`

	AWS *AWSOutputsFile `yaml:"aws,omitempty"`
	GCP *GCPOutputsFile `yaml:"gcp,omitempty"`
}

// AWSOutputsFile holds AWS references from the outputs document.
type AWSOutputsFile struct {
	CertManagerRoleArn string `yaml:"cert_manager_role_arn"`
	S3Endpoint         string `yaml:"s3_endpoint,omitempty"`
}

// GCPOutputsFile holds optional service account overrides.
type GCPOutputsFile struct {
	CertManagerServiceAccount string `yaml:"cert_manager_service_account,omitempty"`
	ExternalDNSServiceAccount string `yaml:"external_dns_service_account,omitempty"`
	CortexServiceAccount      string `yaml:"cortex_service_account,omitempty"`
	LokiServiceAccount        string `yaml:"loki_service_account,omitempty"`
}

const defaultOpstraceDBName = "opstrace"

// LoadOutputs reads an outputs document and the kubeconfig it points to.
func LoadOutputs(path string) (*Outputs, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read infra outputs: %w", err)
	}

	var out Outputs
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, nil, fmt.Errorf("failed to parse infra outputs: %w", err)
	}
	if out.Kubeconfig == "" {
		return nil, nil, fmt.Errorf("infra outputs %s do not name a kubeconfig", path)
	}
	if out.OpstraceDBName == "" {
		out.OpstraceDBName = defaultOpstraceDBName
	}

	kubeconfigPath := out.Kubeconfig
	if !filepath.IsAbs(kubeconfigPath) {
		kubeconfigPath = filepath.Join(filepath.Dir(path), kubeconfigPath)
	}
	kubeconfig, err := os.ReadFile(kubeconfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read kubeconfig: %w", err)
	}

	return &out, kubeconfig, nil
}
