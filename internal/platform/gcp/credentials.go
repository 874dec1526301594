// Package gcp resolves Google Cloud credentials and derives the service
// account identities the in-cluster components run as.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/starrohan999/opstrace/internal/util/naming"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ErrNoProjectID is returned when the credentials do not carry a project.
var ErrNoProjectID = errors.New("GCP credentials do not specify a project ID")

// ResolveCredentials loads credentials from a service account key file when
// keyFile is set, and from application default credentials otherwise.
func ResolveCredentials(ctx context.Context, keyFile string) (*google.Credentials, error) {
	if keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read GCP credentials file: %w", err)
		}
		return CredentialsFromJSON(ctx, data)
	}

	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to find GCP default credentials: %w", err)
	}
	if creds.ProjectID == "" {
		return nil, ErrNoProjectID
	}
	return creds, nil
}

// CredentialsFromJSON parses a service account key.
func CredentialsFromJSON(ctx context.Context, data []byte) (*google.Credentials, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GCP credentials: %w", err)
	}
	if creds.ProjectID == "" {
		return nil, ErrNoProjectID
	}
	return creds, nil
}

// ServiceAccountEmail returns the e-mail of a service account in project.
func ServiceAccountEmail(name, projectID string) string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", name, projectID)
}

// ServiceAccounts holds the identities of the workloads using GCP APIs.
type ServiceAccounts struct {
	CertManager string
	ExternalDNS string
	Cortex      string
	Loki        string
}

// ClusterServiceAccounts returns the service accounts for a cluster. Names
// are prefixed with the cluster name so several clusters share a project.
func ClusterServiceAccounts(clusterName, projectID string) ServiceAccounts {
	return ServiceAccounts{
		CertManager: ServiceAccountEmail(naming.CertManagerServiceAccount(clusterName), projectID),
		ExternalDNS: ServiceAccountEmail(naming.ExternalDNSServiceAccount(clusterName), projectID),
		Cortex:      ServiceAccountEmail(naming.CortexServiceAccount(clusterName), projectID),
		Loki:        ServiceAccountEmail(naming.LokiServiceAccount(clusterName), projectID),
	}
}
