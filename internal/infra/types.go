package infra

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"golang.org/x/oauth2/google"
)

// Credentials are the resolved provider credentials an attempt runs with.
type Credentials struct {
	Provider string
	Region   string

	// AWS is set when Provider is aws.
	AWS *aws.Config

	// GCP is set when Provider is gcp.
	GCP *google.Credentials
}

// GCPProjectID returns the project the GCP credentials belong to.
func (c *Credentials) GCPProjectID() string {
	if c == nil || c.GCP == nil {
		return ""
	}
	return c.GCP.ProjectID
}

// Result is what infrastructure creation hands back to the installer.
type Result struct {
	Kubeconfig         []byte
	PostgreSQLEndpoint string
	OpstraceDBName     string

	AWS *AWSOutputs
	GCP *GCPOutputs
}

// AWSOutputs are AWS resource references the controller needs.
type AWSOutputs struct {
	CertManagerRoleArn string
}

// GCPOutputs are GCP service account identities the controller needs.
type GCPOutputs struct {
	ProjectID                 string
	CertManagerServiceAccount string
	ExternalDNSServiceAccount string
	CortexServiceAccount      string
	LokiServiceAccount        string
}
