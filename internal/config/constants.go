package config

// Cloud providers supported by the installer.
const (
	ProviderAWS = "aws"
	ProviderGCP = "gcp"
)

// SystemTenant is the tenant every cluster carries in addition to the user-given ones.
const SystemTenant = "system"

// Certificate issuers understood by the controller.
const (
	CertIssuerProd    = "letsencrypt-prod"
	CertIssuerStaging = "letsencrypt-staging"
)

const (
	// DefaultControllerImage is used when the config file does not name one.
	DefaultControllerImage = "opstrace/controller:latest"

	defaultNodeCount     = 3
	defaultRetentionDays = 7

	defaultAWSRegion       = "us-west-2"
	defaultAWSZoneSuffix   = "a"
	defaultAWSInstanceType = "t3.xlarge"

	defaultGCPRegion      = "us-west2"
	defaultGCPZoneSuffix  = "a"
	defaultGCPMachineType = "n1-standard-4"
)

// KnownAWSRegions lists the AWS regions a cluster can be created in.
var KnownAWSRegions = map[string]bool{
	"us-east-1":      true,
	"us-east-2":      true,
	"us-west-1":      true,
	"us-west-2":      true,
	"ca-central-1":   true,
	"eu-central-1":   true,
	"eu-west-1":      true,
	"eu-west-2":      true,
	"eu-west-3":      true,
	"eu-north-1":     true,
	"ap-northeast-1": true,
	"ap-northeast-2": true,
	"ap-south-1":     true,
	"ap-southeast-1": true,
	"ap-southeast-2": true,
	"sa-east-1":      true,
}
