package naming

import "fmt"

// Names of the in-cluster objects the installer writes.
const (
	Controller          = "opstrace-controller"
	ControllerConfigMap = "opstrace-controller-config"
	TenantsConfigMap    = "opstrace-tenants"
	SystemTokenSecret   = "system-tenant-api-auth-token"
)

func LokiBucket(cluster string) string {
	return fmt.Sprintf("%s-loki", cluster)
}

func CortexBucket(cluster string) string {
	return fmt.Sprintf("%s-cortex", cluster)
}

func CortexConfigBucket(cluster string) string {
	return fmt.Sprintf("%s-cortex-config", cluster)
}

// DataBuckets returns every bucket a cluster keeps its data in.
func DataBuckets(cluster string) []string {
	return []string{LokiBucket(cluster), CortexBucket(cluster), CortexConfigBucket(cluster)}
}

func DBCluster(cluster string) string {
	return fmt.Sprintf("%s-db-cluster", cluster)
}

// GCP service account ids are limited to 30 characters, hence the short suffixes.

func CertManagerServiceAccount(cluster string) string {
	return fmt.Sprintf("%s-crtmgr", cluster)
}

func ExternalDNSServiceAccount(cluster string) string {
	return fmt.Sprintf("%s-extdns", cluster)
}

func CortexServiceAccount(cluster string) string {
	return fmt.Sprintf("%s-cortex", cluster)
}

func LokiServiceAccount(cluster string) string {
	return fmt.Sprintf("%s-loki", cluster)
}
