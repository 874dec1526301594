package installer

import "github.com/starrohan999/opstrace/internal/config"

// InstanceDomain is the parent domain of instances without a custom DNS name.
const InstanceDomain = "opstrace.io"

// InstanceDNSName returns the DNS name an instance is reachable under.
func InstanceDNSName(cfg *config.ClusterConfig) string {
	if cfg.CustomDNSName != "" {
		return cfg.CustomDNSName
	}
	return cfg.ClusterName + "." + InstanceDomain
}
