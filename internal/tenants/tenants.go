// Package tenants renders the tenant list handed to the controller.
package tenants

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/util/naming"
)

const (
	// ConfigMapName is the ConfigMap the controller reads tenants from.
	ConfigMapName = naming.TenantsConfigMap
	// ConfigMapNamespace is where ConfigMapName lives.
	ConfigMapNamespace = "kube-system"
	// ConfigMapKey is the data key holding the rendered tenant list.
	ConfigMapKey = "tenants.yaml"
)

// Type distinguishes the implicit system tenant from user tenants.
type Type string

const (
	TypeSystem Type = "SYSTEM"
	TypeUser   Type = "USER"
)

// Tenant is one entry of the tenants config.
type Tenant struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// FromNames builds the tenants config: the user tenants in the given order
// followed by the system tenant.
func FromNames(names []string) []Tenant {
	out := make([]Tenant, 0, len(names)+1)
	for _, n := range names {
		out = append(out, Tenant{Name: n, Type: TypeUser})
	}
	return append(out, Tenant{Name: config.SystemTenant, Type: TypeSystem})
}

// Render returns the ConfigMap data for a tenants config.
func Render(ts []Tenant) (map[string]string, error) {
	data, err := yaml.Marshal(ts)
	if err != nil {
		return nil, fmt.Errorf("failed to render tenants config: %w", err)
	}
	return map[string]string{ConfigMapKey: string(data)}, nil
}
