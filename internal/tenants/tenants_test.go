package tenants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestFromNames(t *testing.T) {
	t.Parallel()

	got := FromNames([]string{"prod", "dev"})
	assert.Equal(t, []Tenant{
		{Name: "prod", Type: TypeUser},
		{Name: "dev", Type: TypeUser},
		{Name: "system", Type: TypeSystem},
	}, got)
}

func TestRender(t *testing.T) {
	t.Parallel()

	data, err := Render(FromNames([]string{"prod"}))
	require.NoError(t, err)
	require.Contains(t, data, ConfigMapKey)

	var decoded []Tenant
	require.NoError(t, yaml.Unmarshal([]byte(data[ConfigMapKey]), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, TypeSystem, decoded[1].Type)
}
