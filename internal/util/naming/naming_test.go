package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	cluster := "test-cluster"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "LokiBucket",
			got:      LokiBucket(cluster),
			expected: "test-cluster-loki",
		},
		{
			name:     "CortexBucket",
			got:      CortexBucket(cluster),
			expected: "test-cluster-cortex",
		},
		{
			name:     "CortexConfigBucket",
			got:      CortexConfigBucket(cluster),
			expected: "test-cluster-cortex-config",
		},
		{
			name:     "DBCluster",
			got:      DBCluster(cluster),
			expected: "test-cluster-db-cluster",
		},
		{
			name:     "CertManagerServiceAccount",
			got:      CertManagerServiceAccount(cluster),
			expected: "test-cluster-crtmgr",
		},
		{
			name:     "ExternalDNSServiceAccount",
			got:      ExternalDNSServiceAccount(cluster),
			expected: "test-cluster-extdns",
		},
		{
			name:     "CortexServiceAccount",
			got:      CortexServiceAccount(cluster),
			expected: "test-cluster-cortex",
		},
		{
			name:     "LokiServiceAccount",
			got:      LokiServiceAccount(cluster),
			expected: "test-cluster-loki",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestDataBuckets(t *testing.T) {
	got := DataBuckets("prod")
	want := []string{"prod-loki", "prod-cortex", "prod-cortex-config"}
	if len(got) != len(want) {
		t.Fatalf("DataBuckets() returned %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DataBuckets()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
