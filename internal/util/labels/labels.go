package labels

// Standard label keys for installer-created objects.
const (
	// KeyName identifies the application
	KeyName = "app.kubernetes.io/name"

	// KeyComponent identifies the part of Opstrace an object belongs to
	KeyComponent = "app.kubernetes.io/component"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "app.kubernetes.io/managed-by"

	// KeyCluster identifies which Opstrace cluster an object belongs to
	KeyCluster = "opstrace.com/cluster"

	// KeyApp is the selector label of the controller pods
	KeyApp = "app"
)

// ManagedByInstaller marks objects created by the installer.
const ManagedByInstaller = "opstrace-installer"

// LabelBuilder provides a fluent interface for building Kubernetes labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the manager pre-set.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyName:      "opstrace",
			KeyManagedBy: ManagedByInstaller,
		},
	}
}

// WithCluster adds the cluster name label. Empty names are skipped.
func (lb *LabelBuilder) WithCluster(cluster string) *LabelBuilder {
	if cluster != "" {
		lb.labels[KeyCluster] = cluster
	}
	return lb
}

// WithComponent adds a component label (e.g. "controller").
func (lb *LabelBuilder) WithComponent(component string) *LabelBuilder {
	lb.labels[KeyComponent] = component
	return lb
}

// WithApp adds the selector label used by workloads.
func (lb *LabelBuilder) WithApp(app string) *LabelBuilder {
	lb.labels[KeyApp] = app
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}
