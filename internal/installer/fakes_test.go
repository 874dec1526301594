package installer

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/infra"
	"github.com/starrohan999/opstrace/internal/k8s"
	"github.com/starrohan999/opstrace/internal/readiness"
)

// recorder collects the calls made across all fakes, in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.list() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeCredentials struct{ rec *recorder }

func (f *fakeCredentials) Resolve(_ context.Context, cfg *config.ClusterConfig) (*infra.Credentials, error) {
	f.rec.add("credentials")
	return &infra.Credentials{Provider: cfg.CloudProvider, Region: cfg.Region()}, nil
}

type fakeImages struct{ rec *recorder }

func (f *fakeImages) Resolve(context.Context, string) (string, error) {
	f.rec.add("image")
	return "sha256:abc", nil
}

type fakeInfra struct {
	rec *recorder
	res *infra.Result
	err error
}

func (f *fakeInfra) EnsureInfra(context.Context, *config.ClusterConfig, *infra.Credentials) (*infra.Result, error) {
	f.rec.add("infra")
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeClient struct {
	rec *recorder

	listErr       error
	deployWaitErr error

	mu         sync.Mutex
	configMaps map[string]map[string]string
	secrets    map[string]map[string][]byte
}

func newFakeClient(rec *recorder) *fakeClient {
	return &fakeClient{
		rec:        rec,
		configMaps: map[string]map[string]string{},
		secrets:    map[string]map[string][]byte{},
	}
}

func (f *fakeClient) Clientset() kubernetes.Interface { return fake.NewSimpleClientset() }

func (f *fakeClient) ListNamespaces(context.Context) ([]string, error) {
	f.rec.add("namespaces")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []string{"default", "kube-system"}, nil
}

func (f *fakeClient) ApplyConfigMap(_ context.Context, ns, name string, data map[string]string) error {
	f.rec.add("configmap " + name)
	f.mu.Lock()
	f.configMaps[ns+"/"+name] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) StoreSecret(_ context.Context, ns, name string, data map[string][]byte) error {
	f.rec.add("secret " + name)
	f.mu.Lock()
	f.secrets[ns+"/"+name] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) DeployController(context.Context, k8s.ControllerSpec) error {
	f.rec.add("deploy")
	return nil
}

func (f *fakeClient) WaitForDeployment(context.Context, string, string, time.Duration) error {
	f.rec.add("wait-deployment")
	return f.deployWaitErr
}

func (f *fakeClient) WaitForWorkloadsReady(_ context.Context, _, _ time.Duration, report func(k8s.WorkloadProgress)) error {
	f.rec.add("wait-workloads")
	report(k8s.WorkloadProgress{Total: 1, Ready: 1})
	return nil
}

type fakeWatcher struct {
	rec     *recorder
	mu      sync.Mutex
	stopped int
}

func (w *fakeWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped == 0 {
		w.rec.add("watcher-stop")
	}
	w.stopped++
}

func (w *fakeWatcher) Problems() []string { return nil }

func (w *fakeWatcher) stopCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

type fakeGate struct {
	rec *recorder
	// block makes the gate wait for cancellation, like endpoints that
	// never come up.
	block    bool
	returned chan struct{}

	mu      sync.Mutex
	dnsName string
	tenants []string
	tokens  readiness.TokenSource
}

func (g *fakeGate) WaitAllReachable(ctx context.Context, dnsName string, tenants []string, tokens readiness.TokenSource) error {
	g.rec.add("gate")
	g.mu.Lock()
	g.dnsName, g.tenants, g.tokens = dnsName, tenants, tokens
	g.mu.Unlock()

	if !g.block {
		return nil
	}
	<-ctx.Done()
	// Simulate probes that take a moment to wind down.
	time.Sleep(20 * time.Millisecond)
	if g.returned != nil {
		g.returned <- struct{}{}
	}
	return ctx.Err()
}

type harness struct {
	rec     *recorder
	infra   *fakeInfra
	client  *fakeClient
	watcher *fakeWatcher
	gate    *fakeGate
	metrics *Metrics
	inst    *Installer
}

func testTimeouts() *config.Timeouts {
	t := config.DefaultTimeouts()
	t.CreateAttemptTimeout = 5 * time.Second
	t.CreateRetryDelay = time.Millisecond
	t.ProgressInterval = time.Millisecond
	return t
}

func newHarness(res *infra.Result) *harness {
	rec := &recorder{}
	h := &harness{
		rec:     rec,
		infra:   &fakeInfra{rec: rec, res: res},
		client:  newFakeClient(rec),
		watcher: &fakeWatcher{rec: rec},
		gate:    &fakeGate{rec: rec},
		metrics: NewMetrics(),
	}
	h.inst = New(Options{
		Credentials: &fakeCredentials{rec: rec},
		Images:      &fakeImages{rec: rec},
		Infra:       h.infra,
		Gate:        h.gate,
		NewClient: func([]byte) (ClusterClient, error) {
			rec.add("client")
			return h.client, nil
		},
		StartWatcher: func(context.Context, kubernetes.Interface, logr.Logger) Watcher {
			rec.add("watcher-start")
			return h.watcher
		},
		Timeouts: testTimeouts(),
		Metrics:  h.metrics,
		Logger:   logr.Discard(),
	})
	return h
}
