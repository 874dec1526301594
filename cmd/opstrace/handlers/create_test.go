package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starrohan999/opstrace/internal/config"
	"github.com/starrohan999/opstrace/internal/installer"
)

const testClusterConfig = `
tenants: [prod]
cert_issuer: letsencrypt-staging
data_api_authorized_ip_ranges: ["0.0.0.0/0"]
data_api_authentication_disabled: true
aws:
  region: us-west-2
`

type fakeRunner struct {
	cfg *config.ClusterConfig
	run *config.RunConfig
	err error
}

func (f *fakeRunner) Run(_ context.Context, cfg *config.ClusterConfig, run *config.RunConfig) error {
	f.cfg, f.run = cfg, run
	return f.err
}

// useFakes swaps the factory variables for the duration of a test.
func useFakes(t *testing.T, r *fakeRunner) *installer.Options {
	t.Helper()
	origLogger, origInstaller := newLogger, newInstaller
	t.Cleanup(func() {
		newLogger, newInstaller = origLogger, origInstaller
	})

	var captured installer.Options
	newLogger = func(string) (logr.Logger, error) { return logr.Discard(), nil }
	newInstaller = func(opts installer.Options) runner {
		captured = opts
		return r
	}
	return &captured
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCreate_WiresRunConfig(t *testing.T) {
	r := &fakeRunner{}
	captured := useFakes(t, r)

	dir := t.TempDir()
	tokens := filepath.Join(dir, "tokens")
	require.NoError(t, os.Mkdir(tokens, 0o700))
	writeFile(t, tokens, "tenant-api-token-prod", "tok-prod\n")
	writeFile(t, tokens, "tenant-api-token-system", "tok-system")

	err := Create(context.Background(), CreateOptions{
		Provider:         "aws",
		ClusterName:      "mycluster",
		ConfigPath:       writeFile(t, dir, "config.yaml", testClusterConfig),
		InfraOutputsPath: filepath.Join(dir, "outputs.yaml"),
		KubeconfigPath:   filepath.Join(dir, "kubeconfig"),
		TokensDir:        tokens,
		HoldController:   true,
	})
	require.NoError(t, err)

	require.NotNil(t, r.cfg)
	assert.Equal(t, "mycluster", r.cfg.ClusterName)
	assert.Equal(t, []string{"prod"}, r.cfg.Tenants)
	assert.True(t, r.run.HoldController)
	assert.Equal(t, filepath.Join(dir, "kubeconfig"), r.run.KubeconfigFilePath)
	assert.Equal(t, map[string]string{"prod": "tok-prod", "system": "tok-system"}, r.run.TenantAPITokens)

	assert.NotNil(t, captured.Credentials)
	assert.NotNil(t, captured.Images)
	assert.NotNil(t, captured.Infra)
	assert.NotNil(t, captured.Gate)
	assert.NotNil(t, captured.Metrics)
	require.NotNil(t, captured.Timeouts)
	assert.Equal(t, 3, captured.Timeouts.CreateAttempts)
}

func TestCreate_ConfigErrors(t *testing.T) {
	useFakes(t, &fakeRunner{})

	err := Create(context.Background(), CreateOptions{
		Provider:    "aws",
		ClusterName: "mycluster",
		ConfigPath:  filepath.Join(t.TempDir(), "missing.yaml"),
	})
	assert.Error(t, err)
}

func TestCreate_PushesMetricsOnFailure(t *testing.T) {
	cause := errors.New("attempts exhausted")
	useFakes(t, &fakeRunner{err: cause})

	var pushes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pushes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	err := Create(context.Background(), CreateOptions{
		Provider:       "aws",
		ClusterName:    "mycluster",
		ConfigPath:     writeFile(t, dir, "config.yaml", testClusterConfig),
		MetricsPushURL: srv.URL,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, int32(1), pushes.Load())
}

func TestNewLogger_Levels(t *testing.T) {
	for _, level := range []string{"", "info", "debug", "error", "DEBUG"} {
		_, err := newLoggerForTest(level)
		assert.NoError(t, err, level)
	}
	_, err := newLoggerForTest("verbose")
	assert.Error(t, err)
}

func newLoggerForTest(level string) (logr.Logger, error) {
	f, err := os.CreateTemp("", "log")
	if err != nil {
		return logr.Discard(), err
	}
	defer os.Remove(f.Name())
	defer f.Close()
	return NewLogger(level, f)
}

func TestNewLogger_DebugIsVerbosityOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	logger, err := buildLogger("debug", f, false)
	require.NoError(t, err)
	logger.V(1).Info("debug line")

	infoPath := filepath.Join(t.TempDir(), "log")
	g, err := os.Create(infoPath)
	require.NoError(t, err)
	defer g.Close()
	quiet, err := buildLogger("info", g, false)
	require.NoError(t, err)
	quiet.V(1).Info("debug line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug line")

	data, err = os.ReadFile(infoPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "debug line")
}
