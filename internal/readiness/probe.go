package readiness

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
)

const (
	maxLoggedBody = 500
	maxReadBody   = 1 << 20
)

// Probe outcomes passed to ProberOptions.OnAttempt.
const (
	OutcomeReady          = "ready"
	OutcomeTransportError = "transport_error"
	OutcomeStatusMismatch = "status_mismatch"
	OutcomeNotSuccessJSON = "not_success_json"
)

// ProberOptions tune a Prober.
type ProberOptions struct {
	Interval       time.Duration
	ConnectTimeout time.Duration
	RequestTimeout time.Duration

	// OnAttempt, if set, is called after every request with its outcome.
	OnAttempt func(t Target, outcome string)
}

// Prober waits for single endpoints to become ready.
type Prober struct {
	client    *http.Client
	interval  time.Duration
	onAttempt func(t Target, outcome string)
	logger    logr.Logger
}

// NewProber creates a prober. TLS certificates are not verified.
func NewProber(logger logr.Logger, opts ProberOptions) *Prober {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 3 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: opts.ConnectTimeout,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		DisableKeepAlives:   true,
	}

	return &Prober{
		client: &http.Client{
			Timeout:   opts.RequestTimeout,
			Transport: transport,
		},
		interval:  opts.Interval,
		onAttempt: opts.OnAttempt,
		logger:    logger,
	}
}

// WaitUntilReady polls t until it answers as expected. It never gives up on
// its own: the only error it returns is the context's.
func (p *Prober) WaitUntilReady(ctx context.Context, t Target) error {
	log := p.logger.WithValues("url", t.URL, "tenant", t.Tenant)

	for attempt := 1; ; attempt++ {
		if p.probeOnce(ctx, log, t, attempt) {
			log.Info("endpoint ready", "attempts", attempt)
			return nil
		}

		// The pause starts after the attempt, however long it took.
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Prober) probeOnce(ctx context.Context, log logr.Logger, t Target, attempt int) bool {
	outcome := p.check(ctx, log, t, attempt)
	if p.onAttempt != nil {
		p.onAttempt(t, outcome)
	}
	return outcome == OutcomeReady
}

func (p *Prober) check(ctx context.Context, log logr.Logger, t Target, attempt int) string {
	req, err := newRequest(ctx, t)
	if err != nil {
		log.Error(err, "cannot build probe request")
		return OutcomeTransportError
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeTransportError
		}
		if attempt%5 == 0 {
			log.Info("endpoint not reachable yet", "attempt", attempt, "error", err.Error())
		} else {
			log.V(1).Info("endpoint not reachable yet", "attempt", attempt, "error", err.Error())
		}
		return OutcomeTransportError
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxReadBody))

	if resp.StatusCode != t.ExpectedStatus {
		if attempt%2 == 0 {
			log.Info("unexpected response status", "attempt", attempt, "status", resp.StatusCode, "expected", t.ExpectedStatus)
		}
		log.V(1).Info("unexpected response body", "body", truncate(body, maxLoggedBody))
		return OutcomeStatusMismatch
	}

	if !t.ExpectStatusSuccessJSON {
		return OutcomeReady
	}

	var doc struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || doc.Status != "success" {
		log.V(1).Info("response is not a success document", "attempt", attempt, "body", truncate(body, maxLoggedBody))
		return OutcomeNotSuccessJSON
	}
	return OutcomeReady
}

func newRequest(ctx context.Context, t Target) (*http.Request, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid probe URL %s: %w", t.URL, err)
	}

	if t.HasAuthToken && t.AuthMode == AuthQueryParameter {
		q := u.Query()
		q.Set("api_key", t.AuthToken)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if t.HasAuthToken && t.AuthMode == AuthHeaderBearer {
		req.Header.Set("Authorization", "Bearer "+t.AuthToken)
	}
	return req, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
