package readiness

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/starrohan999/opstrace/internal/util/async"
)

type targetWaiter interface {
	WaitUntilReady(ctx context.Context, t Target) error
}

// Gate waits until every public endpoint of an instance is reachable.
type Gate struct {
	prober       targetWaiter
	systemTenant string
	logger       logr.Logger
}

// NewGate creates a gate probing with p.
func NewGate(p *Prober, systemTenant string, logger logr.Logger) *Gate {
	return &Gate{prober: p, systemTenant: systemTenant, logger: logger}
}

// WaitAllReachable blocks until all endpoints of the instance at dnsName
// answer as expected. Groups are waited for in order, the targets of a
// group in parallel. There is no internal timeout; cancel ctx to give up.
func (g *Gate) WaitAllReachable(ctx context.Context, dnsName string, tenants []string, tokens TokenSource) error {
	for _, group := range Groups(dnsName, tenants, g.systemTenant, tokens) {
		g.logger.Info("waiting for endpoints", "group", group.Name, "count", len(group.Targets))

		tasks := make([]async.Task, 0, len(group.Targets))
		for _, t := range group.Targets {
			tasks = append(tasks, async.Task{
				Name: t.URL,
				Func: func(ctx context.Context) error { return g.prober.WaitUntilReady(ctx, t) },
			})
		}

		if err := async.RunParallel(ctx, tasks); err != nil {
			return fmt.Errorf("waiting for %s endpoints: %w", group.Name, err)
		}
		g.logger.Info("endpoints reachable", "group", group.Name)
	}
	return nil
}
