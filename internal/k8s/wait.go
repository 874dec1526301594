package k8s

import (
	"context"
	"fmt"
	"sort"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/starrohan999/opstrace/internal/util/ptr"
)

// WorkloadProgress summarises how many workloads in the cluster are ready.
type WorkloadProgress struct {
	Total    int
	Ready    int
	NotReady []string
}

// Done reports whether every workload is ready.
func (p WorkloadProgress) Done() bool {
	return p.Total > 0 && p.Ready == p.Total
}

// WaitForDeployment polls until a deployment is ready. It only returns
// early when ctx is done.
func (c *Client) WaitForDeployment(ctx context.Context, namespace, name string, interval time.Duration) error {
	err := wait.PollUntilContextCancel(ctx, interval, true, func(ctx context.Context) (bool, error) {
		deployment, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if !apierrors.IsNotFound(err) {
				c.logger.V(1).Info("failed to get deployment", "namespace", namespace, "name", name, "error", err.Error())
			}
			return false, nil
		}
		return isDeploymentReady(deployment), nil
	})
	if err != nil {
		return fmt.Errorf("deployment %s/%s did not become ready: %w", namespace, name, contextCause(ctx, err))
	}
	return nil
}

// WaitForWorkloadsReady polls until every Deployment, StatefulSet and
// DaemonSet in the cluster is ready. report is called with the current
// progress every reportInterval.
func (c *Client) WaitForWorkloadsReady(ctx context.Context, interval, reportInterval time.Duration, report func(WorkloadProgress)) error {
	var lastReport time.Time
	err := wait.PollUntilContextCancel(ctx, interval, true, func(ctx context.Context) (bool, error) {
		progress, err := c.WorkloadProgress(ctx)
		if err != nil {
			c.logger.V(1).Info("failed to read workload status", "error", err.Error())
			return false, nil
		}

		if report != nil && (progress.Done() || time.Since(lastReport) >= reportInterval) {
			report(progress)
			lastReport = time.Now()
		}
		return progress.Done(), nil
	})
	if err != nil {
		return fmt.Errorf("workloads did not become ready: %w", contextCause(ctx, err))
	}
	return nil
}

// WorkloadProgress lists all workloads and counts the ready ones.
func (c *Client) WorkloadProgress(ctx context.Context) (WorkloadProgress, error) {
	var p WorkloadProgress
	apps := c.clientset.AppsV1()

	deployments, err := apps.Deployments(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return p, fmt.Errorf("failed to list deployments: %w", err)
	}
	for i := range deployments.Items {
		d := &deployments.Items[i]
		p.add("deployment", d.Namespace, d.Name, isDeploymentReady(d))
	}

	statefulSets, err := apps.StatefulSets(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return p, fmt.Errorf("failed to list statefulsets: %w", err)
	}
	for i := range statefulSets.Items {
		s := &statefulSets.Items[i]
		p.add("statefulset", s.Namespace, s.Name, isStatefulSetReady(s))
	}

	daemonSets, err := apps.DaemonSets(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return p, fmt.Errorf("failed to list daemonsets: %w", err)
	}
	for i := range daemonSets.Items {
		d := &daemonSets.Items[i]
		p.add("daemonset", d.Namespace, d.Name, isDaemonSetReady(d))
	}

	sort.Strings(p.NotReady)
	return p, nil
}

func (p *WorkloadProgress) add(kind, namespace, name string, ready bool) {
	p.Total++
	if ready {
		p.Ready++
		return
	}
	p.NotReady = append(p.NotReady, fmt.Sprintf("%s/%s/%s", kind, namespace, name))
}

// isDeploymentReady checks if a deployment is ready.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	replicas := ptr.Deref(deployment.Spec.Replicas, 1)
	if deployment.Status.UpdatedReplicas != replicas {
		return false
	}
	if deployment.Status.Replicas != replicas {
		return false
	}
	if deployment.Status.AvailableReplicas != replicas {
		return false
	}

	// Check for available condition
	for _, condition := range deployment.Status.Conditions {
		if condition.Type == appsv1.DeploymentAvailable &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}

	return false
}

// isStatefulSetReady checks if a statefulset is ready.
func isStatefulSetReady(s *appsv1.StatefulSet) bool {
	replicas := ptr.Deref(s.Spec.Replicas, 1)
	return s.Status.ReadyReplicas == replicas && s.Status.UpdatedReplicas == replicas
}

// isDaemonSetReady checks if a daemonset is ready. A daemonset that
// schedules on no node (e.g. GPU plugins on a cluster without GPUs) counts
// as ready.
func isDaemonSetReady(daemonSet *appsv1.DaemonSet) bool {
	return daemonSet.Status.NumberReady == daemonSet.Status.DesiredNumberScheduled &&
		daemonSet.Status.NumberAvailable == daemonSet.Status.DesiredNumberScheduled
}

// contextCause prefers the context error over the poller's interrupted error.
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
