package k8s

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/starrohan999/opstrace/internal/util/labels"
	"github.com/starrohan999/opstrace/internal/util/naming"
	"github.com/starrohan999/opstrace/internal/util/ptr"
)

const (
	// ControllerName names the controller Deployment and its service account.
	ControllerName = naming.Controller
	// ControllerNamespace is where the controller runs.
	ControllerNamespace = "kube-system"
)

func managedLabels() map[string]string {
	return labels.NewLabelBuilder().Build()
}

// ControllerSpec describes the controller workload.
type ControllerSpec struct {
	ClusterName string
	Image       string
}

// DeployController creates the controller's service account, cluster role
// binding and Deployment. Objects that already exist are left untouched.
func (c *Client) DeployController(ctx context.Context, spec ControllerSpec) error {
	objLabels := labels.NewLabelBuilder().
		WithCluster(spec.ClusterName).
		WithComponent("controller").
		WithApp(ControllerName).
		Build()

	sa := &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{Name: ControllerName, Namespace: ControllerNamespace, Labels: objLabels},
	}
	if err := c.createIfMissing("serviceaccount", ControllerName, func() error {
		_, err := c.clientset.CoreV1().ServiceAccounts(ControllerNamespace).Create(ctx, sa, metav1.CreateOptions{})
		return err
	}); err != nil {
		return err
	}

	crb := &rbacv1.ClusterRoleBinding{
		ObjectMeta: metav1.ObjectMeta{Name: ControllerName, Labels: objLabels},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "ClusterRole",
			Name:     "cluster-admin",
		},
		Subjects: []rbacv1.Subject{{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      ControllerName,
			Namespace: ControllerNamespace,
		}},
	}
	if err := c.createIfMissing("clusterrolebinding", ControllerName, func() error {
		_, err := c.clientset.RbacV1().ClusterRoleBindings().Create(ctx, crb, metav1.CreateOptions{})
		return err
	}); err != nil {
		return err
	}

	deploy := controllerDeployment(spec, objLabels)
	return c.createIfMissing("deployment", ControllerName, func() error {
		_, err := c.clientset.AppsV1().Deployments(ControllerNamespace).Create(ctx, deploy, metav1.CreateOptions{})
		return err
	})
}

func (c *Client) createIfMissing(kind, name string, create func() error) error {
	err := create()
	switch {
	case err == nil:
		c.logger.V(1).Info("created controller resource", "kind", kind, "name", name)
		return nil
	case apierrors.IsAlreadyExists(err):
		c.logger.V(1).Info("controller resource already exists", "kind", kind, "name", name)
		return nil
	default:
		return fmt.Errorf("failed to create %s %s: %w", kind, name, err)
	}
}

func controllerDeployment(spec ControllerSpec, podLabels map[string]string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ControllerName,
			Namespace: ControllerNamespace,
			Labels:    podLabels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.Int32(1),
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{labels.KeyApp: ControllerName},
			},
			Strategy: appsv1.DeploymentStrategy{Type: appsv1.RecreateDeploymentStrategyType},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: podLabels},
				Spec: corev1.PodSpec{
					ServiceAccountName: ControllerName,
					Containers: []corev1.Container{{
						Name:            "controller",
						Image:           spec.Image,
						ImagePullPolicy: corev1.PullIfNotPresent,
						Args:            []string{"--cluster-name=" + spec.ClusterName},
					}},
				},
			},
		},
	}
}
