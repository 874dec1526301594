package watcher_test

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes/fake"
	clienttesting "k8s.io/client-go/testing"

	"github.com/starrohan999/opstrace/internal/watcher"
)

func pod(name, waitingReason string) *corev1.Pod {
	p := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "application"}}
	if waitingReason != "" {
		p.Status.ContainerStatuses = []corev1.ContainerStatus{{
			Name:  "main",
			State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: waitingReason}},
		}}
	}
	return p
}

// watchPods signals once the pod informer has established its watch, so
// that later writes are not lost between list and watch.
func watchPods(clientset *fake.Clientset) <-chan struct{} {
	started := make(chan struct{}, 1)
	clientset.PrependWatchReactor("pods", func(action clienttesting.Action) (bool, watch.Interface, error) {
		w, err := clientset.Tracker().Watch(action.GetResource(), action.GetNamespace())
		if err != nil {
			return false, nil, err
		}
		select {
		case started <- struct{}{}:
		default:
		}
		return true, w, nil
	})
	return started
}

var _ = Describe("Cluster watcher", func() {
	var clientset *fake.Clientset

	BeforeEach(func() {
		clientset = fake.NewSimpleClientset()
	})

	It("syncs and stops", func() {
		h := watcher.Start(context.Background(), clientset, logr.Discard())
		Eventually(h.Synced).WithTimeout(5 * time.Second).Should(BeTrue())
		h.Stop()
	})

	It("can be stopped right after start", func() {
		h := watcher.Start(context.Background(), clientset, logr.Discard())
		done := make(chan struct{})
		go func() {
			h.Stop()
			close(done)
		}()
		Eventually(done).WithTimeout(5 * time.Second).Should(BeClosed())
	})

	It("tolerates repeated stops", func() {
		h := watcher.Start(context.Background(), clientset, logr.Discard())
		h.Stop()
		h.Stop()
	})

	It("stops when the parent context is already cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		h := watcher.Start(ctx, clientset, logr.Discard())
		done := make(chan struct{})
		go func() {
			h.Stop()
			close(done)
		}()
		Eventually(done).WithTimeout(5 * time.Second).Should(BeClosed())
	})

	It("reports stuck pods until they recover", func() {
		ctx := context.Background()
		started := watchPods(clientset)
		_, err := clientset.CoreV1().Pods("application").Create(ctx, pod("healthy", ""), metav1.CreateOptions{})
		Expect(err).NotTo(HaveOccurred())
		_, err = clientset.CoreV1().Pods("application").Create(ctx, pod("cortex-0", "ImagePullBackOff"), metav1.CreateOptions{})
		Expect(err).NotTo(HaveOccurred())

		h := watcher.Start(ctx, clientset, logr.Discard())
		defer h.Stop()

		Eventually(h.Problems).WithTimeout(5 * time.Second).Should(ConsistOf("application/cortex-0: ImagePullBackOff"))
		Eventually(started).WithTimeout(5 * time.Second).Should(Receive())

		_, err = clientset.CoreV1().Pods("application").Update(ctx, pod("cortex-0", ""), metav1.UpdateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Eventually(h.Problems).WithTimeout(5 * time.Second).Should(BeEmpty())
	})

	It("forgets deleted pods", func() {
		ctx := context.Background()
		started := watchPods(clientset)
		_, err := clientset.CoreV1().Pods("application").Create(ctx, pod("loki-0", "CrashLoopBackOff"), metav1.CreateOptions{})
		Expect(err).NotTo(HaveOccurred())

		h := watcher.Start(ctx, clientset, logr.Discard())
		defer h.Stop()
		Eventually(h.Problems).WithTimeout(5 * time.Second).Should(HaveLen(1))
		Eventually(started).WithTimeout(5 * time.Second).Should(Receive())

		Expect(clientset.CoreV1().Pods("application").Delete(ctx, "loki-0", metav1.DeleteOptions{})).To(Succeed())
		Eventually(h.Problems).WithTimeout(5 * time.Second).Should(BeEmpty())
	})
})
