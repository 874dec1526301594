// Package watcher observes the cluster while the installer waits for it to
// converge and logs workload problems as they appear.
package watcher

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/informers"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/cache"
)

// Container waiting reasons that indicate a workload will not become
// ready without intervention.
var problemReasons = map[string]bool{
	"CrashLoopBackOff":           true,
	"ImagePullBackOff":           true,
	"ErrImagePull":               true,
	"CreateContainerConfigError": true,
	"InvalidImageName":           true,
}

// Handle controls a running watcher.
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	problems map[string]string
	synced   bool
}

// Start begins watching pods and deployments. The returned handle must be
// stopped; the watcher also ends when ctx is cancelled.
func Start(ctx context.Context, clientset kubernetes.Interface, logger logr.Logger) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel:   cancel,
		done:     make(chan struct{}),
		problems: make(map[string]string),
	}

	factory := informers.NewSharedInformerFactory(clientset, 0)
	podInformer := factory.Core().V1().Pods().Informer()
	deployInformer := factory.Apps().V1().Deployments().Informer()

	_, _ = podInformer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    func(obj interface{}) { h.onPod(logger, obj) },
		UpdateFunc: func(_, obj interface{}) { h.onPod(logger, obj) },
		DeleteFunc: func(obj interface{}) { h.onPodDeleted(obj) },
	})
	_, _ = deployInformer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			if d, ok := obj.(*appsv1.Deployment); ok {
				logger.V(1).Info("deployment observed", "namespace", d.Namespace, "name", d.Name)
			}
		},
	})

	go func() {
		defer close(h.done)
		factory.Start(ctx.Done())
		if cache.WaitForCacheSync(ctx.Done(), podInformer.HasSynced, deployInformer.HasSynced) {
			h.mu.Lock()
			h.synced = true
			h.mu.Unlock()
			logger.V(1).Info("cluster watcher synced")
		}
		<-ctx.Done()
		factory.Shutdown()
		logger.V(1).Info("cluster watcher stopped")
	}()

	return h
}

// Stop cancels the watcher and blocks until all of its goroutines have
// returned. It is safe to call more than once.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Synced reports whether the informer caches have synced.
func (h *Handle) Synced() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.synced
}

// Problems returns the pods currently stuck, formatted as
// "namespace/name: reason", sorted.
func (h *Handle) Problems() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, len(h.problems))
	for pod, reason := range h.problems {
		out = append(out, fmt.Sprintf("%s: %s", pod, reason))
	}
	sort.Strings(out)
	return out
}

func (h *Handle) onPod(logger logr.Logger, obj interface{}) {
	pod, ok := obj.(*corev1.Pod)
	if !ok {
		return
	}
	key := pod.Namespace + "/" + pod.Name
	reason := podProblem(pod)

	h.mu.Lock()
	prev, known := h.problems[key]
	if reason == "" {
		delete(h.problems, key)
	} else {
		h.problems[key] = reason
	}
	h.mu.Unlock()

	if reason != "" && (!known || prev != reason) {
		logger.Info("pod is not making progress", "pod", key, "reason", reason)
	}
}

func (h *Handle) onPodDeleted(obj interface{}) {
	if tomb, ok := obj.(cache.DeletedFinalStateUnknown); ok {
		obj = tomb.Obj
	}
	pod, ok := obj.(*corev1.Pod)
	if !ok {
		return
	}
	h.mu.Lock()
	delete(h.problems, pod.Namespace+"/"+pod.Name)
	h.mu.Unlock()
}

func podProblem(pod *corev1.Pod) string {
	statuses := append([]corev1.ContainerStatus{}, pod.Status.InitContainerStatuses...)
	statuses = append(statuses, pod.Status.ContainerStatuses...)
	for _, cs := range statuses {
		if w := cs.State.Waiting; w != nil && problemReasons[w.Reason] {
			return w.Reason
		}
	}
	return ""
}
