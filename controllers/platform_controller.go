package controllers

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	lisav1alpha1 "github.com/lisa-platform/lisa/api/v1alpha1"
	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/semver"
)

// PlatformReconciler validates the capability a Platform declares. Invalid
// platforms are skipped by the EnvironmentMatcher.
//
// RBAC:
// +kubebuilder:rbac:groups=lisa.platform,resources=platforms,verbs=get;list;watch
// +kubebuilder:rbac:groups=lisa.platform,resources=platforms/status,verbs=get;update;patch
type PlatformReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
}

func (r *PlatformReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	lisaControllerReconcileTotal.WithLabelValues("Platform").Inc()
	logger := log.FromContext(ctx).WithValues("controller", "Platform", "platform", req.Name)

	var platform lisav1alpha1.Platform
	if err := r.Get(ctx, req.NamespacedName, &platform); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	problems := validatePlatform(&platform)
	prevPhase := platform.Status.Phase
	before := platform.DeepCopy()
	platform.Status.ObservedGeneration = platform.Generation
	if len(problems) == 0 {
		platform.Status.Phase = lisav1alpha1.PlatformPhaseReady
		platform.Status.Message = fmt.Sprintf("%d node(s) declared", len(platform.Spec.Capability.Nodes))
		setPlatformCondition(&platform, metav1.Condition{
			Type:    PlatformConditionCapabilityValid,
			Status:  metav1.ConditionTrue,
			Reason:  "Valid",
			Message: platform.Status.Message,
		})
	} else {
		platform.Status.Phase = lisav1alpha1.PlatformPhaseInvalid
		platform.Status.Message = strings.Join(problems, "; ")
		setPlatformCondition(&platform, metav1.Condition{
			Type:    PlatformConditionCapabilityValid,
			Status:  metav1.ConditionFalse,
			Reason:  "InvalidCapability",
			Message: platform.Status.Message,
		})
	}

	if err := r.Status().Patch(ctx, &platform, client.MergeFrom(before)); err != nil {
		logger.Error(err, "failed to patch platform status")
		lisaControllerReconcileErrorTotal.WithLabelValues("Platform").Inc()
		return ctrl.Result{}, err
	}

	if prevPhase == platform.Status.Phase {
		return ctrl.Result{}, nil
	}
	if len(problems) > 0 {
		platformInvalidTotal.Inc()
		logger.Info("platform capability is invalid", "problems", problems)
		if r.Recorder != nil {
			r.Recorder.Eventf(&platform, corev1.EventTypeWarning, "InvalidCapability", "%s", platform.Status.Message)
		}
		return ctrl.Result{}, nil
	}
	logger.Info("platform ready", "nodes", len(platform.Spec.Capability.Nodes))
	if r.Recorder != nil {
		r.Recorder.Eventf(&platform, corev1.EventTypeNormal, "Ready", "%s", platform.Status.Message)
	}
	return ctrl.Result{}, nil
}

func validatePlatform(platform *lisav1alpha1.Platform) []string {
	var problems []string
	if platform.Spec.Type == "" {
		problems = append(problems, "type shouldn't be empty")
	}
	if v := platform.Spec.Version; v != "" {
		if _, err := semver.ParseVersion(v); err != nil {
			problems = append(problems, fmt.Sprintf("version %q is not a semantic version", v))
		}
	}
	return append(problems, schema.ValidateCapability(platform.Spec.Capability)...)
}

func (r *PlatformReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&lisav1alpha1.Platform{}).
		Complete(r)
}
