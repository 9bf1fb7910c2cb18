package controllers

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	lisav1alpha1 "github.com/lisa-platform/lisa/api/v1alpha1"
	"github.com/lisa-platform/lisa/internal/resolver"
	"github.com/lisa-platform/lisa/internal/schema"
)

const (
	labelManagedBy       = "lisa.platform/managed-by"
	labelEnvironmentName = "lisa.platform/environment"
	labelPlatformName    = "lisa.platform/platform"

	managedByEnvironmentMatcher = "environmentmatcher"

	// indexPlatformRef indexes TestEnvironments by pinned platform name, or
	// anyPlatform when not pinned.
	indexPlatformRef = ".spec.platformRef.name"
	anyPlatform      = "*"
)

var (
	reNonDNS = regexp.MustCompile(`[^a-z0-9-]+`)
)

// EnvironmentMatcherReconciler matches TestEnvironments to Platforms and
// records the choice as an EnvironmentBinding.
//
// RBAC:
// +kubebuilder:rbac:groups=lisa.platform,resources=platforms,verbs=get;list;watch
// +kubebuilder:rbac:groups=lisa.platform,resources=testenvironments,verbs=get;list;watch
// +kubebuilder:rbac:groups=lisa.platform,resources=testenvironments/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=lisa.platform,resources=environmentbindings,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=lisa.platform,resources=environmentbindings/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch;update
type EnvironmentMatcherReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Resolver resolver.Resolver
	Recorder record.EventRecorder
}

// matchOutcome is what a reconcile writes into TestEnvironment.status besides
// phase, message and conditions.
type matchOutcome struct {
	platform      string
	minCapability *schema.EnvironmentSpace
	reasons       []string
}

func (r *EnvironmentMatcherReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	lisaControllerReconcileTotal.WithLabelValues("EnvironmentMatcher").Inc()

	logger := log.FromContext(ctx).WithValues(
		"controller", "EnvironmentMatcher",
		"namespace", req.Namespace,
		"environment", req.Name,
	)

	// 1) Load TestEnvironment
	var env lisav1alpha1.TestEnvironment
	if err := r.Get(ctx, req.NamespacedName, &env); err != nil {
		// Ignore not-found errors: object was deleted.
		if client.IgnoreNotFound(err) == nil {
			return ctrl.Result{}, nil
		}
		lisaControllerReconcileErrorTotal.WithLabelValues("EnvironmentMatcher").Inc()
		return ctrl.Result{}, err
	}
	logger.Info("reconciling environment", "nodes", len(env.Spec.Requirement.Nodes))

	if r.Resolver == nil {
		r.Resolver = resolver.NewDefault()
	}

	// 2) Load candidate Platforms
	var platforms lisav1alpha1.PlatformList
	if err := r.List(ctx, &platforms, client.InNamespace(req.Namespace)); err != nil {
		logger.Error(err, "failed to list platforms")
		lisaControllerReconcileErrorTotal.WithLabelValues("EnvironmentMatcher").Inc()
		return ctrl.Result{}, err
	}
	loaded := metav1.Condition{
		Type:    EnvironmentConditionPlatformsLoaded,
		Status:  metav1.ConditionTrue,
		Reason:  "PlatformsListed",
		Message: platformsLoadedMessage(len(platforms.Items)),
	}
	if len(platforms.Items) == 0 {
		loaded.Status = metav1.ConditionFalse
		loaded.Reason = "NoPlatforms"
	}

	// 3) Resolve
	start := time.Now()
	plan, err := r.Resolver.Resolve(ctx, resolver.Input{Environment: env, Platforms: platforms.Items})
	environmentMatcherMatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Resolver errors are configuration errors; retrying won't help.
		msg := fmt.Sprintf("ResolveError: %v", err)
		if perr := r.patchEnvironmentStatus(ctx, &env, lisav1alpha1.EnvironmentPhaseError, msg, matchOutcome{},
			loaded,
			metav1.Condition{
				Type:    EnvironmentConditionRequirementMatched,
				Status:  metav1.ConditionFalse,
				Reason:  "ResolveError",
				Message: msg,
			},
		); perr != nil {
			logger.Error(perr, "failed to patch environment status")
		}
		logger.Info("resolver returned error; marking environment error", "error", err.Error())
		r.recordEventf(&env, corev1.EventTypeWarning, "ResolveError", "%s", msg)
		environmentMatcherResultsTotal.WithLabelValues(lisav1alpha1.EnvironmentPhaseError).Inc()
		return ctrl.Result{}, nil
	}
	environmentMatcherRejectedPlatforms.Set(float64(len(plan.Diagnostics.Rejected)))
	for _, rejected := range plan.Diagnostics.Rejected {
		logger.V(1).Info("platform rejected", "platform", rejected.PlatformName, "reasons", rejected.Reasons)
	}

	// 4) Apply the binding for the selected platform
	desiredName := ""
	createdCount, updatedCount := 0, 0
	if plan.Selected != nil {
		desiredName = stableBindingName(env.Name, plan.Selected.PlatformName)
		created, updated, err := r.applyDesiredBinding(ctx, &env, desiredName, *plan.Selected)
		if err != nil {
			logger.Error(err, "failed to apply desired binding", "binding", desiredName)
			lisaControllerReconcileErrorTotal.WithLabelValues("EnvironmentMatcher").Inc()
			return ctrl.Result{}, err
		}
		if created {
			createdCount++
			environmentMatcherBindingsCreatedTotal.Inc()
		}
		if updated {
			updatedCount++
			environmentMatcherBindingsUpdatedTotal.Inc()
		}
	}

	// 5) Garbage-collect stale bindings that we manage for this environment.
	deletedCount, err := r.deleteStaleBindings(ctx, &env, desiredName)
	if err != nil {
		logger.Error(err, "failed to delete stale environmentbindings")
		lisaControllerReconcileErrorTotal.WithLabelValues("EnvironmentMatcher").Inc()
		return ctrl.Result{}, err
	}
	if deletedCount > 0 {
		logger.Info("garbage-collected stale bindings", "deleted", deletedCount)
		environmentMatcherBindingsDeletedTotal.Add(float64(deletedCount))
	}
	if createdCount+updatedCount+deletedCount > 0 {
		r.recordEventf(&env, corev1.EventTypeNormal, "BindingsApplied", "Bindings applied (created=%d updated=%d deleted=%d)", createdCount, updatedCount, deletedCount)
	}

	// 6) Surface the result in TestEnvironment.status
	prevPhase := env.Status.Phase
	if plan.Selected == nil {
		msg := summarizeRejected(plan.Diagnostics.Rejected)
		if perr := r.patchEnvironmentStatus(ctx, &env, lisav1alpha1.EnvironmentPhaseUnmatched, msg,
			matchOutcome{reasons: flattenReasons(plan.Diagnostics.Rejected)},
			loaded,
			metav1.Condition{
				Type:    EnvironmentConditionRequirementMatched,
				Status:  metav1.ConditionFalse,
				Reason:  "NoCompatiblePlatform",
				Message: msg,
			},
		); perr != nil {
			logger.Error(perr, "failed to patch environment status")
		}
		logger.Info("no compatible platform", "rejected", len(plan.Diagnostics.Rejected))
		if prevPhase != lisav1alpha1.EnvironmentPhaseUnmatched {
			r.recordEventf(&env, corev1.EventTypeWarning, "NoCompatiblePlatform", "%s", msg)
		}
		environmentMatcherResultsTotal.WithLabelValues(lisav1alpha1.EnvironmentPhaseUnmatched).Inc()
		return ctrl.Result{}, nil
	}

	selected := plan.Selected
	message := fmt.Sprintf("Matched platform %s", selected.PlatformName)
	if selected.PlatformVersion != "" {
		message = fmt.Sprintf("Matched platform %s (version %s)", selected.PlatformName, selected.PlatformVersion)
	}
	minCapability := selected.MinCapability
	if perr := r.patchEnvironmentStatus(ctx, &env, lisav1alpha1.EnvironmentPhaseMatched, message,
		matchOutcome{platform: selected.PlatformName, minCapability: &minCapability},
		loaded,
		metav1.Condition{
			Type:    EnvironmentConditionRequirementMatched,
			Status:  metav1.ConditionTrue,
			Reason:  "Matched",
			Message: message,
		},
	); perr != nil {
		logger.Error(perr, "failed to patch environment status")
	}
	logger.Info("environment matched", "platform", selected.PlatformName)
	if prevPhase != lisav1alpha1.EnvironmentPhaseMatched {
		// Avoid spamming; emit only on transitions.
		r.recordEventf(&env, corev1.EventTypeNormal, "Matched", "%s", message)
	}
	environmentMatcherResultsTotal.WithLabelValues(lisav1alpha1.EnvironmentPhaseMatched).Inc()

	return ctrl.Result{}, nil
}

func (r *EnvironmentMatcherReconciler) recordEventf(obj client.Object, eventType, reason, messageFmt string, args ...any) {
	if r.Recorder == nil || obj == nil {
		return
	}
	r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
}

func (r *EnvironmentMatcherReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := mgr.GetFieldIndexer().IndexField(context.Background(), &lisav1alpha1.TestEnvironment{}, indexPlatformRef, platformRefIndexValue); err != nil {
		return err
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&lisav1alpha1.TestEnvironment{}).
		Owns(&lisav1alpha1.EnvironmentBinding{}).
		Watches(&lisav1alpha1.Platform{}, enqueueEnvironmentsForPlatform(mgr.GetClient())).
		Complete(r)
}

func platformRefIndexValue(obj client.Object) []string {
	env, ok := obj.(*lisav1alpha1.TestEnvironment)
	if !ok {
		return nil
	}
	if env.Spec.PlatformRef == nil || env.Spec.PlatformRef.Name == "" {
		return []string{anyPlatform}
	}
	return []string{env.Spec.PlatformRef.Name}
}

// enqueueEnvironmentsForPlatform returns an event handler that enqueues the
// TestEnvironments a Platform could host: those pinned to it and those not
// pinned at all.
func enqueueEnvironmentsForPlatform(c client.Client) handler.EventHandler {
	return handler.EnqueueRequestsFromMapFunc(func(ctx context.Context, obj client.Object) []reconcile.Request {
		platform, ok := obj.(*lisav1alpha1.Platform)
		if !ok {
			return nil
		}
		return environmentRequestsForPlatform(ctx, c, platform)
	})
}

func environmentRequestsForPlatform(ctx context.Context, c client.Client, platform *lisav1alpha1.Platform) []reconcile.Request {
	out := make([]reconcile.Request, 0)
	for _, key := range []string{platform.Name, anyPlatform} {
		var envs lisav1alpha1.TestEnvironmentList
		if err := c.List(ctx, &envs,
			client.InNamespace(platform.Namespace),
			client.MatchingFields{indexPlatformRef: key},
		); err != nil {
			continue
		}
		for i := range envs.Items {
			e := &envs.Items[i]
			out = append(out, reconcile.Request{NamespacedName: types.NamespacedName{Namespace: e.Namespace, Name: e.Name}})
		}
	}
	return out
}

func (r *EnvironmentMatcherReconciler) patchEnvironmentStatus(ctx context.Context, env *lisav1alpha1.TestEnvironment, phase, message string, outcome matchOutcome, conds ...metav1.Condition) error {
	before := env.DeepCopy()
	env.Status.ObservedGeneration = env.Generation
	env.Status.Phase = phase
	env.Status.Message = message
	if outcome.platform != "" && (before.Status.MatchedPlatform != outcome.platform || before.Status.Phase != lisav1alpha1.EnvironmentPhaseMatched) {
		now := metav1.Now()
		env.Status.LastMatchedTime = &now
	}
	env.Status.MatchedPlatform = outcome.platform
	env.Status.MinCapability = outcome.minCapability
	env.Status.Reasons = outcome.reasons
	for _, c := range conds {
		setEnvironmentCondition(env, c)
	}
	return r.Status().Patch(ctx, env, client.MergeFrom(before))
}

func (r *EnvironmentMatcherReconciler) deleteStaleBindings(ctx context.Context, env *lisav1alpha1.TestEnvironment, desiredName string) (int, error) {
	var existing lisav1alpha1.EnvironmentBindingList
	if err := r.List(ctx, &existing,
		client.InNamespace(env.Namespace),
		client.MatchingLabels{
			labelManagedBy:       managedByEnvironmentMatcher,
			labelEnvironmentName: env.Name,
		},
	); err != nil {
		return 0, err
	}
	deleted := 0
	for i := range existing.Items {
		b := &existing.Items[i]
		if b.Name == desiredName {
			continue
		}
		if err := r.Delete(ctx, b); err != nil && !apierrors.IsNotFound(err) {
			return deleted, fmt.Errorf("delete binding %s: %w", b.Name, err)
		}
		deleted++
	}
	return deleted, nil
}

func stableBindingName(environmentName, platformName string) string {
	// K8s object names must be DNS subdomains (we keep it conservative: DNS labels).
	base := fmt.Sprintf("eb-%s-%s", environmentName, platformName)
	base = strings.ToLower(base)
	base = reNonDNS.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "eb"
	}
	// Bound length; add hash suffix if truncating.
	if len(base) <= 253 {
		return base
	}

	h := sha1.Sum([]byte(base))
	suffix := "-" + hex.EncodeToString(h[:])[:8]
	trimTo := 253 - len(suffix)
	base = strings.Trim(base[:trimTo], "-")
	return base + suffix
}

func (r *EnvironmentMatcherReconciler) applyDesiredBinding(
	ctx context.Context,
	env *lisav1alpha1.TestEnvironment,
	bindingName string,
	selected resolver.Selection,
) (created bool, updated bool, err error) {
	spec := lisav1alpha1.EnvironmentBindingSpec{
		EnvironmentRef:  lisav1alpha1.ObjectRef{Name: env.Name},
		PlatformRef:     lisav1alpha1.ObjectRef{Name: selected.PlatformName},
		PlatformVersion: selected.PlatformVersion,
		MinCapability:   selected.MinCapability,
	}
	labels := map[string]string{
		labelManagedBy:       managedByEnvironmentMatcher,
		labelEnvironmentName: env.Name,
		labelPlatformName:    selected.PlatformName,
	}

	obj := &lisav1alpha1.EnvironmentBinding{}
	err = r.Get(ctx, types.NamespacedName{Namespace: env.Namespace, Name: bindingName}, obj)
	if apierrors.IsNotFound(err) {
		obj = &lisav1alpha1.EnvironmentBinding{
			ObjectMeta: metav1.ObjectMeta{
				Name:      bindingName,
				Namespace: env.Namespace,
				Labels:    labels,
			},
			Spec: spec,
		}
		if err := controllerutil.SetControllerReference(env, obj, r.Scheme); err != nil {
			return false, false, err
		}
		if err := r.Create(ctx, obj); err != nil {
			return false, false, err
		}
		return true, false, r.markBindingBound(ctx, obj)
	}
	if err != nil {
		return false, false, err
	}

	if bindingUpToDate(obj, spec, labels) && metav1.IsControlledBy(obj, env) {
		if obj.Status.Phase != lisav1alpha1.BindingPhaseBound {
			return false, false, r.markBindingBound(ctx, obj)
		}
		return false, false, nil
	}

	before := obj.DeepCopy()
	if obj.Labels == nil {
		obj.Labels = map[string]string{}
	}
	for k, v := range labels {
		obj.Labels[k] = v
	}
	obj.Spec = spec
	if err := controllerutil.SetControllerReference(env, obj, r.Scheme); err != nil {
		return false, false, err
	}
	if err := r.Patch(ctx, obj, client.MergeFrom(before)); err != nil {
		return false, false, err
	}
	if obj.Status.Phase != lisav1alpha1.BindingPhaseBound {
		if err := r.markBindingBound(ctx, obj); err != nil {
			return false, true, err
		}
	}
	return false, true, nil
}

// bindingUpToDate reports whether b already carries spec and every label in
// labels.
func bindingUpToDate(b *lisav1alpha1.EnvironmentBinding, spec lisav1alpha1.EnvironmentBindingSpec, labels map[string]string) bool {
	for k, v := range labels {
		if b.Labels[k] != v {
			return false
		}
	}
	return b.Spec.EnvironmentRef == spec.EnvironmentRef &&
		b.Spec.PlatformRef == spec.PlatformRef &&
		b.Spec.PlatformVersion == spec.PlatformVersion &&
		b.Spec.MinCapability.Equal(spec.MinCapability)
}

func (r *EnvironmentMatcherReconciler) markBindingBound(ctx context.Context, binding *lisav1alpha1.EnvironmentBinding) error {
	before := binding.DeepCopy()
	binding.Status.Phase = lisav1alpha1.BindingPhaseBound
	setBindingCondition(binding, metav1.Condition{
		Type:    BindingConditionReady,
		Status:  metav1.ConditionTrue,
		Reason:  "Bound",
		Message: fmt.Sprintf("Environment %s bound to platform %s", binding.Spec.EnvironmentRef.Name, binding.Spec.PlatformRef.Name),
	})
	return r.Status().Patch(ctx, binding, client.MergeFrom(before))
}
