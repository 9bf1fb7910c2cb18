package controllers

import (
	"context"
	"strings"
	"testing"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"

	lisav1alpha1 "github.com/lisa-platform/lisa/api/v1alpha1"
	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
)

func reconcilePlatform(t *testing.T, r *PlatformReconciler, name string) lisav1alpha1.Platform {
	t.Helper()
	ctx := context.Background()
	key := types.NamespacedName{Namespace: testNamespace, Name: name}
	if _, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: key}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	var got lisav1alpha1.Platform
	if err := r.Get(ctx, key, &got); err != nil {
		t.Fatalf("Get platform: %v", err)
	}
	return got
}

func TestPlatformReconcile_ValidCapabilityIsReady(t *testing.T) {
	scheme := testScheme(t)
	recorder := record.NewFakeRecorder(10)
	r := &PlatformReconciler{
		Client:   testClient(scheme, testPlatform("azure", "1.0.0", testNode(4, 4096))),
		Scheme:   scheme,
		Recorder: recorder,
	}

	got := reconcilePlatform(t, r, "azure")
	if got.Status.Phase != lisav1alpha1.PlatformPhaseReady {
		t.Fatalf("expected Ready, got %q (%s)", got.Status.Phase, got.Status.Message)
	}
	if !meta.IsStatusConditionTrue(got.Status.Conditions, PlatformConditionCapabilityValid) {
		t.Fatalf("expected CapabilityValid=True")
	}
	if !containsEvent(drainEvents(recorder), "Ready") {
		t.Fatalf("expected Ready event")
	}

	reconcilePlatform(t, r, "azure")
	if len(drainEvents(recorder)) != 0 {
		t.Fatalf("expected no events without a phase transition")
	}
}

func TestPlatformReconcile_InvalidCapability(t *testing.T) {
	scheme := testScheme(t)

	bad := testPlatform("broken", "one", schema.NodeSpace{
		NodeCount: searchspace.Exact(1),
		CoreCount: searchspace.Exact(0),
		MemoryMB:  searchspace.Exact(512),
		NICCount:  searchspace.Exact(1),
	})
	recorder := record.NewFakeRecorder(10)
	r := &PlatformReconciler{Client: testClient(scheme, bad), Scheme: scheme, Recorder: recorder}

	got := reconcilePlatform(t, r, "broken")
	if got.Status.Phase != lisav1alpha1.PlatformPhaseInvalid {
		t.Fatalf("expected Invalid, got %q", got.Status.Phase)
	}
	for _, want := range []string{`version "one" is not a semantic version`, "0.core_count cannot be zero"} {
		if !strings.Contains(got.Status.Message, want) {
			t.Fatalf("expected message to contain %q, got %q", want, got.Status.Message)
		}
	}
	if !meta.IsStatusConditionFalse(got.Status.Conditions, PlatformConditionCapabilityValid) {
		t.Fatalf("expected CapabilityValid=False")
	}
	if !containsEvent(drainEvents(recorder), "InvalidCapability") {
		t.Fatalf("expected InvalidCapability event")
	}
}

func TestInvalidPlatformIsSkippedByMatcher(t *testing.T) {
	ctx := context.Background()
	scheme := testScheme(t)

	noNodes := testPlatform("empty", "9.0.0", testNode(1, 512))
	noNodes.Spec.Capability.Nodes = nil
	cl := testClient(scheme,
		testEnvironment("smoke", testNode(1, 512)),
		noNodes,
		testPlatform("fallback", "1.0.0", testNode(2, 2048)),
	)

	pr := &PlatformReconciler{Client: cl, Scheme: scheme}
	if got := reconcilePlatform(t, pr, "empty"); got.Status.Phase != lisav1alpha1.PlatformPhaseInvalid {
		t.Fatalf("expected Invalid, got %q", got.Status.Phase)
	}

	er := &EnvironmentMatcherReconciler{Client: cl, Scheme: scheme}
	reconcileEnvironment(t, er, "smoke")

	var env lisav1alpha1.TestEnvironment
	if err := cl.Get(ctx, types.NamespacedName{Namespace: testNamespace, Name: "smoke"}, &env); err != nil {
		t.Fatalf("Get environment: %v", err)
	}
	if env.Status.MatchedPlatform != "fallback" {
		t.Fatalf("expected fallback to be matched, got %q", env.Status.MatchedPlatform)
	}
}
