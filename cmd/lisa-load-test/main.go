package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/controller-runtime/pkg/client"

	lisav1alpha1 "github.com/lisa-platform/lisa/api/v1alpha1"
	"github.com/lisa-platform/lisa/internal/schema"
	"github.com/lisa-platform/lisa/internal/searchspace"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(lisav1alpha1.AddToScheme(scheme))
}

func main() {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	} else {
		kubeconfig = os.Getenv("KUBECONFIG")
	}
	flag.StringVar(&kubeconfig, "kubeconfig", kubeconfig, "absolute path to the kubeconfig file")

	var numEnvironments int
	var namespace string
	var platformName string
	var cores int
	var timeout time.Duration

	flag.IntVar(&numEnvironments, "environments", 10, "Number of TestEnvironments to create")
	flag.StringVar(&namespace, "namespace", "default", "Namespace to create environments in")
	flag.StringVar(&platformName, "platform", "", "Pin environments to this Platform")
	flag.IntVar(&cores, "cores", 2, "Minimum core count per environment node")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for each environment")
	flag.Parse()

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		log.Fatalf("Error building kubeconfig: %v", err)
	}

	k8sClient, err := client.New(config, client.Options{Scheme: scheme})
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}

	runID := uuid.NewString()[:8]
	fmt.Printf("Starting load test %s: %d environments in namespace %s\n", runID, numEnvironments, namespace)

	var wg sync.WaitGroup
	start := time.Now()
	latencies := make(chan time.Duration, numEnvironments)

	for i := 0; i < numEnvironments; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			envName := fmt.Sprintf("load-test-%s-%d", runID, id)

			env := &lisav1alpha1.TestEnvironment{
				ObjectMeta: metav1.ObjectMeta{
					Name:      envName,
					Namespace: namespace,
				},
				Spec: lisav1alpha1.TestEnvironmentSpec{
					Requirement: schema.NewEnvironmentSpace(schema.NodeSpace{
						Type:      schema.NodeTypeRequirement,
						NodeCount: searchspace.Exact(1),
						CoreCount: searchspace.AtLeast(cores),
					}),
				},
			}
			if platformName != "" {
				env.Spec.PlatformRef = &lisav1alpha1.ObjectRef{Name: platformName}
			}

			createStart := time.Now()
			fmt.Printf("Creating environment %s\n", envName)
			if err := k8sClient.Create(context.Background(), env); err != nil {
				fmt.Printf("Error creating environment %s: %v\n", envName, err)
				return
			}

			// Poll for status
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			for {
				select {
				case <-ctx.Done():
					fmt.Printf("Timeout waiting for environment %s\n", envName)
					return
				case <-time.After(1 * time.Second):
					var current lisav1alpha1.TestEnvironment
					if err := k8sClient.Get(ctx, client.ObjectKey{Name: envName, Namespace: namespace}, &current); err != nil {
						continue
					}
					switch current.Status.Phase {
					case lisav1alpha1.EnvironmentPhaseMatched:
						latency := time.Since(createStart)
						latencies <- latency
						fmt.Printf("Environment %s matched %s in %v\n", envName, current.Status.MatchedPlatform, latency)
						return
					case lisav1alpha1.EnvironmentPhaseUnmatched, lisav1alpha1.EnvironmentPhaseError:
						fmt.Printf("Environment %s %s: %s\n", envName, current.Status.Phase, current.Status.Message)
						return
					}
				}
			}
		}(i)
	}

	wg.Wait()
	close(latencies)
	totalDuration := time.Since(start)

	var totalLatency time.Duration
	count := 0
	for l := range latencies {
		totalLatency += l
		count++
	}

	if count > 0 {
		avgLatency := totalLatency / time.Duration(count)
		fmt.Printf("Load test completed in %v. %d/%d matched, avg match latency: %v\n", totalDuration, count, numEnvironments, avgLatency)
	} else {
		fmt.Printf("Load test completed in %v. No environments matched.\n", totalDuration)
	}
}
