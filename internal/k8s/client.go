// Package k8s reads configuration documents stored in Kubernetes ConfigMaps.
package k8s

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ErrKeyNotFound is returned when a ConfigMap has no entry for the requested key.
var ErrKeyNotFound = errors.New("key not found in ConfigMap")

// Client wraps the Kubernetes clientset and provides helper methods
type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a new Kubernetes client using in-cluster config if running
// inside a Kubernetes cluster, or the standard kubeconfig location otherwise.
func NewClient() (*Client, error) {
	config, err := getKubeConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewClientWithInterface wraps an existing clientset, e.g. a fake one in tests.
func NewClientWithInterface(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// getKubeConfig attempts to load Kubernetes configuration from the following sources in order:
// 1. In-cluster config (if running inside a pod)
// 2. KUBECONFIG environment variable
// 3. ~/.kube/config (default kubeconfig location)
func getKubeConfig() (*rest.Config, error) {
	config, err := rest.InClusterConfig()
	if err == nil {
		return config, nil
	}

	kubeconfig := os.Getenv("KUBECONFIG")
	if kubeconfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config from kubeconfig: %w", err)
	}

	return config, nil
}

// GetConfigMapData returns the entry key of ConfigMap namespace/name. Text
// entries (Data) are preferred over binary ones (BinaryData).
// If namespace is empty, it defaults to "default".
func (c *Client) GetConfigMapData(ctx context.Context, namespace, name, key string) ([]byte, error) {
	if namespace == "" {
		namespace = "default"
	}

	cm, err := c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	if value, ok := cm.Data[key]; ok {
		return []byte(value), nil
	}
	if value, ok := cm.BinaryData[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("%w: %s/%s has no key %q", ErrKeyNotFound, namespace, name, key)
}

// ConfigMapKeys lists the Data and BinaryData keys of ConfigMap namespace/name
// in sorted order.
func (c *Client) ConfigMapKeys(ctx context.Context, namespace, name string) ([]string, error) {
	if namespace == "" {
		namespace = "default"
	}

	cm, err := c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	keys := make([]string, 0, len(cm.Data)+len(cm.BinaryData))
	for k := range cm.Data {
		keys = append(keys, k)
	}
	for k := range cm.BinaryData {
		if _, dup := cm.Data[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ParseConfigMapRef splits "namespace/name" into its parts. A bare "name"
// uses the default namespace.
func ParseConfigMapRef(ref string) (namespace, name string, err error) {
	parts := strings.Split(ref, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return "default", parts[0], nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return parts[0], parts[1], nil
	default:
		return "", "", fmt.Errorf("invalid ConfigMap reference %q, expected namespace/name", ref)
	}
}
