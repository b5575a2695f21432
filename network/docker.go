package network

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const (
	dockerScheme = "docker://"
	// NetworkLabel tags the container of a local development chain
	NetworkLabel = "sgld-network"
)

var (
	ErrChainContainerNotFound = errors.New("chain container not found")
	ErrChainPortBind          = errors.New("port 8545 is not bound on the host")

	jsonRPCPort = nat.Port("8545/tcp")
)

// DockerAPI is the part of the docker client used to locate local chains
type DockerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
}

// IsDockerEndpoint reports whether the endpoint refers to a local docker chain (docker://<name>)
func IsDockerEndpoint(endpoint string) bool {
	return strings.HasPrefix(endpoint, dockerScheme)
}

// ResolveEndpoint turns docker://<name> into the JSON-RPC URL of the container labeled
// sgld-network=<name>. Other endpoints are returned unchanged.
func ResolveEndpoint(ctx context.Context, endpoint string) (string, error) {
	if !IsDockerEndpoint(endpoint) {
		return endpoint, nil
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return "", fmt.Errorf("docker client error: %w", err)
	}
	defer cli.Close()

	return resolveDockerEndpoint(ctx, cli, strings.TrimPrefix(endpoint, dockerScheme))
}

func resolveDockerEndpoint(ctx context.Context, cli DockerAPI, name string) (string, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("label", NetworkLabel+"="+name)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}

	var id string

	for _, c := range containers {
		if c.Labels[NetworkLabel] == name {
			id = c.ID

			break
		}
	}

	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrChainContainerNotFound, name)
	}

	inspect, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to inspect container %s: %w", id, err)
	}

	if inspect.ContainerJSONBase == nil || inspect.HostConfig == nil {
		return "", ErrChainPortBind
	}

	ports, ok := inspect.HostConfig.PortBindings[jsonRPCPort]
	if !ok || len(ports) == 0 {
		return "", ErrChainPortBind
	}

	host := ports[0].HostIP
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return fmt.Sprintf("http://%s:%s", host, ports[0].HostPort), nil
}
