package runtime

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// execPollInterval is how often a detached exec is inspected for
// completion.
const execPollInterval = time.Second

// DockerRuntime drives one compose deployment through the Docker daemon.
// Stack lifecycle goes through the compose CLI so service dependencies and
// build contexts are honored; listing and exec use the SDK directly.
type DockerRuntime struct {
	cli         *client.Client
	composeFile string
}

// NewDockerRuntime connects to the Docker daemon using environment
// defaults and binds the runtime to the given compose file.
func NewDockerRuntime(composeFile string) (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerRuntime{cli: cli, composeFile: composeFile}, nil
}

// Close releases the SDK client.
func (r *DockerRuntime) Close() error {
	if r.cli == nil {
		return nil
	}
	return r.cli.Close()
}

// StopStack implements Runtime.
func (r *DockerRuntime) StopStack(ctx context.Context) error {
	return r.compose(ctx, "down")
}

// StartStack implements Runtime.
func (r *DockerRuntime) StartStack(ctx context.Context) error {
	return r.compose(ctx, "up", "-d")
}

// StartService implements Runtime.
func (r *DockerRuntime) StartService(ctx context.Context, service string) error {
	return r.compose(ctx, "up", "-d", service)
}

func (r *DockerRuntime) compose(ctx context.Context, args ...string) error {
	full := append([]string{"compose", "-f", r.composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", full...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("docker compose %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ListRunning implements Runtime.
func (r *DockerRuntime) ListRunning(ctx context.Context) ([]Container, error) {
	list, err := r.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("docker list: %w", err)
	}
	out := make([]Container, 0, len(list))
	for _, c := range list {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		out = append(out, Container{ID: c.ID, Name: name, Image: c.Image})
	}
	return out, nil
}

// Exec implements Runtime. The exec is started detached and polled until
// it finishes, then its exit code is reported.
func (r *DockerRuntime) Exec(ctx context.Context, containerID, user string, argv []string) (int, error) {
	created, err := r.cli.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		User: user,
		Cmd:  argv,
	})
	if err != nil {
		return 0, fmt.Errorf("docker exec create: %w", err)
	}
	if err := r.cli.ContainerExecStart(ctx, created.ID, container.ExecStartOptions{Detach: true}); err != nil {
		return 0, fmt.Errorf("docker exec start: %w", err)
	}

	ticker := time.NewTicker(execPollInterval)
	defer ticker.Stop()
	for {
		inspect, err := r.cli.ContainerExecInspect(ctx, created.ID)
		if err != nil {
			return 0, fmt.Errorf("docker exec inspect: %w", err)
		}
		if !inspect.Running {
			return inspect.ExitCode, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}
