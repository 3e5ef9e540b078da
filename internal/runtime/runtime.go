// Package runtime controls the container runtime backing a deployment:
// stack stop/start, running-container discovery and in-container command
// execution.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrContainerNotFound means no running container matched the requested
// name substring.
var ErrContainerNotFound = errors.New("container not found")

// Container is a running container as seen by the runtime.
type Container struct {
	ID    string
	Name  string
	Image string
}

// ImageTag returns the tag portion of the container's image reference, or
// the whole reference when untagged.
func (c Container) ImageTag() string {
	if idx := strings.LastIndex(c.Image, ":"); idx >= 0 {
		return c.Image[idx+1:]
	}
	return c.Image
}

// Runtime is the container-runtime collaborator. Implementations control
// one compose deployment.
type Runtime interface {
	// StopStack stops the whole deployment.
	StopStack(ctx context.Context) error

	// StartStack brings the whole deployment up detached.
	StartStack(ctx context.Context) error

	// StartService brings a single service up detached.
	StartService(ctx context.Context, service string) error

	// ListRunning returns the currently running containers with their
	// image references.
	ListRunning(ctx context.Context) ([]Container, error)

	// Exec runs argv inside the named container as the given user and
	// returns the command's exit code. A non-nil error means the
	// invocation itself failed, not that the command exited non-zero.
	Exec(ctx context.Context, containerID, user string, argv []string) (int, error)
}

// FindContainer resolves a running container whose name contains
// substring. Returns ErrContainerNotFound when nothing matches.
func FindContainer(ctx context.Context, rt Runtime, substring string) (Container, error) {
	containers, err := rt.ListRunning(ctx)
	if err != nil {
		return Container{}, fmt.Errorf("listing containers: %w", err)
	}
	for _, c := range containers {
		if strings.Contains(c.Name, substring) {
			return c, nil
		}
	}
	return Container{}, fmt.Errorf("%w: no running container matches %q", ErrContainerNotFound, substring)
}

// DetectImageTag returns the image tag of the running container matching
// substring. Used to derive the installed version from the runtime rather
// than the persisted document, so drift between the two is visible.
func DetectImageTag(ctx context.Context, rt Runtime, substring string) (string, error) {
	c, err := FindContainer(ctx, rt, substring)
	if err != nil {
		return "", err
	}
	return c.ImageTag(), nil
}
