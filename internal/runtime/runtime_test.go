package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerImageTag(t *testing.T) {
	tests := []struct {
		image string
		want  string
	}{
		{"nextcloud:29.0.4-fpm", "29.0.4-fpm"},
		{"registry.example.com:5000/nextcloud:29-fpm", "29-fpm"},
		{"postgres", "postgres"},
	}
	for _, tt := range tests {
		c := Container{Image: tt.image}
		assert.Equal(t, tt.want, c.ImageTag())
	}
}

func TestFindContainerMatchesBySubstring(t *testing.T) {
	rt := &MockRuntime{
		ListRunningFunc: func(context.Context) ([]Container, error) {
			return []Container{
				{ID: "a", Name: "deploy-nextcloud-postgres-1"},
				{ID: "b", Name: "deploy-nextcloud-fpm-1"},
			}, nil
		},
	}

	c, err := FindContainer(context.Background(), rt, "nextcloud-fpm")
	require.NoError(t, err)
	assert.Equal(t, "b", c.ID)
}

func TestFindContainerNotFound(t *testing.T) {
	rt := &MockRuntime{}

	_, err := FindContainer(context.Background(), rt, "nextcloud-fpm")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContainerNotFound))
}

func TestFindContainerPropagatesListFailure(t *testing.T) {
	rt := &MockRuntime{
		ListRunningFunc: func(context.Context) ([]Container, error) {
			return nil, errors.New("daemon unreachable")
		},
	}

	_, err := FindContainer(context.Background(), rt, "nextcloud-fpm")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrContainerNotFound))
}

func TestDetectImageTag(t *testing.T) {
	rt := &MockRuntime{
		ListRunningFunc: func(context.Context) ([]Container, error) {
			return []Container{{ID: "a", Name: "nextcloud-fpm", Image: "nextcloud:28.0.2-fpm"}}, nil
		},
	}

	tag, err := DetectImageTag(context.Background(), rt, "nextcloud-fpm")
	require.NoError(t, err)
	assert.Equal(t, "28.0.2-fpm", tag)
}
