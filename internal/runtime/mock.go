package runtime

import "context"

// MockRuntime implements Runtime for testing. Unset function fields
// succeed with zero values.
type MockRuntime struct {
	StopStackFunc    func(ctx context.Context) error
	StartStackFunc   func(ctx context.Context) error
	StartServiceFunc func(ctx context.Context, service string) error
	ListRunningFunc  func(ctx context.Context) ([]Container, error)
	ExecFunc         func(ctx context.Context, containerID, user string, argv []string) (int, error)
}

// StopStack implements Runtime.
func (m *MockRuntime) StopStack(ctx context.Context) error {
	if m.StopStackFunc != nil {
		return m.StopStackFunc(ctx)
	}
	return nil
}

// StartStack implements Runtime.
func (m *MockRuntime) StartStack(ctx context.Context) error {
	if m.StartStackFunc != nil {
		return m.StartStackFunc(ctx)
	}
	return nil
}

// StartService implements Runtime.
func (m *MockRuntime) StartService(ctx context.Context, service string) error {
	if m.StartServiceFunc != nil {
		return m.StartServiceFunc(ctx, service)
	}
	return nil
}

// ListRunning implements Runtime.
func (m *MockRuntime) ListRunning(ctx context.Context) ([]Container, error) {
	if m.ListRunningFunc != nil {
		return m.ListRunningFunc(ctx)
	}
	return nil, nil
}

// Exec implements Runtime.
func (m *MockRuntime) Exec(ctx context.Context, containerID, user string, argv []string) (int, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, containerID, user, argv)
	}
	return 0, nil
}
