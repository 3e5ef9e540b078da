package upgrade

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(payload))
		require.NoError(t, err)
	}))
}

func TestHTTPCheckerReady(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{
			name:    "fully up",
			payload: `{"installed":true,"maintenance":false,"needsDbUpgrade":false,"version":"29.0.4.1"}`,
			want:    true,
		},
		{
			name:    "maintenance mode",
			payload: `{"installed":true,"maintenance":true,"needsDbUpgrade":false}`,
			want:    false,
		},
		{
			name:    "pending schema upgrade",
			payload: `{"installed":true,"maintenance":false,"needsDbUpgrade":true}`,
			want:    false,
		},
		{
			name:    "not installed",
			payload: `{"installed":false,"maintenance":false,"needsDbUpgrade":false}`,
			want:    false,
		},
		{
			name:    "empty body",
			payload: ``,
			want:    false,
		},
		{
			name:    "html error page",
			payload: `<html><body>Service Unavailable</body></html>`,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := statusServer(t, tt.payload)
			defer srv.Close()

			checker := NewHTTPChecker(srv.URL, time.Second)
			ready, err := checker.Ready(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ready)
		})
	}
}

func TestHTTPCheckerReturnsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	checker := NewHTTPChecker(srv.URL, time.Second)
	ready, err := checker.Ready(context.Background())
	require.Error(t, err)
	assert.False(t, ready)
}

func TestStatusURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/status.php", StatusURL("8080"))
}
