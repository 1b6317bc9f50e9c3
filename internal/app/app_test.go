package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/entries-server/internal/config"
	mocksvc "github.com/stacklok/entries-server/internal/service/mocks"
)

// createTestApp builds an EntriesApp around a mocked entry service without
// going through NewEntriesApp
func createTestApp(t *testing.T, ctrl *gomock.Controller, addr string) (*EntriesApp, *mocksvc.MockEntryService, *bool) {
	t.Helper()

	mockSvc := mocksvc.NewMockEntryService(ctrl)
	cfg := createTestAppConfig()

	appCfg := &entriesAppConfig{
		config:         cfg,
		address:        addr,
		requestTimeout: 10 * time.Second,
		readTimeout:    10 * time.Second,
		writeTimeout:   15 * time.Second,
		idleTimeout:    60 * time.Second,
		authMiddleware: func(next http.Handler) http.Handler { return next },
	}

	server, err := buildHTTPServer(context.Background(), appCfg, mockSvc)
	require.NoError(t, err)

	cleaned := false
	appCtx, cancel := context.WithCancel(context.Background())
	return &EntriesApp{
		config:     cfg,
		components: &AppComponents{EntryService: mockSvc},
		httpServer: server,
		ctx:        appCtx,
		cancelFunc: func() {
			cleaned = true
			cancel()
		},
	}, mockSvc, &cleaned
}

// createTestAppConfig creates a minimal valid config for testing
func createTestAppConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{Mode: config.AuthModeAnonymous},
	}
}

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestEntriesApp_StartStop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	addr := freeAddress(t)
	app, mockSvc, cleaned := createTestApp(t, ctrl, addr)
	mockSvc.EXPECT().CheckReadiness(gomock.Any()).Return(nil).AnyTimes()

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/readiness")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, app.Stop(5*time.Second))
	assert.True(t, *cleaned, "storage should be released on stop")

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestEntriesApp_StartInvalidAddress(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, _, _ := createTestApp(t, ctrl, "256.0.0.1:99999")

	err := app.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}

func TestEntriesApp_StopWithoutStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, _, cleaned := createTestApp(t, ctrl, ":0")

	require.NoError(t, app.Stop(time.Second))
	assert.True(t, *cleaned)
}

func TestEntriesApp_Getters(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, mockSvc, _ := createTestApp(t, ctrl, "127.0.0.1:0")

	assert.Equal(t, config.AuthModeAnonymous, app.GetConfig().Auth.Mode)
	assert.Equal(t, "127.0.0.1:0", app.GetHTTPServer().Addr)
	assert.Same(t, mockSvc, app.Components().EntryService)
}
