package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/godilite/call-insights/internal/httpapi/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewServerRejectsInvalidPort(t *testing.T) {
	_, err := NewServer(http.NotFoundHandler(), WithPort(70000))
	assert.Error(t, err)
}

func TestServerServesAndShutsDown(t *testing.T) {
	logger := zaptest.NewLogger(t)
	h := NewHandlers(&mocks.MockAnalytics{}, logger).Routes()

	srv, err := NewServer(h, WithPort(0), WithServerLogger(logger))
	require.NoError(t, err)
	srv.Start()

	port := srv.Addr().(*net.TCPAddr).Port
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	_, err = http.Get(fmt.Sprintf("http://localhost:%d/healthz", port))
	assert.Error(t, err)
}

func TestNewServerWithListener(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	srv, err := NewServer(http.NotFoundHandler(), WithListener(lis), WithPort(-1))
	require.NoError(t, err)
	assert.Equal(t, lis.Addr(), srv.Addr())
	require.NoError(t, srv.Shutdown(context.Background()))
}
