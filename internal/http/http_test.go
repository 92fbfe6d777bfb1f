package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/vouchers/internal/delivery"
	"github.com/allisson/vouchers/internal/metrics"
	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
	vouchersHTTP "github.com/allisson/vouchers/internal/vouchers/http"
	"github.com/allisson/vouchers/internal/vouchers/usecase/mocks"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testOperatorKey = "op-secret"

// createTestServer creates a server wired to a mocked voucher use case.
func createTestServer(options ServerOptions) (*Server, *mocks.MockVoucherUseCase) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockUseCase := &mocks.MockVoucherUseCase{}

	voucherHandler := vouchersHTTP.NewVoucherHandler(
		mockUseCase,
		delivery.NewQRRenderer(),
		nil,
		logger,
	)
	redemptionHandler := vouchersHTTP.NewRedemptionHandler(mockUseCase, logger)

	server := NewServer("localhost", 8080, logger, voucherHandler, redemptionHandler, options)
	return server, mockUseCase
}

func TestRouter_HealthEndpoint(t *testing.T) {
	server, _ := createTestServer(ServerOptions{OperatorKey: testOperatorKey})
	router := server.GetHandler(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

func TestRouter_ReadyEndpoint(t *testing.T) {
	t.Run("ready while context is live", func(t *testing.T) {
		server, _ := createTestServer(ServerOptions{OperatorKey: testOperatorKey})
		router := server.GetHandler(context.Background())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, "ready", response["status"])
	})

	t.Run("not ready after context cancellation", func(t *testing.T) {
		server, _ := createTestServer(ServerOptions{OperatorKey: testOperatorKey})

		ctx, cancel := context.WithCancel(context.Background())
		router := server.GetHandler(ctx)
		cancel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRouter_OperatorEndpointsRequireKey(t *testing.T) {
	server, mockUseCase := createTestServer(ServerOptions{OperatorKey: testOperatorKey})
	router := server.GetHandler(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/vouchers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockUseCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_OperatorEndpointsWithKey(t *testing.T) {
	server, mockUseCase := createTestServer(ServerOptions{OperatorKey: testOperatorKey})
	router := server.GetHandler(context.Background())

	mockUseCase.On("Get", mock.Anything, "A1B2C3D4E5F6").
		Return(&vouchersDomain.Voucher{
			Token: "A1B2C3D4E5F6",
			State: vouchersDomain.StateUnused,
		}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/vouchers/A1B2C3D4E5F6", nil)
	req.Header.Set(vouchersHTTP.OperatorKeyHeader, testOperatorKey)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	server, _ := createTestServer(ServerOptions{OperatorKey: testOperatorKey})
	router := server.GetHandler(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomLoggerMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "test", response["message"])
}

// TestRecoveryMiddleware tests Gin's built-in recovery middleware.
func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	// Should not panic - Recovery middleware catches it
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestRequestIDMiddleware_HeaderPresent verifies X-Request-Id header is present in response.
func TestRequestIDMiddleware_HeaderPresent(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID, "X-Request-Id header should be present")

	parsedUUID, err := uuid.Parse(requestID)
	require.NoError(t, err, "X-Request-Id should be a valid UUID")
	assert.NotEqual(t, uuid.Nil, parsedUUID, "X-Request-Id should not be nil UUID")
}

// TestServer_ShutdownGracefully tests graceful server shutdown.
func TestServer_ShutdownGracefully(t *testing.T) {
	server, _ := createTestServer(ServerOptions{OperatorKey: testOperatorKey})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Shutdown server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	assert.NoError(t, err)

	// Verify no startup errors
	select {
	case err := <-errChan:
		t.Fatalf("server startup failed: %v", err)
	default:
		// No error, good
	}
}

// TestMetricsServer_Endpoints tests the metrics server endpoints.
func TestMetricsServer_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Create metrics provider
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	// Create metrics server
	metricsServer := NewMetricsServer("localhost", 8081, logger, provider)
	require.NotNil(t, metricsServer)

	// Test the handler from metricsServer exactly as it's configured
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsServer.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

// TestServer_NoMetricsEndpoint tests that the API server does NOT expose /metrics.
func TestServer_NoMetricsEndpoint(t *testing.T) {
	server, _ := createTestServer(ServerOptions{OperatorKey: testOperatorKey})
	router := server.GetHandler(context.Background())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
