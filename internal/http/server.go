package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	vouchersHTTP "github.com/allisson/vouchers/internal/vouchers/http"
)

// ServerOptions holds the optional pieces of the API server.
// Nil middlewares are skipped during route registration.
type ServerOptions struct {
	OperatorKey       string
	CORSEnabled       bool
	CORSAllowOrigins  string
	MetricsMiddleware gin.HandlerFunc
	RedeemRateLimit   gin.HandlerFunc
}

// Server represents the voucher API HTTP server.
type Server struct {
	server            *http.Server
	logger            *slog.Logger
	voucherHandler    *vouchersHTTP.VoucherHandler
	redemptionHandler *vouchersHTTP.RedemptionHandler
	options           ServerOptions
}

// NewServer creates a new API server with all route dependencies.
func NewServer(
	host string,
	port int,
	logger *slog.Logger,
	voucherHandler *vouchersHTTP.VoucherHandler,
	redemptionHandler *vouchersHTTP.RedemptionHandler,
	options ServerOptions,
) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:            logger,
		voucherHandler:    voucherHandler,
		redemptionHandler: redemptionHandler,
		options:           options,
	}
}

// GetHandler builds and returns the router for testing purposes.
func (s *Server) GetHandler(ctx context.Context) http.Handler {
	return s.buildRouter(ctx)
}

// buildRouter assembles the gin engine with middleware and routes.
func (s *Server) buildRouter(ctx context.Context) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(CustomLoggerMiddleware(s.logger))

	if s.options.MetricsMiddleware != nil {
		router.Use(s.options.MetricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(
		s.options.CORSEnabled,
		s.options.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	// Health and readiness endpoints
	router.GET("/health", HealthHandler())
	router.GET("/ready", ReadinessHandler(ctx))

	// Operator endpoints
	v1 := router.Group("/v1")
	v1.Use(vouchersHTTP.OperatorAuthMiddleware(s.options.OperatorKey, s.logger))
	{
		v1.POST("/vouchers", s.voucherHandler.IssueHandler)
		v1.GET("/vouchers", s.voucherHandler.ListHandler)
		v1.GET("/vouchers/:token", s.voucherHandler.GetHandler)
		v1.GET("/vouchers/:token/qr", s.voucherHandler.QRHandler)

		redemptions := v1.Group("/redemptions")
		if s.options.RedeemRateLimit != nil {
			redemptions.Use(s.options.RedeemRateLimit)
		}
		redemptions.POST("", s.redemptionHandler.RedeemHandler)
	}

	return router
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.buildRouter(ctx)

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
