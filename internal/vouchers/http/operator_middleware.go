// Package http provides HTTP handlers and middleware for voucher operations.
package http

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/vouchers/internal/errors"
	"github.com/allisson/vouchers/internal/httputil"
)

// OperatorKeyHeader carries the shared operator secret on protected requests.
const OperatorKeyHeader = "X-Operator-Key"

// OperatorAuthMiddleware guards operator endpoints with a shared secret.
//
// The presented key is compared against the configured key in constant time.
// An empty configured key means no operator access is possible; every request
// is rejected rather than falling open. The key value is never logged.
//
// Error handling:
//   - Missing header → 401 Unauthorized
//   - Mismatched key → 401 Unauthorized
//   - No key configured → 401 Unauthorized
func OperatorAuthMiddleware(operatorKey string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(OperatorKeyHeader)

		if operatorKey == "" {
			logger.Debug("operator authentication failed: no operator key configured")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if presented == "" {
			logger.Debug("operator authentication failed: missing operator key header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(operatorKey)) != 1 {
			logger.Debug("operator authentication failed: operator key mismatch")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
