package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/vouchers/internal/httputil"
	customValidation "github.com/allisson/vouchers/internal/validation"
	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
	"github.com/allisson/vouchers/internal/vouchers/http/dto"
	vouchersUseCase "github.com/allisson/vouchers/internal/vouchers/usecase"
)

// RedemptionHandler handles HTTP requests for voucher redemption.
type RedemptionHandler struct {
	voucherUseCase vouchersUseCase.VoucherUseCase
	logger         *slog.Logger
}

// NewRedemptionHandler creates a new redemption handler with required dependencies.
func NewRedemptionHandler(
	voucherUseCase vouchersUseCase.VoucherUseCase,
	logger *slog.Logger,
) *RedemptionHandler {
	return &RedemptionHandler{
		voucherUseCase: voucherUseCase,
		logger:         logger,
	}
}

// RedeemHandler attempts to redeem a voucher by its token.
// POST /v1/redemptions - Requires operator authentication.
//
// Every attempt produces a definitive business outcome:
//   - 200 OK: voucher redeemed by this request
//   - 409 Conflict: voucher was already used
//   - 404 Not Found: no voucher matches the token
func (h *RedemptionHandler) RedeemHandler(c *gin.Context) {
	var req dto.RedeemVoucherRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Call use case
	result, err := h.voucherUseCase.Redeem(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapRedemptionResultToResponse(result)
	c.JSON(redemptionStatusCode(result.Outcome), response)
}

// redemptionStatusCode maps a redemption outcome to its HTTP status code.
func redemptionStatusCode(outcome vouchersDomain.RedemptionOutcome) int {
	switch outcome {
	case vouchersDomain.OutcomeRedeemed:
		return http.StatusOK
	case vouchersDomain.OutcomeAlreadyUsed:
		return http.StatusConflict
	default:
		return http.StatusNotFound
	}
}
