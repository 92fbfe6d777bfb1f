package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/vouchers/internal/delivery"
	"github.com/allisson/vouchers/internal/httputil"
	customValidation "github.com/allisson/vouchers/internal/validation"
	"github.com/allisson/vouchers/internal/vouchers/http/dto"
	vouchersUseCase "github.com/allisson/vouchers/internal/vouchers/usecase"
)

// VoucherHandler handles HTTP requests for voucher issuance and inspection.
// It coordinates the VoucherUseCase with the optional delivery pipeline.
type VoucherHandler struct {
	voucherUseCase vouchersUseCase.VoucherUseCase
	renderer       delivery.Renderer
	sender         delivery.Sender
	logger         *slog.Logger
}

// NewVoucherHandler creates a new voucher handler with required dependencies.
// The sender may be nil when email delivery is not configured; issuance then
// reports delivery as skipped.
func NewVoucherHandler(
	voucherUseCase vouchersUseCase.VoucherUseCase,
	renderer delivery.Renderer,
	sender delivery.Sender,
	logger *slog.Logger,
) *VoucherHandler {
	return &VoucherHandler{
		voucherUseCase: voucherUseCase,
		renderer:       renderer,
		sender:         sender,
		logger:         logger,
	}
}

// IssueHandler creates a new voucher for a recipient.
// POST /v1/vouchers - Requires operator authentication.
// Returns 201 Created with the voucher and the delivery status. The voucher
// is durable once issuance succeeds; a failed email hand-off never undoes it.
func (h *VoucherHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueVoucherRequest

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
	voucher, err := h.voucherUseCase.Issue(c.Request.Context(), req.Recipient)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Hand off to the recipient after the voucher is persisted
	deliveryStatus := dto.DeliverySkipped
	if req.Deliver && h.sender != nil {
		deliveryStatus = h.deliver(c, voucher.RecipientIdentity, voucher.Token)
	}

	response := dto.IssueVoucherResponse{
		Voucher:  dto.MapVoucherToResponse(voucher),
		Delivery: deliveryStatus,
	}
	c.JSON(http.StatusCreated, response)
}

// deliver renders the QR code and emails the voucher. Failures are logged and
// reported in the response; they never affect the issued voucher.
func (h *VoucherHandler) deliver(c *gin.Context, recipient, token string) string {
	qrPNG, err := h.renderer.RenderPNG(token)
	if err != nil {
		h.logger.Warn("voucher qr rendering failed",
			slog.String("recipient", recipient),
			slog.Any("error", err))
		return dto.DeliveryFailed
	}

	if err := h.sender.Send(c.Request.Context(), recipient, token, qrPNG); err != nil {
		h.logger.Warn("voucher email delivery failed",
			slog.String("recipient", recipient),
			slog.Any("error", err))
		return dto.DeliveryFailed
	}

	return dto.DeliverySent
}

// GetHandler retrieves a voucher by its token.
// GET /v1/vouchers/:token - Requires operator authentication.
// Returns 200 OK with the voucher metadata. Reads never change voucher state.
func (h *VoucherHandler) GetHandler(c *gin.Context) {
	voucher, err := h.voucherUseCase.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapVoucherToResponse(voucher)
	c.JSON(http.StatusOK, response)
}

// QRHandler renders a voucher's token as a QR code image.
// GET /v1/vouchers/:token/qr - Requires operator authentication.
// Returns 200 OK with a PNG body.
func (h *VoucherHandler) QRHandler(c *gin.Context) {
	voucher, err := h.voucherUseCase.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	qrPNG, err := h.renderer.RenderPNG(voucher.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "image/png", qrPNG)
}

// ListHandler retrieves vouchers with pagination support.
// GET /v1/vouchers?offset=0&limit=50 - Requires operator authentication.
// Returns 200 OK with the paginated voucher list and the total count.
func (h *VoucherHandler) ListHandler(c *gin.Context) {
	// Parse offset and limit query parameters
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	vouchers, err := h.voucherUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	total, err := h.voucherUseCase.Count(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapVouchersToListResponse(vouchers, total)
	c.JSON(http.StatusOK, response)
}
