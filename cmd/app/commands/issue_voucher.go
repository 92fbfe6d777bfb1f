package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/vouchers/internal/delivery"
	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
	"github.com/allisson/vouchers/internal/vouchers/http/dto"
	vouchersUseCase "github.com/allisson/vouchers/internal/vouchers/usecase"
)

// RunIssueVoucher issues a new single-use voucher for the given recipient.
// When deliver is set and a sender is configured, the voucher is emailed to
// the recipient after issuance; a delivery failure never undoes the voucher.
// Outputs the token and delivery status in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunIssueVoucher(
	ctx context.Context,
	voucherUseCase vouchersUseCase.VoucherUseCase,
	renderer delivery.Renderer,
	sender delivery.Sender,
	logger *slog.Logger,
	recipient string,
	deliver bool,
	format string,
	io IOTuple,
) error {
	request := &dto.IssueVoucherRequest{
		Recipient: recipient,
		Deliver:   deliver,
	}
	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	logger.Info("issuing voucher", slog.String("recipient", recipient))

	voucher, err := voucherUseCase.Issue(ctx, recipient)
	if err != nil {
		return fmt.Errorf("failed to issue voucher: %w", err)
	}

	deliveryStatus := dto.DeliverySkipped
	if deliver && sender != nil {
		deliveryStatus = deliverVoucher(ctx, renderer, sender, logger, voucher)
	}

	if format == "json" {
		outputVoucherJSON(voucher, deliveryStatus, io.Writer)
	} else {
		outputVoucherText(voucher, deliveryStatus, io.Writer)
	}

	logger.Info("voucher issued successfully",
		slog.Int64("voucher_id", voucher.ID),
		slog.String("delivery", deliveryStatus),
	)

	return nil
}

// deliverVoucher renders the QR code and emails the voucher to its recipient.
func deliverVoucher(
	ctx context.Context,
	renderer delivery.Renderer,
	sender delivery.Sender,
	logger *slog.Logger,
	voucher *vouchersDomain.Voucher,
) string {
	qrPNG, err := renderer.RenderPNG(voucher.Token)
	if err != nil {
		logger.Warn("failed to render voucher QR code", slog.Any("error", err))
		return dto.DeliveryFailed
	}

	if err := sender.Send(ctx, voucher.RecipientIdentity, voucher.Token, qrPNG); err != nil {
		logger.Warn("failed to deliver voucher", slog.Any("error", err))
		return dto.DeliveryFailed
	}

	return dto.DeliverySent
}

// outputVoucherText outputs the result in human-readable text format.
func outputVoucherText(voucher *vouchersDomain.Voucher, deliveryStatus string, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nVoucher issued successfully!")
	_, _ = fmt.Fprintf(writer, "Token: %s\n", voucher.Token)
	_, _ = fmt.Fprintf(writer, "Recipient: %s\n", voucher.RecipientIdentity)
	_, _ = fmt.Fprintf(writer, "Delivery: %s\n", deliveryStatus)
}

// outputVoucherJSON outputs the result in JSON format for machine consumption.
func outputVoucherJSON(voucher *vouchersDomain.Voucher, deliveryStatus string, writer io.Writer) {
	result := map[string]string{
		"token":     voucher.Token,
		"recipient": voucher.RecipientIdentity,
		"delivery":  deliveryStatus,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
