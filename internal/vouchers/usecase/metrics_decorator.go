package usecase

import (
	"context"
	"time"

	"github.com/allisson/vouchers/internal/metrics"
	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// voucherUseCaseWithMetrics decorates VoucherUseCase with metrics instrumentation.
type voucherUseCaseWithMetrics struct {
	next    VoucherUseCase
	metrics metrics.BusinessMetrics
}

// NewVoucherUseCaseWithMetrics wraps a VoucherUseCase with metrics recording.
func NewVoucherUseCaseWithMetrics(useCase VoucherUseCase, m metrics.BusinessMetrics) VoucherUseCase {
	return &voucherUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for voucher issuance operations.
func (v *voucherUseCaseWithMetrics) Issue(
	ctx context.Context,
	recipientIdentity string,
) (*vouchersDomain.Voucher, error) {
	start := time.Now()
	voucher, err := v.next.Issue(ctx, recipientIdentity)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vouchers", "voucher_issue", status)
	v.metrics.RecordDuration(ctx, "vouchers", "voucher_issue", time.Since(start), status)

	return voucher, err
}

// Redeem records metrics for redemption attempts, labeled by business outcome.
func (v *voucherUseCaseWithMetrics) Redeem(
	ctx context.Context,
	rawToken string,
) (*vouchersDomain.RedemptionResult, error) {
	start := time.Now()
	result, err := v.next.Redeem(ctx, rawToken)

	status := "error"
	if err == nil {
		status = string(result.Outcome)
	}

	v.metrics.RecordOperation(ctx, "vouchers", "voucher_redeem", status)
	v.metrics.RecordDuration(ctx, "vouchers", "voucher_redeem", time.Since(start), status)

	return result, err
}

// Get records metrics for voucher lookup operations.
func (v *voucherUseCaseWithMetrics) Get(
	ctx context.Context,
	rawToken string,
) (*vouchersDomain.Voucher, error) {
	start := time.Now()
	voucher, err := v.next.Get(ctx, rawToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vouchers", "voucher_get", status)
	v.metrics.RecordDuration(ctx, "vouchers", "voucher_get", time.Since(start), status)

	return voucher, err
}

// List records metrics for voucher listing operations.
func (v *voucherUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*vouchersDomain.Voucher, error) {
	start := time.Now()
	vouchers, err := v.next.List(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vouchers", "voucher_list", status)
	v.metrics.RecordDuration(ctx, "vouchers", "voucher_list", time.Since(start), status)

	return vouchers, err
}

// Count records metrics for voucher count operations.
func (v *voucherUseCaseWithMetrics) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := v.next.Count(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vouchers", "voucher_count", status)
	v.metrics.RecordDuration(ctx, "vouchers", "voucher_count", time.Since(start), status)

	return count, err
}
