// Package usecase defines the interfaces and implementations for voucher
// management use cases. Use cases orchestrate the token generator and the
// voucher repository to implement issuance and exactly-once redemption.
package usecase

import (
	"context"
	"time"

	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// VoucherRepository defines the interface for Voucher persistence operations.
type VoucherRepository interface {
	Create(ctx context.Context, voucher *vouchersDomain.Voucher) error
	GetByToken(ctx context.Context, token string) (*vouchersDomain.Voucher, error)
	// TryRedeem performs the atomic unused-to-used transition for the given
	// canonical token, stamping now as the redemption time when it wins.
	TryRedeem(ctx context.Context, token string, now time.Time) (*vouchersDomain.RedemptionResult, error)
	List(ctx context.Context, offset, limit int) ([]*vouchersDomain.Voucher, error)
	Count(ctx context.Context) (int64, error)
}

// VoucherUseCase defines the interface for voucher business logic.
type VoucherUseCase interface {
	// Issue creates a durable voucher with a fresh unique token for the
	// recipient. Token collisions are retried a bounded number of times.
	Issue(ctx context.Context, recipientIdentity string) (*vouchersDomain.Voucher, error)
	// Redeem normalizes the presented token and attempts the exactly-once
	// redemption. The returned result carries exactly one business outcome;
	// infrastructure failures surface as errors instead.
	Redeem(ctx context.Context, rawToken string) (*vouchersDomain.RedemptionResult, error)
	Get(ctx context.Context, rawToken string) (*vouchersDomain.Voucher, error)
	List(ctx context.Context, offset, limit int) ([]*vouchersDomain.Voucher, error)
	Count(ctx context.Context) (int64, error)
}
