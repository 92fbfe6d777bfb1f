package usecase

import (
	"context"
	"time"

	"github.com/allisson/vouchers/internal/database"
	apperrors "github.com/allisson/vouchers/internal/errors"
	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
	vouchersService "github.com/allisson/vouchers/internal/vouchers/service"
)

// issueMaxAttempts bounds the number of token generation retries on collision.
// With 48 bits of entropy a collision is already rare; repeated collisions
// indicate an operational problem rather than bad luck.
const issueMaxAttempts = 3

// voucherUseCase implements the VoucherUseCase interface.
type voucherUseCase struct {
	txManager      database.TxManager
	voucherRepo    VoucherRepository
	tokenGenerator vouchersService.TokenGenerator
}

// Issue creates a new voucher for the recipient with a freshly generated token.
//
// Uniqueness is enforced by the store's unique index, not the generator: a
// duplicate insert is retried with a new token up to issueMaxAttempts times.
// The voucher is durable once this method returns; delivery to the recipient
// is a separate concern and never rolls issuance back.
func (v *voucherUseCase) Issue(
	ctx context.Context,
	recipientIdentity string,
) (*vouchersDomain.Voucher, error) {
	for attempt := 0; attempt < issueMaxAttempts; attempt++ {
		token, err := v.tokenGenerator.Generate()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to generate voucher token")
		}

		voucher := &vouchersDomain.Voucher{
			RecipientIdentity: recipientIdentity,
			Token:             token,
			State:             vouchersDomain.StateUnused,
			CreatedAt:         time.Now().UTC(),
		}

		err = v.txManager.WithTx(ctx, func(txCtx context.Context) error {
			return v.voucherRepo.Create(txCtx, voucher)
		})
		if err != nil {
			if apperrors.Is(err, vouchersDomain.ErrDuplicateToken) {
				// Token collision, try again with a new token
				continue
			}
			return nil, err
		}

		return voucher, nil
	}

	return nil, vouchersDomain.ErrTokenGenerationExhausted
}

// Redeem attempts the exactly-once redemption of the presented token.
//
// The raw token is normalized first (trimmed and uppercased). A token that is
// blank after normalization cannot match any voucher and is resolved as
// invalid without touching the store.
func (v *voucherUseCase) Redeem(
	ctx context.Context,
	rawToken string,
) (*vouchersDomain.RedemptionResult, error) {
	token := vouchersDomain.NormalizeToken(rawToken)
	if token == "" {
		return &vouchersDomain.RedemptionResult{
			Outcome: vouchersDomain.OutcomeInvalidToken,
		}, nil
	}

	return v.voucherRepo.TryRedeem(ctx, token, time.Now().UTC())
}

// Get retrieves a voucher by its token without changing its state.
func (v *voucherUseCase) Get(
	ctx context.Context,
	rawToken string,
) (*vouchersDomain.Voucher, error) {
	token := vouchersDomain.NormalizeToken(rawToken)
	if token == "" {
		return nil, vouchersDomain.ErrVoucherNotFound
	}

	return v.voucherRepo.GetByToken(ctx, token)
}

// List retrieves vouchers ordered by newest first with pagination.
func (v *voucherUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*vouchersDomain.Voucher, error) {
	return v.voucherRepo.List(ctx, offset, limit)
}

// Count returns the total number of issued vouchers.
func (v *voucherUseCase) Count(ctx context.Context) (int64, error) {
	return v.voucherRepo.Count(ctx)
}

// NewVoucherUseCase creates a new voucher use case instance with the provided dependencies.
func NewVoucherUseCase(
	txManager database.TxManager,
	voucherRepo VoucherRepository,
	tokenGenerator vouchersService.TokenGenerator,
) VoucherUseCase {
	return &voucherUseCase{
		txManager:      txManager,
		voucherRepo:    voucherRepo,
		tokenGenerator: tokenGenerator,
	}
}
