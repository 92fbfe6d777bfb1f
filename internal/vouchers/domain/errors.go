package domain

import (
	"github.com/allisson/vouchers/internal/errors"
)

// Voucher-specific error definitions.
var (
	// ErrVoucherNotFound indicates no voucher carries the requested token.
	ErrVoucherNotFound = errors.Wrap(errors.ErrNotFound, "voucher not found")

	// ErrDuplicateToken indicates an insert collided with an existing token.
	ErrDuplicateToken = errors.Wrap(errors.ErrConflict, "duplicate voucher token")

	// ErrTokenGenerationExhausted indicates repeated token collisions during issuance.
	// This is an operational failure, not a normal business outcome.
	ErrTokenGenerationExhausted = errors.New("token generation attempts exhausted")
)
