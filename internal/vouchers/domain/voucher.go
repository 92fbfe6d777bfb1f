// Package domain defines the core domain models and types for single-use vouchers.
// A voucher binds a unique redemption token to a recipient and moves through a
// one-way lifecycle: it is issued unused and can be marked used exactly once.
package domain

import (
	"strings"
	"time"
)

// State represents the lifecycle state of a voucher.
type State string

// Voucher lifecycle states. The transition is monotonic: unused -> used.
const (
	StateUnused State = "unused"
	StateUsed   State = "used"
)

// TokenLength is the number of characters in a redemption token.
// Tokens are 6 random bytes rendered as 12 uppercase hex characters.
const TokenLength = 12

// Voucher represents a single-use redemption voucher.
type Voucher struct {
	// ID is the database-assigned surrogate identifier.
	ID int64
	// RecipientIdentity is the opaque identity the voucher was issued to (e.g., an email address).
	RecipientIdentity string
	// Token is the unique uppercase hex redemption token carried by the QR code.
	Token string
	// State is the current lifecycle state (unused or used).
	State State
	// CreatedAt is the UTC timestamp when the voucher was issued.
	CreatedAt time.Time
	// UsedAt is the UTC timestamp of redemption; nil while the voucher is unused.
	UsedAt *time.Time
}

// IsUsed reports whether the voucher has been redeemed.
func (v *Voucher) IsUsed() bool {
	return v.State == StateUsed
}

// RedemptionOutcome classifies the business result of a redemption attempt.
type RedemptionOutcome string

// Redemption outcomes. Exactly one is produced per attempt.
const (
	// OutcomeRedeemed means this attempt transitioned the voucher from unused to used.
	OutcomeRedeemed RedemptionOutcome = "redeemed"
	// OutcomeAlreadyUsed means the voucher exists but was already redeemed.
	OutcomeAlreadyUsed RedemptionOutcome = "already_used"
	// OutcomeInvalidToken means no voucher carries the presented token.
	OutcomeInvalidToken RedemptionOutcome = "invalid_token"
)

// RedemptionResult is the outcome of a redemption attempt.
// RecipientIdentity and UsedAt are populated only when the outcome is OutcomeRedeemed.
type RedemptionResult struct {
	Outcome           RedemptionOutcome
	RecipientIdentity string
	UsedAt            *time.Time
}

// NormalizeToken canonicalizes a scanned token: surrounding whitespace is
// stripped and the result is uppercased. Returns an empty string for input
// that is blank after trimming.
func NormalizeToken(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
