// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// Delivery status values reported in issue responses.
const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

// VoucherResponse represents a voucher in API responses.
type VoucherResponse struct {
	ID        int64      `json:"id"`
	Recipient string     `json:"recipient"`
	Token     string     `json:"token"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// IssueVoucherResponse represents the result of issuing a voucher.
// Delivery reflects the email hand-off only; the voucher is durable regardless.
type IssueVoucherResponse struct {
	Voucher  VoucherResponse `json:"voucher"`
	Delivery string          `json:"delivery"`
}

// RedemptionResponse represents the outcome of a redemption attempt.
// Recipient and UsedAt are present only when the status is "redeemed".
type RedemptionResponse struct {
	Status    string     `json:"status"`
	Recipient string     `json:"recipient,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// ListVouchersResponse represents a paginated list of vouchers in API responses.
type ListVouchersResponse struct {
	Data  []VoucherResponse `json:"data"`
	Total int64             `json:"total"`
}

// MapVoucherToResponse converts a domain voucher to an API response.
func MapVoucherToResponse(voucher *vouchersDomain.Voucher) VoucherResponse {
	return VoucherResponse{
		ID:        voucher.ID,
		Recipient: voucher.RecipientIdentity,
		Token:     voucher.Token,
		State:     string(voucher.State),
		CreatedAt: voucher.CreatedAt,
		UsedAt:    voucher.UsedAt,
	}
}

// MapRedemptionResultToResponse converts a domain redemption result to an API response.
func MapRedemptionResultToResponse(result *vouchersDomain.RedemptionResult) RedemptionResponse {
	return RedemptionResponse{
		Status:    string(result.Outcome),
		Recipient: result.RecipientIdentity,
		UsedAt:    result.UsedAt,
	}
}

// MapVouchersToListResponse converts a slice of domain vouchers to a list response.
func MapVouchersToListResponse(vouchers []*vouchersDomain.Voucher, total int64) ListVouchersResponse {
	data := make([]VoucherResponse, 0, len(vouchers))
	for _, voucher := range vouchers {
		data = append(data, MapVoucherToResponse(voucher))
	}

	return ListVouchersResponse{
		Data:  data,
		Total: total,
	}
}
