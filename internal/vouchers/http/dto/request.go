// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/vouchers/internal/validation"
)

// IssueVoucherRequest contains the parameters for issuing a new voucher.
type IssueVoucherRequest struct {
	// Recipient is the identity the voucher is issued to. When Deliver is set
	// it must be a valid email address, since it doubles as the delivery target.
	Recipient string `json:"recipient"`
	// Deliver requests that the voucher be emailed to the recipient after issuance.
	Deliver bool `json:"deliver"`
}

// Validate checks if the issue voucher request is valid.
func (r *IssueVoucherRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Recipient,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(3, 254),
			validation.When(r.Deliver, customValidation.Email),
		),
	)
}

// RedeemVoucherRequest contains the token presented for redemption.
type RedeemVoucherRequest struct {
	Token string `json:"token"`
}

// Validate checks if the redeem voucher request is valid.
// Normalization happens downstream; here only structurally empty input is rejected.
func (r *RedeemVoucherRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
	)
}
