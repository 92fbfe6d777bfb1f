// Package mocks provides mock implementations for testing voucher use cases and handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// MockVoucherUseCase is a mock implementation of VoucherUseCase for testing.
type MockVoucherUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of VoucherUseCase.
func (m *MockVoucherUseCase) Issue(
	ctx context.Context,
	recipientIdentity string,
) (*vouchersDomain.Voucher, error) {
	args := m.Called(ctx, recipientIdentity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vouchersDomain.Voucher), args.Error(1)
}

// Redeem mocks the Redeem method of VoucherUseCase.
func (m *MockVoucherUseCase) Redeem(
	ctx context.Context,
	rawToken string,
) (*vouchersDomain.RedemptionResult, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vouchersDomain.RedemptionResult), args.Error(1)
}

// Get mocks the Get method of VoucherUseCase.
func (m *MockVoucherUseCase) Get(
	ctx context.Context,
	rawToken string,
) (*vouchersDomain.Voucher, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vouchersDomain.Voucher), args.Error(1)
}

// List mocks the List method of VoucherUseCase.
func (m *MockVoucherUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*vouchersDomain.Voucher, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vouchersDomain.Voucher), args.Error(1)
}

// Count mocks the Count method of VoucherUseCase.
func (m *MockVoucherUseCase) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
