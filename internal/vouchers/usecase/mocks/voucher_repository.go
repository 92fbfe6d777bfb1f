package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// MockVoucherRepository is a mock implementation of VoucherRepository for testing.
type MockVoucherRepository struct {
	mock.Mock
}

// Create mocks the Create method of VoucherRepository.
func (m *MockVoucherRepository) Create(ctx context.Context, voucher *vouchersDomain.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

// GetByToken mocks the GetByToken method of VoucherRepository.
func (m *MockVoucherRepository) GetByToken(
	ctx context.Context,
	token string,
) (*vouchersDomain.Voucher, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vouchersDomain.Voucher), args.Error(1)
}

// TryRedeem mocks the TryRedeem method of VoucherRepository.
func (m *MockVoucherRepository) TryRedeem(
	ctx context.Context,
	token string,
	now time.Time,
) (*vouchersDomain.RedemptionResult, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vouchersDomain.RedemptionResult), args.Error(1)
}

// List mocks the List method of VoucherRepository.
func (m *MockVoucherRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*vouchersDomain.Voucher, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vouchersDomain.Voucher), args.Error(1)
}

// Count mocks the Count method of VoucherRepository.
func (m *MockVoucherRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenGenerator is a mock implementation of TokenGenerator for testing.
type MockTokenGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method of TokenGenerator.
func (m *MockTokenGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// Validate mocks the Validate method of TokenGenerator.
func (m *MockTokenGenerator) Validate(token string) error {
	args := m.Called(token)
	return args.Error(0)
}
