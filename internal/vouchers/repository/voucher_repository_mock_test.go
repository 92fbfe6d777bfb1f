package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// The mock-backed tests pin down the redemption branching without a database:
// which of the three outcomes is produced depends only on the affected row
// count and the follow-up read.

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func voucherRows(token, state string, usedAt *time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(
		[]string{"id", "recipient_identity", "token", "state", "created_at", "used_at"},
	).AddRow(int64(1), "guest@example.com", token, state, time.Now().UTC(), usedAt)
}

func TestPostgreSQLVoucherRepository_TryRedeem_Branches(t *testing.T) {
	ctx := context.Background()

	t.Run("affected row wins and reads back the voucher", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLVoucherRepository(db)

		usedAt := time.Now().UTC()
		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("A1B2C3D4E5F6").
			WillReturnRows(voucherRows("A1B2C3D4E5F6", "used", &usedAt))

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", usedAt)

		assert.NoError(t, err)
		assert.Equal(t, vouchersDomain.OutcomeRedeemed, result.Outcome)
		assert.Equal(t, "guest@example.com", result.RecipientIdentity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no affected row with existing voucher means already used", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLVoucherRepository(db)

		usedAt := time.Now().UTC()
		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("A1B2C3D4E5F6").
			WillReturnRows(voucherRows("A1B2C3D4E5F6", "used", &usedAt))

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", time.Now().UTC())

		assert.NoError(t, err)
		assert.Equal(t, vouchersDomain.OutcomeAlreadyUsed, result.Outcome)
		assert.Empty(t, result.RecipientIdentity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no affected row with missing voucher means invalid token", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLVoucherRepository(db)

		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "FFFFFFFFFFFF", "unused").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("FFFFFFFFFFFF").
			WillReturnError(sql.ErrNoRows)

		result, err := repo.TryRedeem(ctx, "FFFFFFFFFFFF", time.Now().UTC())

		assert.NoError(t, err)
		assert.Equal(t, vouchersDomain.OutcomeInvalidToken, result.Outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unused voucher appearing after a missed update is retried", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLVoucherRepository(db)

		// First cycle misses the update but reads an unused voucher: a fresh
		// voucher with this token landed between the two statements. The
		// second cycle wins.
		usedAt := time.Now().UTC()
		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("A1B2C3D4E5F6").
			WillReturnRows(voucherRows("A1B2C3D4E5F6", "unused", nil))
		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("A1B2C3D4E5F6").
			WillReturnRows(voucherRows("A1B2C3D4E5F6", "used", &usedAt))

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", usedAt)

		assert.NoError(t, err)
		assert.Equal(t, vouchersDomain.OutcomeRedeemed, result.Outcome)
		assert.Equal(t, "guest@example.com", result.RecipientIdentity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("persistently missed updates give up with an error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLVoucherRepository(db)

		for i := 0; i < tryRedeemMaxAttempts; i++ {
			mock.ExpectExec("UPDATE vouchers").
				WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
				WithArgs("A1B2C3D4E5F6").
				WillReturnRows(voucherRows("A1B2C3D4E5F6", "unused", nil))
		}

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", time.Now().UTC())

		assert.Nil(t, result)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update failure surfaces as error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLVoucherRepository(db)

		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnError(errors.New("connection refused"))

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", time.Now().UTC())

		assert.Nil(t, result)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLVoucherRepository_TryRedeem_Branches(t *testing.T) {
	ctx := context.Background()

	t.Run("unused voucher appearing after a missed update is retried", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLVoucherRepository(db)

		usedAt := time.Now().UTC()
		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("A1B2C3D4E5F6").
			WillReturnRows(voucherRows("A1B2C3D4E5F6", "unused", nil))
		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("A1B2C3D4E5F6").
			WillReturnRows(voucherRows("A1B2C3D4E5F6", "used", &usedAt))

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", usedAt)

		assert.NoError(t, err)
		assert.Equal(t, vouchersDomain.OutcomeRedeemed, result.Outcome)
		assert.Equal(t, "guest@example.com", result.RecipientIdentity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no affected row with used voucher means already used", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLVoucherRepository(db)

		usedAt := time.Now().UTC()
		mock.ExpectExec("UPDATE vouchers").
			WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
			WithArgs("A1B2C3D4E5F6").
			WillReturnRows(voucherRows("A1B2C3D4E5F6", "used", &usedAt))

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", time.Now().UTC())

		assert.NoError(t, err)
		assert.Equal(t, vouchersDomain.OutcomeAlreadyUsed, result.Outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("persistently missed updates give up with an error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLVoucherRepository(db)

		for i := 0; i < tryRedeemMaxAttempts; i++ {
			mock.ExpectExec("UPDATE vouchers").
				WithArgs("used", sqlmock.AnyArg(), "A1B2C3D4E5F6", "unused").
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery("SELECT id, recipient_identity, token, state, created_at, used_at").
				WithArgs("A1B2C3D4E5F6").
				WillReturnRows(voucherRows("A1B2C3D4E5F6", "unused", nil))
		}

		result, err := repo.TryRedeem(ctx, "A1B2C3D4E5F6", time.Now().UTC())

		assert.Nil(t, result)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLVoucherRepository_Create_UniqueViolationMapping(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLVoucherRepository(db)

	mock.ExpectQuery("INSERT INTO vouchers").
		WillReturnError(
			errors.New(`pq: duplicate key value violates unique constraint "idx_vouchers_token"`),
		)

	err := repo.Create(context.Background(), newUnusedVoucher("guest@example.com", "A1B2C3D4E5F6"))

	assert.ErrorIs(t, err, vouchersDomain.ErrDuplicateToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLVoucherRepository_Create_DuplicateEntryMapping(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLVoucherRepository(db)

	mock.ExpectExec("INSERT INTO vouchers").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), newUnusedVoucher("guest@example.com", "A1B2C3D4E5F6"))

	assert.ErrorIs(t, err, vouchersDomain.ErrDuplicateToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsPostgreSQLUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{
			"duplicate key error",
			errors.New(`pq: duplicate key value violates unique constraint "idx_vouchers_token"`),
			true,
		},
		{"unique constraint error", errors.New("violates unique constraint"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPostgreSQLUniqueViolation(tt.err))
		})
	}
}
