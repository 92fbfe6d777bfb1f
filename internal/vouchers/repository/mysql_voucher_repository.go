package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/vouchers/internal/database"
	apperrors "github.com/allisson/vouchers/internal/errors"
	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// MySQLVoucherRepository implements Voucher persistence for MySQL databases.
type MySQLVoucherRepository struct {
	db *sql.DB
}

// Create inserts a new voucher into the MySQL database and assigns its ID.
// A unique-index collision on the token column is reported as ErrDuplicateToken.
func (m *MySQLVoucherRepository) Create(ctx context.Context, voucher *vouchersDomain.Voucher) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO vouchers (recipient_identity, token, state, created_at)
			  VALUES (?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		voucher.RecipientIdentity,
		voucher.Token,
		voucher.State,
		voucher.CreatedAt,
	)
	if err != nil {
		// Check for duplicate entry error (MySQL error number 1062)
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return vouchersDomain.ErrDuplicateToken
		}
		return apperrors.Wrap(err, "failed to create voucher")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to get voucher id")
	}
	voucher.ID = id

	return nil
}

// GetByToken retrieves a voucher by its canonical token.
func (m *MySQLVoucherRepository) GetByToken(
	ctx context.Context,
	token string,
) (*vouchersDomain.Voucher, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, recipient_identity, token, state, created_at, used_at
			  FROM vouchers
			  WHERE token = ?`

	var voucher vouchersDomain.Voucher
	err := querier.QueryRowContext(ctx, query, token).Scan(
		&voucher.ID,
		&voucher.RecipientIdentity,
		&voucher.Token,
		&voucher.State,
		&voucher.CreatedAt,
		&voucher.UsedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vouchersDomain.ErrVoucherNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get voucher by token")
	}

	return &voucher, nil
}

// TryRedeem atomically transitions a voucher from unused to used.
//
// The conditional UPDATE is the linearization point: the database applies it
// under row-level locking, so when multiple attempts race on the same token
// exactly one observes an affected row. Zero affected rows means the token is
// either unknown or already used; a follow-up read distinguishes the two.
func (m *MySQLVoucherRepository) TryRedeem(
	ctx context.Context,
	token string,
	now time.Time,
) (*vouchersDomain.RedemptionResult, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE vouchers
			  SET state = ?, used_at = ?
			  WHERE token = ? AND state = ?`

	for attempt := 0; attempt < tryRedeemMaxAttempts; attempt++ {
		result, err := querier.ExecContext(
			ctx,
			query,
			vouchersDomain.StateUsed,
			now,
			token,
			vouchersDomain.StateUnused,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to redeem voucher")
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to get rows affected")
		}

		if rowsAffected == 1 {
			// This attempt won; read back the voucher for the recipient identity.
			voucher, err := m.GetByToken(ctx, token)
			if err != nil {
				return nil, apperrors.Wrap(err, "failed to load redeemed voucher")
			}
			return &vouchersDomain.RedemptionResult{
				Outcome:           vouchersDomain.OutcomeRedeemed,
				RecipientIdentity: voucher.RecipientIdentity,
				UsedAt:            voucher.UsedAt,
			}, nil
		}

		// No row changed: the token is unknown or the voucher was already used.
		voucher, err := m.GetByToken(ctx, token)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return &vouchersDomain.RedemptionResult{
					Outcome: vouchersDomain.OutcomeInvalidToken,
				}, nil
			}
			return nil, apperrors.Wrap(err, "failed to check voucher after redemption attempt")
		}

		if voucher.IsUsed() {
			return &vouchersDomain.RedemptionResult{
				Outcome: vouchersDomain.OutcomeAlreadyUsed,
			}, nil
		}

		// The voucher is unused but the update missed it: it was inserted
		// between the update and the read. Run the cycle again.
	}

	return nil, apperrors.New("voucher state kept changing during redemption")
}

// List retrieves vouchers ordered by newest first with pagination.
func (m *MySQLVoucherRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*vouchersDomain.Voucher, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, recipient_identity, token, state, created_at, used_at
			  FROM vouchers
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list vouchers")
	}
	defer func() { _ = rows.Close() }()

	var vouchers []*vouchersDomain.Voucher
	for rows.Next() {
		var voucher vouchersDomain.Voucher
		err := rows.Scan(
			&voucher.ID,
			&voucher.RecipientIdentity,
			&voucher.Token,
			&voucher.State,
			&voucher.CreatedAt,
			&voucher.UsedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan voucher")
		}
		vouchers = append(vouchers, &voucher)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate vouchers")
	}

	return vouchers, nil
}

// Count returns the total number of vouchers.
func (m *MySQLVoucherRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM vouchers`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count vouchers")
	}

	return count, nil
}

// NewMySQLVoucherRepository creates a new MySQL Voucher repository instance.
func NewMySQLVoucherRepository(db *sql.DB) *MySQLVoucherRepository {
	return &MySQLVoucherRepository{db: db}
}
