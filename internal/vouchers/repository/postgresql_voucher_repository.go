// Package repository implements data persistence for single-use vouchers.
// Repositories support both PostgreSQL and MySQL. The redemption path relies on
// a single conditional UPDATE so that exactly one concurrent attempt can move a
// voucher from unused to used.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/allisson/vouchers/internal/database"
	apperrors "github.com/allisson/vouchers/internal/errors"
	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// tryRedeemMaxAttempts bounds the update-then-read cycles in TryRedeem. More
// than one cycle is needed only when a voucher with the same token is inserted
// between the conditional update and the follow-up read.
const tryRedeemMaxAttempts = 3

// PostgreSQLVoucherRepository implements Voucher persistence for PostgreSQL databases.
type PostgreSQLVoucherRepository struct {
	db *sql.DB
}

// Create inserts a new voucher into the PostgreSQL database and assigns its ID.
// A unique-index collision on the token column is reported as ErrDuplicateToken.
func (p *PostgreSQLVoucherRepository) Create(ctx context.Context, voucher *vouchersDomain.Voucher) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vouchers (recipient_identity, token, state, created_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		voucher.RecipientIdentity,
		voucher.Token,
		voucher.State,
		voucher.CreatedAt,
	).Scan(&voucher.ID)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return vouchersDomain.ErrDuplicateToken
		}
		return apperrors.Wrap(err, "failed to create voucher")
	}
	return nil
}

// GetByToken retrieves a voucher by its canonical token.
func (p *PostgreSQLVoucherRepository) GetByToken(
	ctx context.Context,
	token string,
) (*vouchersDomain.Voucher, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, recipient_identity, token, state, created_at, used_at
			  FROM vouchers
			  WHERE token = $1`

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
func (p *PostgreSQLVoucherRepository) TryRedeem(
	ctx context.Context,
	token string,
	now time.Time,
) (*vouchersDomain.RedemptionResult, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vouchers
			  SET state = $1, used_at = $2
			  WHERE token = $3 AND state = $4`

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
			voucher, err := p.GetByToken(ctx, token)
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
		voucher, err := p.GetByToken(ctx, token)
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
func (p *PostgreSQLVoucherRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*vouchersDomain.Voucher, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, recipient_identity, token, state, created_at, used_at
			  FROM vouchers
			  ORDER BY id DESC
			  OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
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
func (p *PostgreSQLVoucherRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM vouchers`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count vouchers")
	}

	return count, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLVoucherRepository creates a new PostgreSQL Voucher repository instance.
func NewPostgreSQLVoucherRepository(db *sql.DB) *PostgreSQLVoucherRepository {
	return &PostgreSQLVoucherRepository{db: db}
}
