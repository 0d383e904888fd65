package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskmate/apiserver/types"
)

// ResetRepository handles persistence for password reset codes.
type ResetRepository struct {
	db *sql.DB
}

func NewResetRepository(db *sql.DB) *ResetRepository {
	return &ResetRepository{db: db}
}

// Issue invalidates any unused code for the user and inserts a new one, in
// one transaction. Two concurrent requests for the same user cannot leave
// two simultaneously unused rows: the second insert either follows the
// first invalidation or trips the partial unique index.
func (r *ResetRepository) Issue(ctx context.Context, otp types.PasswordResetOTP) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const invalidate = `UPDATE password_reset_otps SET used = TRUE WHERE user_id = $1 AND NOT used`
	if _, err := tx.ExecContext(ctx, invalidate, otp.UserID); err != nil {
		return err
	}

	const insert = `
		INSERT INTO password_reset_otps (user_id, otp_hash, expires_at, used, attempts, created_at)
		VALUES ($1, $2, $3, FALSE, 0, $4)`
	if _, err := tx.ExecContext(ctx, insert, otp.UserID, otp.OTPHash, otp.ExpiresAt, time.Now()); err != nil {
		return translateError(err)
	}

	return tx.Commit()
}

// RedeemOutcome tells Redeem what to persist for the locked code.
// Err is returned to the caller after the writes commit; the writes happen
// regardless of Err, so an expired or exhausted code can be burned while
// the caller still reports a failure.
type RedeemOutcome struct {
	MarkUsed          bool
	IncrementAttempts bool
	// NewPasswordHash, when non-empty, replaces the owning user's password
	// hash in the same transaction as the code update.
	NewPasswordHash string
	Err             error
}

// Redeem locks the most recently created unused code for the user
// (FOR UPDATE) and applies the outcome decided by the caller. The row lock
// means two concurrent redemptions of the same code serialize: the second
// caller observes no unused row and gets ErrNotFound.
func (r *ResetRepository) Redeem(ctx context.Context, userID int, decide func(types.PasswordResetOTP) RedeemOutcome) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
		SELECT id, user_id, otp_hash, expires_at, used, attempts, created_at
		FROM password_reset_otps
		WHERE user_id = $1 AND NOT used
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`
	var otp types.PasswordResetOTP
	err = tx.QueryRowContext(ctx, query, userID).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.OTPHash,
		&otp.ExpiresAt,
		&otp.Used,
		&otp.Attempts,
		&otp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	outcome := decide(otp)

	if outcome.IncrementAttempts {
		const bump = `UPDATE password_reset_otps SET attempts = attempts + 1 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, bump, otp.ID); err != nil {
			return err
		}
	}
	if outcome.MarkUsed {
		const burn = `UPDATE password_reset_otps SET used = TRUE WHERE id = $1`
		if _, err := tx.ExecContext(ctx, burn, otp.ID); err != nil {
			return err
		}
	}
	if outcome.NewPasswordHash != "" {
		const update = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, update, outcome.NewPasswordHash, time.Now(), userID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return outcome.Err
}
