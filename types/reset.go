package types

import "time"

// PasswordResetOTP is a single-use, time-boxed password reset code.
// Only the bcrypt hash of the code is stored. For a given user at most one
// row is active (used=false and unexpired) at any instant; issuing a new
// code invalidates the previous one.
type PasswordResetOTP struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	OTPHash   string    `json:"-" db:"otp_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	Attempts  int       `json:"attempts" db:"attempts"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
