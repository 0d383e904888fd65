package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmate/apiserver/internal/mailer"
	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/types"
)

// otpTTL is how long a reset code stays redeemable.
const otpTTL = 10 * time.Minute

// otpDummyHash is a bcrypt hash of a value nobody knows. RequestOTP for an
// unknown email verifies the submitted address against it so both branches
// pay the same hashing cost and stay indistinguishable to the caller.
var otpDummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// ResetRepository defines persistence operations for reset codes.
type ResetRepository interface {
	Issue(ctx context.Context, otp types.PasswordResetOTP) error
	Redeem(ctx context.Context, userID int, decide func(types.PasswordResetOTP) store.RedeemOutcome) error
}

// ResetService runs the OTP password-reset flow: issue a hashed, single-use,
// time-boxed code; deliver it by mail; redeem it exactly once.
type ResetService struct {
	users       UserRepository
	resets      ResetRepository
	mail        mailer.Sender
	bcryptCost  int
	maxAttempts int
	log         zerolog.Logger
}

func NewResetService(users UserRepository, resets ResetRepository, mail mailer.Sender, bcryptCost, maxAttempts int, log zerolog.Logger) *ResetService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &ResetService{
		users:       users,
		resets:      resets,
		mail:        mail,
		bcryptCost:  bcryptCost,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// RequestOTP issues a reset code for the account, if one exists. The return
// value is identical whether or not the email is registered, so callers
// cannot probe for accounts here. For a known account any previous
// unused code is invalidated in the same transaction that stores the new
// one, so at most one code is active per user.
func (s *ResetService) RequestOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable work so the unknown-email path is not
			// observably faster than the found path.
			_ = bcrypt.CompareHashAndPassword(otpDummyHash, []byte(email))
			return nil
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.resets.Issue(ctx, types.PasswordResetOTP{
		UserID:    user.ID,
		OTPHash:   string(hash),
		ExpiresAt: time.Now().Add(otpTTL),
	}); err != nil {
		return err
	}

	// The code is committed; delivery is handed off after the transaction
	// and a failure here does not unwind it.
	msg := resetMessage(user, code)
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Int("user_id", user.ID).Msg("reset mail handoff failed")
	}
	return nil
}

// ResetPassword redeems a code and sets the new password. The whole
// decision runs under a row lock on the code (see ResetRepository.Redeem),
// so concurrent redemptions of the same code produce exactly one success.
// A wrong code does not consume the token until the attempt budget runs
// out; an expired code is burned on sight.
func (s *ResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrResetUnknownAccount
		}
		return err
	}

	err = s.resets.Redeem(ctx, user.ID, func(otp types.PasswordResetOTP) store.RedeemOutcome {
		if otp.Used {
			// Unreachable given Redeem only selects unused rows; kept so a
			// stale row can never pass.
			return store.RedeemOutcome{Err: ErrResetAlreadyUsed}
		}
		if otp.ExpiresAt.Before(time.Now()) {
			return store.RedeemOutcome{MarkUsed: true, Err: ErrResetExpired}
		}
		if bcrypt.CompareHashAndPassword([]byte(otp.OTPHash), []byte(code)) != nil {
			if otp.Attempts+1 >= s.maxAttempts {
				return store.RedeemOutcome{
					MarkUsed:          true,
					IncrementAttempts: true,
					Err:               ErrResetAttemptsExceeded,
				}
			}
			return store.RedeemOutcome{IncrementAttempts: true, Err: ErrResetIncorrectCode}
		}

		hash, hashErr := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
		if hashErr != nil {
			return store.RedeemOutcome{Err: hashErr}
		}
		return store.RedeemOutcome{MarkUsed: true, NewPasswordHash: string(hash)}
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrResetNoActiveCode
		}
		return err
	}

	s.log.Info().Int("user_id", user.ID).Msg("password reset")
	return nil
}

// generateOTP draws a 6-digit code from crypto/rand, leading zeros kept.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func resetMessage(user types.User, code string) mailer.Message {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Here is the one-time code to reset your TaskMate password:\n\n"+
			"    %s\n\n"+
			"The code is valid for %d minutes. If you did not request a "+
			"password reset, you can ignore this email.\n\n"+
			"- TaskMate",
		user.Name, code, int(otpTTL.Minutes()),
	)
	return mailer.Message{
		To:      user.Email,
		Subject: "TaskMate - password reset code",
		Body:    body,
	}
}
