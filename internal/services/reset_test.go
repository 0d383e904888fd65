package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmate/apiserver/types"
)

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

type resetFixture struct {
	users  *fakeUserRepo
	resets *fakeResetRepo
	mail   *fakeMailer
	svc    *ResetService
	user   types.User
}

func newResetFixture(t *testing.T, maxAttempts int) *resetFixture {
	t.Helper()

	users := newFakeUserRepo()
	resets := newFakeResetRepo(users)
	mail := &fakeMailer{}
	svc := NewResetService(users, resets, mail, bcrypt.MinCost, maxAttempts, zerolog.Nop())

	auth := newTestAuthService(users)
	user, _, err := auth.Register(context.Background(), "Alice Adams", "alice@example.com", "oldpassword")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	return &resetFixture{users: users, resets: resets, mail: mail, svc: svc, user: user}
}

// lastCode pulls the most recently mailed 6-digit code.
func (f *resetFixture) lastCode(t *testing.T) string {
	t.Helper()
	sent := f.mail.messages()
	if len(sent) == 0 {
		t.Fatal("no mail sent")
	}
	code := otpPattern.FindString(sent[len(sent)-1].Body)
	if code == "" {
		t.Fatalf("no 6-digit code in mail body: %q", sent[len(sent)-1].Body)
	}
	return code
}

func TestRequestOTPUnknownEmailIsSilent(t *testing.T) {
	f := newResetFixture(t, 5)

	if err := f.svc.RequestOTP(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(f.mail.messages()) != 0 {
		t.Fatal("no mail may be sent for an unknown email")
	}
	if f.resets.activeCount(f.user.ID) != 0 {
		t.Fatal("no code may be issued for an unknown email")
	}
}

func TestRequestAndResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t, 5)

	if err := f.svc.RequestOTP(ctx, "ALICE@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if f.resets.activeCount(f.user.ID) != 1 {
		t.Fatalf("active codes = %d, want 1", f.resets.activeCount(f.user.ID))
	}

	code := f.lastCode(t)
	if err := f.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	updated, err := f.users.GetByID(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpassword")) != nil {
		t.Fatal("password hash was not updated to the new password")
	}
}

func TestResetCodeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t, 5)

	if err := f.svc.RequestOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := f.lastCode(t)

	if err := f.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword"); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	err := f.svc.ResetPassword(ctx, "alice@example.com", code, "another")
	if !errors.Is(err, ErrResetNoActiveCode) {
		t.Fatalf("replay: expected ErrResetNoActiveCode, got %v", err)
	}
}

func TestReissueInvalidatesPriorCode(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t, 5)

	if err := f.svc.RequestOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := f.lastCode(t)

	if err := f.svc.RequestOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	second := f.lastCode(t)

	if f.resets.activeCount(f.user.ID) != 1 {
		t.Fatalf("active codes = %d, want 1", f.resets.activeCount(f.user.ID))
	}

	if first != second {
		err := f.svc.ResetPassword(ctx, "alice@example.com", first, "newpassword")
		if !errors.Is(err, ErrResetIncorrectCode) {
			t.Fatalf("old code: expected ErrResetIncorrectCode, got %v", err)
		}
	}
	if err := f.svc.ResetPassword(ctx, "alice@example.com", second, "newpassword"); err != nil {
		t.Fatalf("latest code must redeem: %v", err)
	}
}

func TestExpiredCodeIsBurned(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t, 5)

	if err := f.svc.RequestOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := f.lastCode(t)
	f.resets.expireActive(f.user.ID)

	err := f.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword")
	if !errors.Is(err, ErrResetExpired) {
		t.Fatalf("expected ErrResetExpired, got %v", err)
	}

	// The expired code was consumed on sight, so the retry sees no code.
	err = f.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword")
	if !errors.Is(err, ErrResetNoActiveCode) {
		t.Fatalf("expected ErrResetNoActiveCode after burn, got %v", err)
	}
}

func TestWrongCodeAttemptBudget(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t, 3)

	if err := f.svc.RequestOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := f.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 0; i < 2; i++ {
		err := f.svc.ResetPassword(ctx, "alice@example.com", wrong, "newpassword")
		if !errors.Is(err, ErrResetIncorrectCode) {
			t.Fatalf("attempt %d: expected ErrResetIncorrectCode, got %v", i+1, err)
		}
	}

	// The third miss exhausts the budget and consumes the code.
	err := f.svc.ResetPassword(ctx, "alice@example.com", wrong, "newpassword")
	if !errors.Is(err, ErrResetAttemptsExceeded) {
		t.Fatalf("expected ErrResetAttemptsExceeded, got %v", err)
	}
	err = f.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword")
	if !errors.Is(err, ErrResetNoActiveCode) {
		t.Fatalf("expected ErrResetNoActiveCode after exhaustion, got %v", err)
	}
}

func TestResetUnknownAccount(t *testing.T) {
	f := newResetFixture(t, 5)

	err := f.svc.ResetPassword(context.Background(), "nobody@example.com", "123456", "newpassword")
	if !errors.Is(err, ErrResetUnknownAccount) {
		t.Fatalf("expected ErrResetUnknownAccount, got %v", err)
	}
}
