package services

import "errors"

// Expected domain outcomes. Handlers translate these to HTTP statuses;
// anything not in this list is an unexpected storage failure and is
// reported generically, never with internal detail.
var (
	// ErrDuplicateAccount is returned when registering an email that
	// already has an account.
	ErrDuplicateAccount = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the password does not match; callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a bearer token is missing,
	// malformed, expired, or its user no longer exists.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when an authenticated user lacks the role,
	// membership, or ownership an operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced team, project, task, user,
	// or file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMember is returned when adding a user to a team they
	// already belong to.
	ErrAlreadyMember = errors.New("user already in team")

	// ErrAssigneeNotMember is returned when a task is assigned to a user
	// who is not a member of the task's team.
	ErrAssigneeNotMember = errors.New("assignee is not a team member")
)

// Password reset failures. Each is a distinct expected outcome of
// ResetPassword; RequestOTP never reports account existence.
var (
	ErrResetUnknownAccount   = errors.New("reset: account not found")
	ErrResetNoActiveCode     = errors.New("reset: no active code")
	ErrResetAlreadyUsed      = errors.New("reset: code already used")
	ErrResetExpired          = errors.New("reset: code expired")
	ErrResetIncorrectCode    = errors.New("reset: incorrect code")
	ErrResetAttemptsExceeded = errors.New("reset: attempts exceeded")
)
