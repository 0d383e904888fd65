package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/internal/token"
	"github.com/taskmate/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// AuthService registers and authenticates users and issues their bearer
// tokens.
type AuthService struct {
	users      UserRepository
	tokens     *token.Manager
	bcryptCost int
	log        zerolog.Logger
}

func NewAuthService(users UserRepository, tokens *token.Manager, bcryptCost int, log zerolog.Logger) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Register creates an account and returns it with a signed token. Emails
// are normalized to lowercase before any comparison or storage. The store
// assigns the global role: the first account ever created becomes admin.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (types.User, string, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return types.User{}, "", err
	}
	if taken {
		return types.User{}, "", ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return types.User{}, "", err
	}

	user, err := s.users.Create(ctx, types.User{
		Name:         name,
		Email:        email,
		Initials:     makeInitials(name),
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, "", ErrDuplicateAccount
		}
		return types.User{}, "", err
	}

	s.log.Info().Int("user_id", user.ID).Str("role", user.Role).Msg("user registered")

	signed, err := s.tokens.Issue(user.Email, user.ID, user.Role)
	if err != nil {
		return types.User{}, "", err
	}
	return user, signed, nil
}

// Login authenticates an email/password pair. An unknown email and a wrong
// password produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, string, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, "", ErrInvalidCredentials
		}
		return types.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user.Email, user.ID, user.Role)
	if err != nil {
		return types.User{}, "", err
	}
	return user, signed, nil
}

// NormalizeEmail lowercases and trims an email address. Every lookup and
// every stored value goes through this, so an email identifies at most one
// account regardless of the caller's casing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// makeInitials derives display initials from a name: first letter of the
// first whitespace-delimited token plus first letter of the last (when the
// name has more than one token), uppercased, at most two characters.
func makeInitials(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "U"
	}
	initials := firstLetter(parts[0])
	if len(parts) > 1 {
		initials += firstLetter(parts[len(parts)-1])
	}
	runes := []rune(initials)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}

func firstLetter(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}
	return strings.ToUpper(string(runes[0]))
}
