package services

import (
	"context"
	"errors"

	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/internal/token"
	"github.com/taskmate/apiserver/types"
)

// IdentityResolver turns a bearer token into the live user record for the
// current request.
type IdentityResolver struct {
	users  UserRepository
	tokens *token.Manager
}

func NewIdentityResolver(users UserRepository, tokens *token.Manager) *IdentityResolver {
	return &IdentityResolver{
		users:  users,
		tokens: tokens,
	}
}

// Resolve verifies the token and then re-fetches the user by the token's
// subject email. The embedded uid/role claims are never trusted as current
// truth, so role or name edits made after issuance take effect on the next
// request without a new login. Fails closed with ErrUnauthenticated.
func (r *IdentityResolver) Resolve(ctx context.Context, bearer string) (types.User, error) {
	claims, err := r.tokens.Verify(bearer)
	if err != nil {
		return types.User{}, ErrUnauthenticated
	}

	user, err := r.users.GetByEmail(ctx, NormalizeEmail(claims.Subject))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthenticated
		}
		return types.User{}, err
	}
	return user, nil
}
