package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmate/apiserver/internal/token"
	"github.com/taskmate/apiserver/types"
)

func TestResolveReturnsLiveUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	tokens := token.NewManager("test-secret", time.Hour)
	auth := NewAuthService(users, tokens, bcrypt.MinCost, zerolog.Nop())
	resolver := NewIdentityResolver(users, tokens)

	// Seed an admin so the subject under test registers as a member.
	if _, _, err := auth.Register(ctx, "Root", "root@example.com", "password"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	user, bearer, err := auth.Register(ctx, "Alice", "alice@example.com", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resolved, err := resolver.Resolve(ctx, bearer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != user.ID || resolved.Role != types.RoleMember {
		t.Fatalf("resolved %+v, want user %d with member role", resolved, user.ID)
	}

	// A role change lands on the next request, without a new token.
	users.setRole(user.ID, types.RoleAdmin)
	resolved, err = resolver.Resolve(ctx, bearer)
	if err != nil {
		t.Fatalf("resolve after role change: %v", err)
	}
	if resolved.Role != types.RoleAdmin {
		t.Fatalf("resolved role = %q, want admin", resolved.Role)
	}
}

func TestResolveVanishedUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	tokens := token.NewManager("test-secret", time.Hour)
	auth := NewAuthService(users, tokens, bcrypt.MinCost, zerolog.Nop())
	resolver := NewIdentityResolver(users, tokens)

	user, bearer, err := auth.Register(ctx, "Alice", "alice@example.com", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	users.delete(user.ID)
	if _, err := resolver.Resolve(ctx, bearer); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for deleted user, got %v", err)
	}
}

func TestResolveRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	tokens := token.NewManager("test-secret", time.Hour)
	resolver := NewIdentityResolver(users, tokens)

	for _, bearer := range []string{"", "garbage", "a.b.c"} {
		if _, err := resolver.Resolve(ctx, bearer); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", bearer, err)
		}
	}

	// Valid shape, wrong key.
	foreign, err := token.NewManager("other-secret", time.Hour).Issue("alice@example.com", 1, "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := resolver.Resolve(ctx, foreign); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("foreign token: expected ErrUnauthenticated, got %v", err)
	}
}
