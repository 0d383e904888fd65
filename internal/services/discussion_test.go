package services

import (
	"context"
	"errors"
	"testing"

	"github.com/taskmate/apiserver/types"
)

func TestDiscussionMembersOnly(t *testing.T) {
	ctx := context.Background()

	teams := newFakeTeamRepo()
	svc := NewDiscussionService(newFakeMessageRepo(), NewPermissionService(teams))

	member := types.User{ID: 1, Role: types.RoleMember}
	outsider := types.User{ID: 2, Role: types.RoleMember}

	team, err := teams.Create(ctx, types.Team{Name: "Platform", CreatedBy: member.ID})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	posted, err := svc.Post(ctx, member, team.ID, "standup at ten")
	if err != nil {
		t.Fatalf("member post: %v", err)
	}
	if posted.UserID != member.ID {
		t.Fatalf("message user = %d, want %d", posted.UserID, member.ID)
	}

	if _, err := svc.Post(ctx, outsider, team.ID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider post: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ListByTeam(ctx, outsider, team.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider list: expected ErrForbidden, got %v", err)
	}

	messages, err := svc.ListByTeam(ctx, member, team.ID)
	if err != nil {
		t.Fatalf("member list: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "standup at ten" {
		t.Fatalf("messages = %+v, want the one posted", messages)
	}
}
