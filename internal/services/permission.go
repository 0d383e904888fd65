package services

import (
	"context"
	"errors"

	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/types"
)

// MembershipRepository is the narrow membership lookup the permission
// checks run on.
type MembershipRepository interface {
	GetMember(ctx context.Context, teamID, userID int) (types.TeamMember, error)
}

// PermissionService answers "may this user perform this operation on this
// resource". It holds no state beyond the membership lookup; every decision
// is a pure function of the supplied user, resource, and membership facts.
type PermissionService struct {
	members MembershipRepository
}

func NewPermissionService(members MembershipRepository) *PermissionService {
	return &PermissionService{members: members}
}

// IsTeamMember reports whether the user has a membership row in the team.
func (s *PermissionService) IsTeamMember(ctx context.Context, teamID, userID int) (bool, error) {
	_, err := s.members.GetMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RequireTeamMember fails with ErrForbidden when the user is neither a
// member of the team nor a global admin. It gates every team-scoped read
// and write; the admin bypass keeps the single admin tier able to reach
// resources in teams it never joined.
func (s *PermissionService) RequireTeamMember(ctx context.Context, teamID int, user types.User) error {
	if user.IsAdmin() {
		return nil
	}
	member, err := s.IsTeamMember(ctx, teamID, user.ID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin fails with ErrForbidden unless the user holds the global
// admin role. Team create/update/delete and membership changes are gated
// here: destructive team operations belong to the single global admin tier,
// not to per-team owners.
func (s *PermissionService) RequireAdmin(user types.User) error {
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanModifyTask reports whether the user may update the task: global admin,
// the task's creator, or its current assignee.
func (s *PermissionService) CanModifyTask(user types.User, task types.Task) bool {
	if user.IsAdmin() || task.CreatedBy == user.ID {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == user.ID
}

// CanDeleteTask reports whether the user may delete the task: global admin
// or the task's creator. The assignee alone is not enough.
func (s *PermissionService) CanDeleteTask(user types.User, task types.Task) bool {
	return user.IsAdmin() || task.CreatedBy == user.ID
}
