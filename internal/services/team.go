package services

import (
	"context"
	"errors"

	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/types"
)

// TeamRepository defines persistence operations for teams and memberships.
type TeamRepository interface {
	Create(ctx context.Context, team types.Team) (types.Team, error)
	Get(ctx context.Context, id int) (types.Team, error)
	Update(ctx context.Context, team types.Team) (types.Team, error)
	Delete(ctx context.Context, id int) error
	ListByUser(ctx context.Context, userID int) ([]types.Team, error)
	GetMember(ctx context.Context, teamID, userID int) (types.TeamMember, error)
	ListMembers(ctx context.Context, teamID int) ([]types.TeamMember, error)
	AddMember(ctx context.Context, member types.TeamMember) (types.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, memberID int) error
}

// TeamService encapsulates team and membership use-cases. Creating,
// updating, and deleting teams, and changing their membership, are global
// admin operations; reads are open to members.
type TeamService struct {
	teams TeamRepository
	users UserRepository
	perms *PermissionService
}

func NewTeamService(teams TeamRepository, users UserRepository, perms *PermissionService) *TeamService {
	return &TeamService{
		teams: teams,
		users: users,
		perms: perms,
	}
}

// Create makes a team with the requester as its owner member.
func (s *TeamService) Create(ctx context.Context, me types.User, name, description string) (types.Team, error) {
	if err := s.perms.RequireAdmin(me); err != nil {
		return types.Team{}, err
	}
	return s.teams.Create(ctx, types.Team{
		Name:        name,
		Description: description,
		CreatedBy:   me.ID,
	})
}

// ListForUser returns the teams the requester belongs to.
func (s *TeamService) ListForUser(ctx context.Context, me types.User) ([]types.Team, error) {
	return s.teams.ListByUser(ctx, me.ID)
}

// Get returns a team to one of its members.
func (s *TeamService) Get(ctx context.Context, me types.User, teamID int) (types.Team, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return types.Team{}, err
	}
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Team{}, ErrNotFound
		}
		return types.Team{}, err
	}
	return team, nil
}

func (s *TeamService) Update(ctx context.Context, me types.User, teamID int, name, description string) (types.Team, error) {
	if err := s.perms.RequireAdmin(me); err != nil {
		return types.Team{}, err
	}
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Team{}, ErrNotFound
		}
		return types.Team{}, err
	}
	team.Name = name
	team.Description = description
	return s.teams.Update(ctx, team)
}

func (s *TeamService) Delete(ctx context.Context, me types.User, teamID int) error {
	if err := s.perms.RequireAdmin(me); err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListMembers returns the membership rows of a team to one of its members.
func (s *TeamService) ListMembers(ctx context.Context, me types.User, teamID int) ([]types.TeamMember, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return nil, err
	}
	return s.teams.ListMembers(ctx, teamID)
}

// AddMember adds a user to a team. The target user must exist and must not
// already be a member.
func (s *TeamService) AddMember(ctx context.Context, me types.User, teamID, userID int, teamRole string) (types.TeamMember, error) {
	if err := s.perms.RequireAdmin(me); err != nil {
		return types.TeamMember{}, err
	}
	if _, err := s.teams.Get(ctx, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.TeamMember{}, ErrNotFound
		}
		return types.TeamMember{}, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.TeamMember{}, ErrNotFound
		}
		return types.TeamMember{}, err
	}
	if teamRole == "" {
		teamRole = types.TeamRoleMember
	}

	member, err := s.teams.AddMember(ctx, types.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		TeamRole: teamRole,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.TeamMember{}, ErrAlreadyMember
		}
		return types.TeamMember{}, err
	}
	return member, nil
}

// RemoveMember removes a membership row; the row must belong to the team.
func (s *TeamService) RemoveMember(ctx context.Context, me types.User, teamID, memberID int) error {
	if err := s.perms.RequireAdmin(me); err != nil {
		return err
	}
	if _, err := s.teams.Get(ctx, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.teams.RemoveMember(ctx, teamID, memberID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
