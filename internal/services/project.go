package services

import (
	"context"
	"errors"
	"time"

	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/types"
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Get(ctx context.Context, id int) (types.Project, error)
	Create(ctx context.Context, project types.Project) (types.Project, error)
	Update(ctx context.Context, project types.Project) (types.Project, error)
	Delete(ctx context.Context, id int) error
	ListByTeam(ctx context.Context, teamID int) ([]types.Project, error)
}

// ProjectCreateInput carries the fields for a new project.
type ProjectCreateInput struct {
	TeamID      int
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	DueDate     *time.Time
}

// ProjectUpdateInput carries partial updates; nil fields are left alone.
type ProjectUpdateInput struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	DueDate     *time.Time
}

// ProjectService encapsulates project use-cases. Creating a project only
// needs membership in the target team; there is no extra role gate.
type ProjectService struct {
	projects ProjectRepository
	teams    TeamRepository
	perms    *PermissionService
}

func NewProjectService(projects ProjectRepository, teams TeamRepository, perms *PermissionService) *ProjectService {
	return &ProjectService{
		projects: projects,
		teams:    teams,
		perms:    perms,
	}
}

func (s *ProjectService) Create(ctx context.Context, me types.User, input ProjectCreateInput) (types.Project, error) {
	if err := s.perms.RequireTeamMember(ctx, input.TeamID, me); err != nil {
		return types.Project{}, err
	}
	if _, err := s.teams.Get(ctx, input.TeamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Project{}, ErrNotFound
		}
		return types.Project{}, err
	}

	status := input.Status
	if status == "" {
		status = "active"
	}
	return s.projects.Create(ctx, types.Project{
		TeamID:      input.TeamID,
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		CreatedBy:   me.ID,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
	})
}

func (s *ProjectService) ListByTeam(ctx context.Context, me types.User, teamID int) ([]types.Project, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return nil, err
	}
	return s.projects.ListByTeam(ctx, teamID)
}

// GetForTeam returns a project to a team member, checking the project
// actually belongs to the team so ids from other teams cannot be probed.
func (s *ProjectService) GetForTeam(ctx context.Context, me types.User, teamID, projectID int) (types.Project, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return types.Project{}, err
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Project{}, ErrNotFound
		}
		return types.Project{}, err
	}
	if project.TeamID != teamID {
		return types.Project{}, ErrNotFound
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, me types.User, projectID int, input ProjectUpdateInput) (types.Project, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Project{}, ErrNotFound
		}
		return types.Project{}, err
	}
	if err := s.perms.RequireTeamMember(ctx, project.TeamID, me); err != nil {
		return types.Project{}, err
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.DueDate != nil {
		project.DueDate = input.DueDate
	}
	return s.projects.Update(ctx, project)
}

func (s *ProjectService) Delete(ctx context.Context, me types.User, projectID int) error {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.perms.RequireTeamMember(ctx, project.TeamID, me); err != nil {
		return err
	}
	return s.projects.Delete(ctx, projectID)
}
