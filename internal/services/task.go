package services

import (
	"context"
	"errors"
	"time"

	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/types"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Get(ctx context.Context, id int) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, id int) error
	ListByProject(ctx context.Context, projectID int) ([]types.Task, error)
}

// TaskCreateInput carries the fields for a new task.
type TaskCreateInput struct {
	ProjectID   int
	Title       string
	Description string
	Status      string
	Priority    string
	AssignedTo  *int
	DueDate     *time.Time
}

// TaskUpdateInput carries partial updates; nil fields are left alone.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssignedTo  *int
	DueDate     *time.Time
}

// TaskService encapsulates task use-cases and their ownership rules:
// updates for admin/creator/assignee, deletes for admin/creator, and no
// assignment to anyone outside the task's team.
type TaskService struct {
	tasks    TaskRepository
	projects ProjectRepository
	users    UserRepository
	perms    *PermissionService
}

func NewTaskService(tasks TaskRepository, projects ProjectRepository, users UserRepository, perms *PermissionService) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		perms:    perms,
	}
}

// teamOf resolves the team a task's project belongs to.
func (s *TaskService) teamOf(ctx context.Context, projectID int) (int, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return project.TeamID, nil
}

// checkAssignee enforces the data-integrity rule that an assignee must be a
// member of the task's team. A missing user maps to ErrNotFound; a
// non-member user is rejected with ErrAssigneeNotMember, never silently
// accepted.
func (s *TaskService) checkAssignee(ctx context.Context, teamID, assigneeID int) error {
	if _, err := s.users.GetByID(ctx, assigneeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	member, err := s.perms.IsTeamMember(ctx, teamID, assigneeID)
	if err != nil {
		return err
	}
	if !member {
		return ErrAssigneeNotMember
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, me types.User, input TaskCreateInput) (types.Task, error) {
	teamID, err := s.teamOf(ctx, input.ProjectID)
	if err != nil {
		return types.Task{}, err
	}
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return types.Task{}, err
	}
	if input.AssignedTo != nil {
		if err := s.checkAssignee(ctx, teamID, *input.AssignedTo); err != nil {
			return types.Task{}, err
		}
	}

	status := input.Status
	if status == "" {
		status = "todo"
	}
	priority := input.Priority
	if priority == "" {
		priority = "medium"
	}
	return s.tasks.Create(ctx, types.Task{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		CreatedBy:   me.ID,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
	})
}

func (s *TaskService) ListByProject(ctx context.Context, me types.User, projectID int) ([]types.Task, error) {
	teamID, err := s.teamOf(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) Update(ctx context.Context, me types.User, taskID int, input TaskUpdateInput) (types.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	teamID, err := s.teamOf(ctx, task.ProjectID)
	if err != nil {
		return types.Task{}, err
	}
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return types.Task{}, err
	}
	if !s.perms.CanModifyTask(me, task) {
		return types.Task{}, ErrForbidden
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.AssignedTo != nil {
		if err := s.checkAssignee(ctx, teamID, *input.AssignedTo); err != nil {
			return types.Task{}, err
		}
		task.AssignedTo = input.AssignedTo
	}
	return s.tasks.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, me types.User, taskID int) error {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	teamID, err := s.teamOf(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return err
	}
	if !s.perms.CanDeleteTask(me, task) {
		return ErrForbidden
	}
	return s.tasks.Delete(ctx, taskID)
}
