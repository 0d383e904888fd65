package services

import (
	"context"

	"github.com/taskmate/apiserver/types"
)

// MessageRepository defines persistence operations for discussion messages.
type MessageRepository interface {
	Create(ctx context.Context, message types.Message) (types.Message, error)
	ListByTeam(ctx context.Context, teamID int) ([]types.Message, error)
}

// DiscussionService posts and lists team discussion, members only.
type DiscussionService struct {
	messages MessageRepository
	perms    *PermissionService
}

func NewDiscussionService(messages MessageRepository, perms *PermissionService) *DiscussionService {
	return &DiscussionService{
		messages: messages,
		perms:    perms,
	}
}

func (s *DiscussionService) Post(ctx context.Context, me types.User, teamID int, content string) (types.Message, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return types.Message{}, err
	}
	return s.messages.Create(ctx, types.Message{
		TeamID:  teamID,
		UserID:  me.ID,
		Content: content,
	})
}

func (s *DiscussionService) ListByTeam(ctx context.Context, me types.User, teamID int) ([]types.Message, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return nil, err
	}
	return s.messages.ListByTeam(ctx, teamID)
}
