package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskmate/apiserver/types"
)

// MessageRepository handles persistence for team discussion messages.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message types.Message) (types.Message, error) {
	message.CreatedAt = time.Now()

	const query = `
		INSERT INTO discussion_messages (team_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		message.TeamID,
		message.UserID,
		message.Content,
		message.CreatedAt,
	).Scan(&message.ID); err != nil {
		return types.Message{}, err
	}
	return message, nil
}

func (r *MessageRepository) ListByTeam(ctx context.Context, teamID int) ([]types.Message, error) {
	const query = `
		SELECT id, team_id, user_id, content, created_at
		FROM discussion_messages
		WHERE team_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.Message, 0)
	for rows.Next() {
		var message types.Message
		if err := rows.Scan(
			&message.ID,
			&message.TeamID,
			&message.UserID,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
