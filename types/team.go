package types

import "time"

// Team roles, scoped to a single team membership row.
const (
	TeamRoleOwner  = "owner"
	TeamRoleMember = "member"
)

// Team is a workspace that owns projects, discussion and files.
type Team struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TeamMember pairs a user with a team. (TeamID, UserID) is unique:
// a user belongs to a team at most once.
type TeamMember struct {
	ID       int    `json:"id" db:"id"`
	TeamID   int    `json:"team_id" db:"team_id"`
	UserID   int    `json:"user_id" db:"user_id"`
	TeamRole string `json:"team_role" db:"team_role"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
