package types

import "time"

// Project groups tasks inside a team.
type Project struct {
	ID          int        `json:"id" db:"id"`
	TeamID      int        `json:"team_id" db:"team_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	CreatedBy   int        `json:"created_by" db:"created_by"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
