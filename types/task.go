package types

import "time"

// Task is a unit of work inside a project. CreatedBy and AssignedTo
// participate in authorization: updates are allowed to the global admin,
// the creator, or the current assignee; deletes to the admin or creator.
type Task struct {
	ID          int        `json:"id" db:"id"`
	ProjectID   int        `json:"project_id" db:"project_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	CreatedBy   int        `json:"created_by" db:"created_by"`
	AssignedTo  *int       `json:"assigned_to,omitempty" db:"assigned_to"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
