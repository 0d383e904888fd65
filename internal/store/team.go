package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskmate/apiserver/types"
)

// TeamRepository handles persistence for teams and team memberships.
type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `id, name, description, created_by, created_at, updated_at`

func scanTeam(row *sql.Row) (types.Team, error) {
	var team types.Team
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.CreatedBy,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Team{}, ErrNotFound
		}
		return types.Team{}, err
	}
	return team, nil
}

// Create inserts the team and its creator's owner membership in one
// transaction, so a team never exists without at least one member.
func (r *TeamRepository) Create(ctx context.Context, team types.Team) (types.Team, error) {
	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Team{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertTeam = `
		INSERT INTO teams (name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertTeam,
		team.Name,
		team.Description,
		team.CreatedBy,
		team.CreatedAt,
		team.UpdatedAt,
	).Scan(&team.ID); err != nil {
		return types.Team{}, err
	}

	const insertOwner = `
		INSERT INTO team_members (team_id, user_id, team_role, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insertOwner, team.ID, team.CreatedBy, types.TeamRoleOwner, now); err != nil {
		return types.Team{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Team{}, err
	}
	return team, nil
}

func (r *TeamRepository) Get(ctx context.Context, id int) (types.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *TeamRepository) Update(ctx context.Context, team types.Team) (types.Team, error) {
	team.UpdatedAt = time.Now()

	const query = `
		UPDATE teams
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.Description, team.UpdatedAt, team.ID)
	if err != nil {
		return types.Team{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Team{}, err
	}
	if affected == 0 {
		return types.Team{}, ErrNotFound
	}
	return team, nil
}

// Delete removes the team; memberships, projects, tasks, messages and file
// metadata go with it through the FK cascades.
func (r *TeamRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeamRepository) ListByUser(ctx context.Context, userID int) ([]types.Team, error) {
	const query = `
		SELECT t.id, t.name, t.description, t.created_by, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]types.Team, 0)
	for rows.Next() {
		var team types.Team
		if err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Description,
			&team.CreatedBy,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetMember returns the membership row for (teamID, userID), or ErrNotFound
// when the user does not belong to the team. This is the lookup behind every
// team-scoped permission check.
func (r *TeamRepository) GetMember(ctx context.Context, teamID, userID int) (types.TeamMember, error) {
	const query = `
		SELECT id, team_id, user_id, team_role, created_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2`
	var member types.TeamMember
	err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(
		&member.ID,
		&member.TeamID,
		&member.UserID,
		&member.TeamRole,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.TeamMember{}, ErrNotFound
		}
		return types.TeamMember{}, err
	}
	return member, nil
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID int) ([]types.TeamMember, error) {
	const query = `
		SELECT id, team_id, user_id, team_role, created_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]types.TeamMember, 0)
	for rows.Next() {
		var member types.TeamMember
		if err := rows.Scan(
			&member.ID,
			&member.TeamID,
			&member.UserID,
			&member.TeamRole,
			&member.CreatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember inserts a membership row. A second row for the same
// (team, user) pair fails with ErrDuplicate from the unique constraint.
func (r *TeamRepository) AddMember(ctx context.Context, member types.TeamMember) (types.TeamMember, error) {
	member.CreatedAt = time.Now()

	const query = `
		INSERT INTO team_members (team_id, user_id, team_role, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		member.TeamID,
		member.UserID,
		member.TeamRole,
		member.CreatedAt,
	).Scan(&member.ID); err != nil {
		return types.TeamMember{}, translateError(err)
	}
	return member, nil
}

// RemoveMember deletes a membership by id, scoped to the team so a caller
// cannot remove a row that belongs to another team.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, memberID int) error {
	const query = `DELETE FROM team_members WHERE id = $1 AND team_id = $2`
	result, err := r.db.ExecContext(ctx, query, memberID, teamID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
