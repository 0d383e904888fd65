package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskmate/apiserver/types"
)

// FileRepository handles persistence for file attachment metadata.
type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

const fileColumns = `id, team_id, uploaded_by, filename, content_type, size_bytes, object_key, created_at`

func scanFile(row *sql.Row) (types.FileResource, error) {
	var file types.FileResource
	err := row.Scan(
		&file.ID,
		&file.TeamID,
		&file.UploadedBy,
		&file.Filename,
		&file.ContentType,
		&file.SizeBytes,
		&file.ObjectKey,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.FileResource{}, ErrNotFound
		}
		return types.FileResource{}, err
	}
	return file, nil
}

func (r *FileRepository) Get(ctx context.Context, id int) (types.FileResource, error) {
	const query = `SELECT ` + fileColumns + ` FROM file_resources WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, query, id))
}

func (r *FileRepository) Create(ctx context.Context, file types.FileResource) (types.FileResource, error) {
	file.CreatedAt = time.Now()

	const query = `
		INSERT INTO file_resources (team_id, uploaded_by, filename, content_type, size_bytes, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		file.TeamID,
		file.UploadedBy,
		file.Filename,
		file.ContentType,
		file.SizeBytes,
		file.ObjectKey,
		file.CreatedAt,
	).Scan(&file.ID); err != nil {
		return types.FileResource{}, translateError(err)
	}
	return file, nil
}

func (r *FileRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM file_resources WHERE id = $1`
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

func (r *FileRepository) ListByTeam(ctx context.Context, teamID int) ([]types.FileResource, error) {
	const query = `SELECT ` + fileColumns + ` FROM file_resources WHERE team_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]types.FileResource, 0)
	for rows.Next() {
		var file types.FileResource
		if err := rows.Scan(
			&file.ID,
			&file.TeamID,
			&file.UploadedBy,
			&file.Filename,
			&file.ContentType,
			&file.SizeBytes,
			&file.ObjectKey,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
