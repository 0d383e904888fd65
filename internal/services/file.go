package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskmate/apiserver/internal/storage"
	"github.com/taskmate/apiserver/internal/store"
	"github.com/taskmate/apiserver/types"
)

// FileRepository defines persistence operations for file metadata.
type FileRepository interface {
	Get(ctx context.Context, id int) (types.FileResource, error)
	Create(ctx context.Context, file types.FileResource) (types.FileResource, error)
	Delete(ctx context.Context, id int) error
	ListByTeam(ctx context.Context, teamID int) ([]types.FileResource, error)
}

// FileService stores team file attachments: bytes in object storage under a
// random key, metadata in the database. All operations are membership
// gated; deletion additionally requires the uploader or a global admin.
type FileService struct {
	files   FileRepository
	objects *storage.Storage
	perms   *PermissionService
	log     zerolog.Logger
}

func NewFileService(files FileRepository, objects *storage.Storage, perms *PermissionService, log zerolog.Logger) *FileService {
	return &FileService{
		files:   files,
		objects: objects,
		perms:   perms,
		log:     log,
	}
}

func (s *FileService) Upload(ctx context.Context, me types.User, teamID int, filename, contentType string, r io.Reader, size int64) (types.FileResource, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return types.FileResource{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("teams/%d/%s", teamID, uuid.NewString())
	if err := s.objects.Put(ctx, key, r, size, contentType); err != nil {
		return types.FileResource{}, err
	}

	file, err := s.files.Create(ctx, types.FileResource{
		TeamID:      teamID,
		UploadedBy:  me.ID,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   size,
		ObjectKey:   key,
	})
	if err != nil {
		// The metadata row is the source of truth; without it the object is
		// unreachable, so clean it up.
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", key).Msg("orphaned object after failed metadata insert")
		}
		return types.FileResource{}, err
	}
	return file, nil
}

func (s *FileService) ListByTeam(ctx context.Context, me types.User, teamID int) ([]types.FileResource, error) {
	if err := s.perms.RequireTeamMember(ctx, teamID, me); err != nil {
		return nil, err
	}
	return s.files.ListByTeam(ctx, teamID)
}

// Open returns the file metadata and a reader over its bytes. The caller
// closes the reader.
func (s *FileService) Open(ctx context.Context, me types.User, fileID int) (types.FileResource, io.ReadCloser, error) {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.FileResource{}, nil, ErrNotFound
		}
		return types.FileResource{}, nil, err
	}
	if err := s.perms.RequireTeamMember(ctx, file.TeamID, me); err != nil {
		return types.FileResource{}, nil, err
	}
	reader, err := s.objects.Get(ctx, file.ObjectKey)
	if err != nil {
		return types.FileResource{}, nil, err
	}
	return file, reader, nil
}

func (s *FileService) Delete(ctx context.Context, me types.User, fileID int) error {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.perms.RequireTeamMember(ctx, file.TeamID, me); err != nil {
		return err
	}
	if !me.IsAdmin() && file.UploadedBy != me.ID {
		return ErrForbidden
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.objects.Delete(ctx, file.ObjectKey); err != nil {
		s.log.Error().Err(err).Str("key", file.ObjectKey).Msg("object delete failed after metadata delete")
	}
	return nil
}
