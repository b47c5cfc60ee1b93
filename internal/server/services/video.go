package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jbarakanov/videohost/internal/common"
	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/jbarakanov/videohost/internal/server/blob"
	"github.com/jbarakanov/videohost/internal/server/models"
	sharedb "github.com/jbarakanov/videohost/internal/server/shared/db"
)

// VideoService is the video catalog: upload, listing, search, and
// owner-only deletion.
type VideoService struct {
	db     *sql.DB
	repos  sharedb.RepositoryManager
	blobs  blob.Store
	logger logging.Logger
}

func NewVideoService(db *sql.DB, repos sharedb.RepositoryManager, blobs blob.Store, logger logging.Logger) *VideoService {
	return &VideoService{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		logger: logger.With("module", "video_service"),
	}
}

// Create stores the media bytes under a fresh storage key and then
// persists the record. The owner id must be the token-resolved identity;
// the HTTP layer rejects a mismatched path id before calling here. If the
// record insert fails the just-written object is removed best-effort.
func (s *VideoService) Create(ctx context.Context, ownerID int64, title, description string, media []byte) (*models.Video, error) {
	if _, err := s.repos.Users(s.db).GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	ref := blob.NewStorageKey()
	if err := s.blobs.Put(ctx, ref, media); err != nil {
		return nil, fmt.Errorf("error storing media: %w", err)
	}

	video := &models.Video{
		Title:       title,
		Description: description,
		MediaRef:    ref,
		Created:     time.Now(),
		OwnerID:     ownerID,
	}

	video, err := s.repos.Videos(s.db).Create(ctx, video)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, ref); delErr != nil {
			s.logger.Error(ctx, "orphaned media object", "ref", ref, "error", delErr.Error())
		}
		return nil, fmt.Errorf("error creating video: %w", err)
	}

	return video, nil
}

func (s *VideoService) List(ctx context.Context, offset, limit int) ([]*models.Video, error) {
	return s.repos.Videos(s.db).List(ctx, offset, limit)
}

// ListFiltered applies the page window first and the case-insensitive
// title match second, as the listing endpoint always has. A page whose
// matches lie beyond the window therefore comes back short or empty even
// when later pages contain matches.
func (s *VideoService) ListFiltered(ctx context.Context, search string, offset, limit int) ([]*models.Video, error) {
	page, err := s.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return page, nil
	}

	needle := strings.ToLower(search)
	result := make([]*models.Video, 0, len(page))
	for _, v := range page {
		if strings.Contains(strings.ToLower(v.Title), needle) {
			result = append(result, v)
		}
	}

	return result, nil
}

func (s *VideoService) FindByID(ctx context.Context, id int64) (*models.Video, error) {
	return s.repos.Videos(s.db).GetByID(ctx, id)
}

// Delete removes a video. Only the owner may delete; a mismatch is
// ErrForbidden and leaves both the record and the media object intact.
// The record delete commits first; the media object delete is a separate
// best-effort step whose failure is only logged (a leaked object, not a
// broken record).
func (s *VideoService) Delete(ctx context.Context, videoID, requestingUserID int64) (*models.Video, error) {
	if _, err := s.repos.Users(s.db).GetByID(ctx, requestingUserID); err != nil {
		return nil, err
	}

	video, err := s.repos.Videos(s.db).GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if video.OwnerID != requestingUserID {
		return nil, common.ErrForbidden
	}

	if err := s.repos.Videos(s.db).Delete(ctx, videoID); err != nil {
		return nil, err
	}

	if err := s.blobs.Delete(ctx, video.MediaRef); err != nil {
		s.logger.Error(ctx, "media object delete failed", "ref", video.MediaRef, "error", err.Error())
	}

	return video, nil
}
