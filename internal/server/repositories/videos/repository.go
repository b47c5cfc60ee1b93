// Package videos provides persistence for video records.
package videos

import (
	"context"

	"github.com/jbarakanov/videohost/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, video *models.Video) (*models.Video, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Video, error)
	List(ctx context.Context, offset, limit int) ([]*models.Video, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Video, error)
}
