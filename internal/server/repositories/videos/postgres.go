package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jbarakanov/videohost/internal/common"
	"github.com/jbarakanov/videohost/internal/dbx"
	"github.com/jbarakanov/videohost/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, video *models.Video) (*models.Video, error) {

	query :=
		`INSERT INTO videos (title, description, media_ref, created, owner_id)
         VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		video.Title, video.Description, video.MediaRef, video.Created, video.OwnerID).Scan(&video.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {

	query := `DELETE FROM videos WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

const videoColumns = `id, title, COALESCE(description, ''), media_ref, created, owner_id`

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Video, error) {

	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	video := &models.Video{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&video.ID, &video.Title, &video.Description, &video.MediaRef, &video.Created, &video.OwnerID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY id OFFSET $1 LIMIT $2`
	return r.queryVideos(ctx, query, offset, limit)
}

// ListByOwner returns every video owned by the given user; the caller uses
// it to clean up media objects when an account is removed.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE owner_id = $1 ORDER BY id`
	return r.queryVideos(ctx, query, ownerID)
}

func (r *PostgresRepository) queryVideos(ctx context.Context, query string, args ...any) ([]*models.Video, error) {

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Video
	for rows.Next() {
		video := &models.Video{}
		if err := rows.Scan(&video.ID, &video.Title, &video.Description, &video.MediaRef, &video.Created, &video.OwnerID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
