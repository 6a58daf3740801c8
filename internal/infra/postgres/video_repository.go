package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/port"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

const videoColumns = `
	id, user_id, filename, original_name, mime_type, size, duration,
	status, processed_at, error_message, s3_key, processing_attempts,
	metadata, created_at, updated_at`

func (r *VideoRepository) Create(ctx context.Context, v *entity.Video) error {
	meta, err := marshalMetadata(v.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO videos (
			id, user_id, filename, original_name, mime_type, size, duration,
			status, processed_at, error_message, s3_key, processing_attempts,
			metadata, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err = r.pool.Exec(ctx, query,
		v.ID, v.UserID, v.Filename, v.OriginalName, v.MimeType, v.Size, v.Duration,
		string(v.Status), v.ProcessedAt, v.ErrorMessage, v.S3Key, v.ProcessingAttempts,
		meta, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) Update(ctx context.Context, v *entity.Video) error {
	meta, err := marshalMetadata(v.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE videos SET
			duration=$2, status=$3, processed_at=$4, error_message=$5,
			s3_key=$6, processing_attempts=$7, metadata=$8, updated_at=$9
		WHERE id=$1`

	_, err = r.pool.Exec(ctx, query,
		v.ID, v.Duration, string(v.Status), v.ProcessedAt, v.ErrorMessage,
		v.S3Key, v.ProcessingAttempts, meta, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Video, error) {
	query := `SELECT` + videoColumns + ` FROM videos WHERE id=$1`
	v, err := scanVideo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) FindByUser(ctx context.Context, userID string, filter port.VideoFilter) ([]entity.Video, error) {
	query := `SELECT` + videoColumns + ` FROM videos WHERE user_id=$1`
	args := []any{userID}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status=$%d", len(args)+1)
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find videos by user: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

func (r *VideoRepository) CountByUser(ctx context.Context, userID string, status entity.VideoStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM videos WHERE user_id=$1`
	args := []any{userID}
	if status != "" {
		query += " AND status=$2"
		args = append(args, string(status))
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}

func (r *VideoRepository) FindByStatus(ctx context.Context, status entity.VideoStatus, limit int) ([]entity.Video, error) {
	query := `SELECT` + videoColumns + ` FROM videos WHERE status=$1 ORDER BY created_at ASC`
	args := []any{string(status)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find videos by status: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// TransitionStatus is the worker's fencing write: the status moves only when
// the row is still in one of the expected states.
func (r *VideoRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entity.VideoStatus, to entity.VideoStatus) (bool, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET status=$2, updated_at=now() WHERE id=$1 AND status = ANY($3)`,
		id, string(to), states,
	)
	if err != nil {
		return false, fmt.Errorf("transition video status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func marshalMetadata(m *entity.VideoMetadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal video metadata: %w", err)
	}
	return data, nil
}

func scanVideo(row pgx.Row) (*entity.Video, error) {
	v := &entity.Video{}
	var status string
	var meta []byte

	err := row.Scan(
		&v.ID, &v.UserID, &v.Filename, &v.OriginalName, &v.MimeType, &v.Size, &v.Duration,
		&status, &v.ProcessedAt, &v.ErrorMessage, &v.S3Key, &v.ProcessingAttempts,
		&meta, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Status = entity.VideoStatus(status)
	if len(meta) > 0 {
		v.Metadata = &entity.VideoMetadata{}
		if err := json.Unmarshal(meta, v.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal video metadata: %w", err)
		}
	}
	return v, nil
}

func collectVideos(rows pgx.Rows) ([]entity.Video, error) {
	var videos []entity.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}
