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
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `
	id, video_id, user_id, input_path, output_path, priority, attempts,
	max_attempts, status, started_at, completed_at, failed_at, scheduled_for,
	error_message, options, result, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, job *entity.ProcessingJob) error {
	opts, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshal job options: %w", err)
	}
	result, err := marshalResult(job.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO processing_jobs (
			id, video_id, user_id, input_path, output_path, priority, attempts,
			max_attempts, status, started_at, completed_at, failed_at, scheduled_for,
			error_message, options, result, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	_, err = r.pool.Exec(ctx, query,
		job.ID, job.VideoID, job.UserID, job.InputPath, job.OutputPath,
		job.Priority, job.Attempts, job.MaxAttempts, string(job.Status),
		job.StartedAt, job.CompletedAt, job.FailedAt, job.ScheduledFor,
		job.ErrorMessage, opts, result, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.ProcessingJob) error {
	result, err := marshalResult(job.Result)
	if err != nil {
		return err
	}

	query := `
		UPDATE processing_jobs SET
			output_path=$2, priority=$3, attempts=$4, status=$5, started_at=$6,
			completed_at=$7, failed_at=$8, scheduled_for=$9, error_message=$10,
			result=$11, updated_at=$12
		WHERE id=$1`

	_, err = r.pool.Exec(ctx, query,
		job.ID, job.OutputPath, job.Priority, job.Attempts, string(job.Status),
		job.StartedAt, job.CompletedAt, job.FailedAt, job.ScheduledFor,
		job.ErrorMessage, result, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ProcessingJob, error) {
	query := `SELECT` + jobColumns + ` FROM processing_jobs WHERE id=$1`
	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("job not found")
		}
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	return job, nil
}

func (r *JobRepository) FindByVideo(ctx context.Context, videoID uuid.UUID) ([]entity.ProcessingJob, error) {
	query := `SELECT` + jobColumns + ` FROM processing_jobs WHERE video_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("find jobs by video: %w", err)
	}
	defer rows.Close()

	var jobs []entity.ProcessingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func marshalResult(r *entity.JobResult) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal job result: %w", err)
	}
	return data, nil
}

func scanJob(row pgx.Row) (*entity.ProcessingJob, error) {
	job := &entity.ProcessingJob{}
	var status string
	var opts, result []byte

	err := row.Scan(
		&job.ID, &job.VideoID, &job.UserID, &job.InputPath, &job.OutputPath,
		&job.Priority, &job.Attempts, &job.MaxAttempts, &status,
		&job.StartedAt, &job.CompletedAt, &job.FailedAt, &job.ScheduledFor,
		&job.ErrorMessage, &opts, &result, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = entity.JobStatus(status)
	if len(opts) > 0 {
		if err := json.Unmarshal(opts, &job.Options); err != nil {
			return nil, fmt.Errorf("unmarshal job options: %w", err)
		}
	}
	if len(result) > 0 {
		job.Result = &entity.JobResult{}
		if err := json.Unmarshal(result, job.Result); err != nil {
			return nil, fmt.Errorf("unmarshal job result: %w", err)
		}
	}
	return job, nil
}
