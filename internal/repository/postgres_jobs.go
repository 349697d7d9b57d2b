package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/186mph/calsoft-assets/internal/domain"
)

// PostgresJobsRepository jobs repository implementation.
type PostgresJobsRepository struct {
	db *sql.DB
}

// NewPostgresJobsRepository creates a jobs repository.
func NewPostgresJobsRepository(db *sql.DB) *PostgresJobsRepository {
	return &PostgresJobsRepository{db: db}
}

var _ JobsRepository = (*PostgresJobsRepository)(nil)

// GetJob fetches a job from one partition. Soft-deleted jobs count as
// not found.
func (r *PostgresJobsRepository) GetJob(ctx context.Context, partition domain.Partition, jobID string) (*domain.Job, error) {
	if err := checkPartition(partition); err != nil {
		return nil, err
	}
	if jobID == "" {
		return nil, fmt.Errorf("job id is required: %w", domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT
			job_id::text,
			customer_id::text,
			division,
			job_number,
			title,
			created_at
		FROM %s.jobs
		WHERE job_id = $1 AND deleted_at IS NULL
	`, partition.Schema())

	var job domain.Job
	err := r.db.QueryRowContext(ctx, query, jobID).Scan(
		&job.JobID,
		&job.CustomerID,
		&job.Division,
		&job.JobNumber,
		&job.Title,
		&job.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
		}
		return nil, storeErr("failed to get job", err)
	}

	return &job, nil
}

// FindJob scans all partitions for the job. Used to distinguish a
// missing job from a cross-partition reference.
func (r *PostgresJobsRepository) FindJob(ctx context.Context, jobID string) (domain.Partition, *domain.Job, error) {
	for _, p := range domain.AllPartitions {
		job, err := r.GetJob(ctx, p, jobID)
		if err == nil {
			return p, job, nil
		}
		if !isNotFound(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
}
