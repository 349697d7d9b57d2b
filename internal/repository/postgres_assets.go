package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/186mph/calsoft-assets/internal/domain"

	"github.com/google/uuid"
)

const assetColumns = `
	asset_id::text,
	customer_id::text,
	job_id::text,
	asset_identity,
	name,
	report_kind,
	report_id::text,
	created_at,
	updated_at,
	deleted_at`

// PostgresAssetsRepository asset catalog repository implementation.
type PostgresAssetsRepository struct {
	db *sql.DB
}

// NewPostgresAssetsRepository creates an assets repository.
func NewPostgresAssetsRepository(db *sql.DB) *PostgresAssetsRepository {
	return &PostgresAssetsRepository{db: db}
}

var _ AssetsRepository = (*PostgresAssetsRepository)(nil)

func scanAsset(row interface{ Scan(...any) error }) (*domain.Asset, error) {
	var (
		asset      domain.Asset
		jobID      sql.NullString
		reportKind sql.NullString
		reportID   sql.NullString
		deletedAt  sql.NullTime
	)
	err := row.Scan(
		&asset.AssetID,
		&asset.CustomerID,
		&jobID,
		&asset.AssetIdentity,
		&asset.Name,
		&reportKind,
		&reportID,
		&asset.CreatedAt,
		&asset.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if jobID.Valid {
		asset.JobID = &jobID.String
	}
	if reportKind.Valid {
		kind := domain.ReportKind(reportKind.String)
		asset.ReportKind = &kind
	}
	if reportID.Valid {
		asset.ReportID = &reportID.String
	}
	if deletedAt.Valid {
		asset.DeletedAt = &deletedAt.Time
	}
	return &asset, nil
}

// GetAsset fetches one asset. includeDeleted bypasses the soft-delete
// filter for audit lookups.
func (r *PostgresAssetsRepository) GetAsset(ctx context.Context, partition domain.Partition, assetID string, includeDeleted bool) (*domain.Asset, error) {
	if err := checkPartition(partition); err != nil {
		return nil, err
	}
	if assetID == "" {
		return nil, fmt.Errorf("asset id is required: %w", domain.ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s.assets WHERE asset_id = $1`,
		assetColumns, partition.Schema())
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, assetID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("asset %s: %w", assetID, domain.ErrNotFound)
		}
		return nil, storeErr("failed to get asset", err)
	}
	return asset, nil
}

// ListJobAssets lists the non-deleted assets attached to a job.
func (r *PostgresAssetsRepository) ListJobAssets(ctx context.Context, partition domain.Partition, jobID string) ([]*domain.Asset, error) {
	if err := checkPartition(partition); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.assets
		WHERE job_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, assetColumns, partition.Schema())

	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, storeErr("failed to list job assets", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, storeErr("failed to scan asset", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate assets", err)
	}
	return assets, nil
}

// SearchMasterAssets matches free text against identity and name of
// master (job-less) assets, skipping identities already attached to
// excludeJobID so the caller is not re-offered what the job has.
func (r *PostgresAssetsRepository) SearchMasterAssets(ctx context.Context, partition domain.Partition, freeText, excludeJobID string) ([]*domain.Asset, error) {
	if err := checkPartition(partition); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.assets a
		WHERE a.deleted_at IS NULL
		  AND a.job_id IS NULL
		  AND (a.asset_identity ILIKE $1 OR a.name ILIKE $1)
		  AND NOT EXISTS (
		      SELECT 1 FROM %s.assets j
		      WHERE j.job_id = $2
		        AND j.asset_identity = a.asset_identity
		        AND j.deleted_at IS NULL
		  )
		ORDER BY a.updated_at DESC
		LIMIT 50
	`, assetColumns, partition.Schema(), partition.Schema())

	rows, err := r.db.QueryContext(ctx, query, "%"+freeText+"%", excludeJobID)
	if err != nil {
		return nil, storeErr("failed to search master assets", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, storeErr("failed to scan asset", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate assets", err)
	}
	return assets, nil
}

// CreateAsset inserts a catalog asset row. The row id is store-issued;
// callers never pass one in.
func (r *PostgresAssetsRepository) CreateAsset(ctx context.Context, partition domain.Partition, asset *domain.Asset) (*domain.Asset, error) {
	if err := checkPartition(partition); err != nil {
		return nil, err
	}

	created := *asset
	created.AssetID = uuid.NewString()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s.assets
			(asset_id, customer_id, job_id, asset_identity, name, report_kind, report_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, partition.Schema())

	_, err := r.db.ExecContext(ctx, query,
		created.AssetID,
		created.CustomerID,
		nullString(created.JobID),
		created.AssetIdentity,
		created.Name,
		nullKind(created.ReportKind),
		nullString(created.ReportID),
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		return nil, storeErr("failed to create asset", err)
	}
	return &created, nil
}

// SoftDeleteAsset marks the asset deleted. The row is never removed.
func (r *PostgresAssetsRepository) SoftDeleteAsset(ctx context.Context, partition domain.Partition, assetID string) error {
	if err := checkPartition(partition); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s.assets
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE asset_id = $1 AND deleted_at IS NULL
	`, partition.Schema())

	res, err := r.db.ExecContext(ctx, query, assetID)
	if err != nil {
		return storeErr("failed to soft-delete asset", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("failed to soft-delete asset", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset %s: %w", assetID, domain.ErrNotFound)
	}
	return nil
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullKind(k *domain.ReportKind) any {
	if k == nil {
		return nil
	}
	return string(*k)
}
