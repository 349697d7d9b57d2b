package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/186mph/calsoft-assets/internal/domain"

	"github.com/google/uuid"
)

// PostgresLineageRepository multi-row writes for the clone/link engine.
// Every method runs in one transaction so a cancelled or failed call
// leaves no observable effect on the catalog.
type PostgresLineageRepository struct {
	db *sql.DB
}

// NewPostgresLineageRepository creates a lineage repository.
func NewPostgresLineageRepository(db *sql.DB) *PostgresLineageRepository {
	return &PostgresLineageRepository{db: db}
}

var _ LineageRepository = (*PostgresLineageRepository)(nil)

// InsertReportWithAsset creates a report row plus its companion catalog
// asset row atomically. Row ids are store-issued here; the caller's
// ids are ignored and the inserted values written back.
func (r *PostgresLineageRepository) InsertReportWithAsset(ctx context.Context, partition domain.Partition, report *domain.Report, asset *domain.Asset) error {
	if err := checkPartition(partition); err != nil {
		return err
	}
	if err := checkKind(report.Kind); err != nil {
		return err
	}

	rawPayload, err := marshalPayload(report.Payload)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	report.ReportID = uuid.NewString()
	report.CreatedAt = now
	report.UpdatedAt = now

	insertReport := fmt.Sprintf(`
		INSERT INTO %s.%s (report_id, job_id, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, partition.Schema(), report.Kind.TableName())
	if _, err := tx.ExecContext(ctx, insertReport,
		report.ReportID,
		report.JobID,
		string(report.Status),
		rawPayload,
		report.CreatedAt,
		report.UpdatedAt,
	); err != nil {
		return storeErr("failed to insert report", err)
	}

	asset.AssetID = uuid.NewString()
	asset.ReportID = &report.ReportID
	kind := report.Kind
	asset.ReportKind = &kind
	asset.CreatedAt = now
	asset.UpdatedAt = now

	insertAsset := fmt.Sprintf(`
		INSERT INTO %s.assets
			(asset_id, customer_id, job_id, asset_identity, name, report_kind, report_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, partition.Schema())
	if _, err := tx.ExecContext(ctx, insertAsset,
		asset.AssetID,
		asset.CustomerID,
		nullString(asset.JobID),
		asset.AssetIdentity,
		asset.Name,
		string(kind),
		report.ReportID,
		asset.CreatedAt,
		asset.UpdatedAt,
	); err != nil {
		return storeErr("failed to insert asset", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit", err)
	}
	return nil
}

// LinkMasterAsset creates a job-scoped asset row for a master asset's
// identity unless the job already carries one. Returns created=false
// on the duplicate call, which the engine treats as a no-op success.
func (r *PostgresLineageRepository) LinkMasterAsset(ctx context.Context, partition domain.Partition, asset *domain.Asset) (bool, error) {
	if err := checkPartition(partition); err != nil {
		return false, err
	}
	if asset.JobID == nil || *asset.JobID == "" {
		return false, fmt.Errorf("link target job is required: %w", domain.ErrNotFound)
	}

	asset.AssetID = uuid.NewString()
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	// Insert-unless-exists keyed on (job, identity); a second identical
	// link sees the existing row and inserts nothing.
	query := fmt.Sprintf(`
		INSERT INTO %s.assets
			(asset_id, customer_id, job_id, asset_identity, name, report_kind, report_id, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM %s.assets
			WHERE job_id = $3 AND asset_identity = $4 AND deleted_at IS NULL
		)
	`, partition.Schema(), partition.Schema())

	res, err := r.db.ExecContext(ctx, query,
		asset.AssetID,
		asset.CustomerID,
		*asset.JobID,
		asset.AssetIdentity,
		asset.Name,
		nullKind(asset.ReportKind),
		nullString(asset.ReportID),
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		return false, storeErr("failed to link master asset", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("failed to link master asset", err)
	}
	return affected > 0, nil
}

// LinkReport attaches an existing report to another job through the
// junction table, leaving the report's own job pointer untouched.
func (r *PostgresLineageRepository) LinkReport(ctx context.Context, partition domain.Partition, jobID string, kind domain.ReportKind, reportID string) (bool, error) {
	if err := checkPartition(partition); err != nil {
		return false, err
	}
	if err := checkKind(kind); err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.job_report_links (link_id, job_id, report_kind, report_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (job_id, report_kind, report_id) DO NOTHING
	`, partition.Schema())

	res, err := r.db.ExecContext(ctx, query, uuid.NewString(), jobID, string(kind), reportID)
	if err != nil {
		return false, storeErr("failed to link report", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("failed to link report", err)
	}
	return affected > 0, nil
}
