package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/186mph/calsoft-assets/internal/domain"
)

// PostgresReportsRepository report-table repository implementation.
// Every report kind shares the same row shape (id, job pointer, status,
// JSONB payload, timestamps); only the table and the searchable payload
// columns differ, and both come from the closed ReportKind enum.
type PostgresReportsRepository struct {
	db *sql.DB
}

// NewPostgresReportsRepository creates a reports repository.
func NewPostgresReportsRepository(db *sql.DB) *PostgresReportsRepository {
	return &PostgresReportsRepository{db: db}
}

var _ ReportsRepository = (*PostgresReportsRepository)(nil)

// GetReport fetches one report from its kind table.
func (r *PostgresReportsRepository) GetReport(ctx context.Context, partition domain.Partition, kind domain.ReportKind, reportID string) (*domain.Report, error) {
	if err := checkPartition(partition); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if reportID == "" {
		return nil, fmt.Errorf("report id is required: %w", domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT
			report_id::text,
			job_id::text,
			status,
			payload,
			created_at,
			updated_at
		FROM %s.%s
		WHERE report_id = $1 AND deleted_at IS NULL
	`, partition.Schema(), kind.TableName())

	var (
		report     domain.Report
		rawPayload []byte
		status     string
	)
	err := r.db.QueryRowContext(ctx, query, reportID).Scan(
		&report.ReportID,
		&report.JobID,
		&status,
		&rawPayload,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report %s/%s: %w", kind, reportID, domain.ErrNotFound)
		}
		return nil, storeErr("failed to get report", err)
	}

	report.Kind = kind
	report.Status = domain.ReportStatus(status)
	report.Payload, err = unmarshalPayload(rawPayload)
	if err != nil {
		return nil, fmt.Errorf("report %s/%s: %w", kind, reportID, err)
	}
	return &report, nil
}

// GetReportStatus reads just the status column. Missing rows surface
// as ErrNotFound; the status projector maps everything to UNKNOWN.
func (r *PostgresReportsRepository) GetReportStatus(ctx context.Context, partition domain.Partition, kind domain.ReportKind, reportID string) (string, error) {
	if err := checkPartition(partition); err != nil {
		return "", err
	}
	if err := checkKind(kind); err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		SELECT status FROM %s.%s
		WHERE report_id = $1 AND deleted_at IS NULL
	`, partition.Schema(), kind.TableName())

	var status string
	err := r.db.QueryRowContext(ctx, query, reportID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("report %s/%s: %w", kind, reportID, domain.ErrNotFound)
		}
		return "", storeErr("failed to get report status", err)
	}
	return status, nil
}

// SearchReports matches free text against the kind's searchable payload
// columns and identity keys. Reports owned by excludeJobID, or already
// linked to it through the junction table, are skipped.
func (r *PostgresReportsRepository) SearchReports(ctx context.Context, partition domain.Partition, kind domain.ReportKind, freeText, excludeJobID string) ([]*domain.Report, error) {
	if err := checkPartition(partition); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	// Column names come from the closed enum, never from user input.
	var matches []string
	for _, col := range kind.SearchColumns() {
		matches = append(matches, fmt.Sprintf("r.payload->>'%s' ILIKE $1", col))
	}
	for _, col := range kind.IdentityKeys() {
		matches = append(matches, fmt.Sprintf("r.payload->>'%s' ILIKE $1", col))
	}

	query := fmt.Sprintf(`
		SELECT
			r.report_id::text,
			r.job_id::text,
			r.status,
			r.payload,
			r.created_at,
			r.updated_at
		FROM %s.%s r
		WHERE r.deleted_at IS NULL
		  AND (%s)
		  AND r.job_id <> $2
		  AND NOT EXISTS (
		      SELECT 1 FROM %s.job_report_links l
		      WHERE l.job_id = $2 AND l.report_kind = $3 AND l.report_id = r.report_id
		  )
		ORDER BY r.updated_at DESC
		LIMIT 50
	`, partition.Schema(), kind.TableName(), strings.Join(matches, " OR "), partition.Schema())

	rows, err := r.db.QueryContext(ctx, query, "%"+freeText+"%", excludeJobID, string(kind))
	if err != nil {
		return nil, storeErr("failed to search reports", err)
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		var (
			report     domain.Report
			rawPayload []byte
			status     string
		)
		if err := rows.Scan(
			&report.ReportID,
			&report.JobID,
			&status,
			&rawPayload,
			&report.CreatedAt,
			&report.UpdatedAt,
		); err != nil {
			return nil, storeErr("failed to scan report", err)
		}
		report.Kind = kind
		report.Status = domain.ReportStatus(status)
		if report.Payload, err = unmarshalPayload(rawPayload); err != nil {
			return nil, fmt.Errorf("report %s/%s: %w", kind, report.ReportID, err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate reports", err)
	}
	return reports, nil
}

// SoftDeleteReport marks the report deleted. The row is never removed.
func (r *PostgresReportsRepository) SoftDeleteReport(ctx context.Context, partition domain.Partition, kind domain.ReportKind, reportID string) error {
	if err := checkPartition(partition); err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s.%s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE report_id = $1 AND deleted_at IS NULL
	`, partition.Schema(), kind.TableName())

	res, err := r.db.ExecContext(ctx, query, reportID)
	if err != nil {
		return storeErr("failed to soft-delete report", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("failed to soft-delete report", err)
	}
	if affected == 0 {
		return fmt.Errorf("report %s/%s: %w", kind, reportID, domain.ErrNotFound)
	}
	return nil
}
