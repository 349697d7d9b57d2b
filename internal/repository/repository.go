package repository

import (
	"context"
	"errors"

	"github.com/186mph/calsoft-assets/internal/domain"
)

// ErrSequenceClaimed another writer claimed the identity sequence value
// first. The issuer re-reads and retries; it never overwrites.
var ErrSequenceClaimed = errors.New("identity sequence already claimed")

// JobsRepository reads jobs out of a partition.
type JobsRepository interface {
	// GetJob fetches a job from the given partition.
	GetJob(ctx context.Context, partition domain.Partition, jobID string) (*domain.Job, error)
	// FindJob scans every partition for the job so callers can tell a
	// missing job apart from a job living in a different partition.
	FindJob(ctx context.Context, jobID string) (domain.Partition, *domain.Job, error)
}

// AssetsRepository manages the partition-scoped asset catalog.
type AssetsRepository interface {
	GetAsset(ctx context.Context, partition domain.Partition, assetID string, includeDeleted bool) (*domain.Asset, error)
	ListJobAssets(ctx context.Context, partition domain.Partition, jobID string) ([]*domain.Asset, error)
	// SearchMasterAssets matches free text against identity and name of
	// catalog-level assets (no job), excluding assets whose identity is
	// already attached to excludeJobID.
	SearchMasterAssets(ctx context.Context, partition domain.Partition, freeText, excludeJobID string) ([]*domain.Asset, error)
	CreateAsset(ctx context.Context, partition domain.Partition, asset *domain.Asset) (*domain.Asset, error)
	SoftDeleteAsset(ctx context.Context, partition domain.Partition, assetID string) error
}

// ReportsRepository reads kind-specific report tables.
type ReportsRepository interface {
	GetReport(ctx context.Context, partition domain.Partition, kind domain.ReportKind, reportID string) (*domain.Report, error)
	GetReportStatus(ctx context.Context, partition domain.Partition, kind domain.ReportKind, reportID string) (string, error)
	// SearchReports matches free text against the kind's searchable
	// payload columns, excluding reports owned by or already linked to
	// excludeJobID.
	SearchReports(ctx context.Context, partition domain.Partition, kind domain.ReportKind, freeText, excludeJobID string) ([]*domain.Report, error)
	SoftDeleteReport(ctx context.Context, partition domain.Partition, kind domain.ReportKind, reportID string) error
}

// IdentitiesRepository is the atomic-claim surface for identity
// issuance. Sequences live in one global table so a company key is a
// single namespace across partitions.
type IdentitiesRepository interface {
	MaxSequence(ctx context.Context, companyKey int) (int, error)
	// ClaimSequence durably claims (companyKey, seq). Returns
	// ErrSequenceClaimed when a concurrent writer got there first.
	ClaimSequence(ctx context.Context, companyKey, seq int, identity string) error
}

// LineageRepository performs the multi-row writes of the clone/link
// engine. Each method is a single transaction: cancelled or failed
// calls leave no observable effect.
type LineageRepository interface {
	// InsertReportWithAsset creates a new report row plus its companion
	// catalog asset row atomically.
	InsertReportWithAsset(ctx context.Context, partition domain.Partition, report *domain.Report, asset *domain.Asset) error
	// LinkMasterAsset creates a job-scoped asset row for a master asset
	// unless one with the same identity already exists on the job.
	LinkMasterAsset(ctx context.Context, partition domain.Partition, asset *domain.Asset) (created bool, err error)
	// LinkReport attaches an existing report to a job through the
	// junction table. Idempotent: a second identical call is a no-op.
	LinkReport(ctx context.Context, partition domain.Partition, jobID string, kind domain.ReportKind, reportID string) (created bool, err error)
}
