package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/186mph/calsoft-assets/internal/cache"
	"github.com/186mph/calsoft-assets/internal/domain"
	"github.com/186mph/calsoft-assets/internal/repository"

	"go.uber.org/zap"
)

// LineageEngine performs the lineage-preserving clone/link operations.
// These mutate durable state, so unlike search and status projection
// they never recover silently: any failure aborts the whole operation.
type LineageEngine interface {
	// Link attaches an existing record to a job without copying payload.
	Link(ctx context.Context, partition domain.Partition, req LinkRequest) (*LinkResult, error)
	// CloneForRetest duplicates a report's payload into a new report row
	// owned by the target job, stamping fresh identity and lineage.
	CloneForRetest(ctx context.Context, partition domain.Partition, req CloneRequest) (*CloneResult, error)
	// Promote turns a master asset with no prior report into a
	// job-scoped report plus asset row.
	Promote(ctx context.Context, partition domain.Partition, req PromoteRequest) (*CloneResult, error)
}

// LinkRequest attaches either a master asset (AssetID set) or an
// existing cross-job report (ReportKind+ReportID set) to TargetJobID.
type LinkRequest struct {
	TargetJobID string
	AssetID     string
	ReportKind  domain.ReportKind
	ReportID    string
}

// LinkResult reports what Link did. Created is false when the
// attachment already existed and the call was a no-op success.
type LinkResult struct {
	Created bool   `json:"created"`
	AssetID string `json:"asset_id,omitempty"`
	JobID   string `json:"job_id"`
}

// CloneRequest duplicates SourceReportID into TargetJobID. KeepStatus
// carries the source's lifecycle status over instead of the retest
// default of PASS.
type CloneRequest struct {
	TargetJobID    string
	SourceKind     domain.ReportKind
	SourceReportID string
	KeepStatus     bool
}

// PromoteRequest promotes master AssetID into a Kind report on
// TargetJobID.
type PromoteRequest struct {
	TargetJobID string
	AssetID     string
	Kind        domain.ReportKind
}

// CloneResult is the new report/asset pair created by Clone or Promote.
type CloneResult struct {
	Report *domain.Report `json:"report"`
	Asset  *domain.Asset  `json:"asset"`
}

type lineageEngine struct {
	jobs      repository.JobsRepository
	assets    repository.AssetsRepository
	reports   repository.ReportsRepository
	lineage   repository.LineageRepository
	publisher cache.StreamPublisher // nil disables audit events
	stream    string
	logger    *zap.Logger
}

// NewLineageEngine creates a LineageEngine. publisher may be nil.
func NewLineageEngine(
	jobs repository.JobsRepository,
	assets repository.AssetsRepository,
	reports repository.ReportsRepository,
	lineage repository.LineageRepository,
	publisher cache.StreamPublisher,
	stream string,
	logger *zap.Logger,
) LineageEngine {
	return &lineageEngine{
		jobs:      jobs,
		assets:    assets,
		reports:   reports,
		lineage:   lineage,
		publisher: publisher,
		stream:    stream,
		logger:    logger,
	}
}

// resolveTargetJob loads the target job from the source's partition.
// A job that exists, but in a different partition, is a
// PartitionMismatch, not a NotFound.
func (s *lineageEngine) resolveTargetJob(ctx context.Context, partition domain.Partition, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetJob(ctx, partition, jobID)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	foundPartition, _, findErr := s.jobs.FindJob(ctx, jobID)
	if findErr == nil && foundPartition != partition {
		return nil, fmt.Errorf("job %s lives in partition %s, not %s: %w",
			jobID, foundPartition, partition, domain.ErrPartitionMismatch)
	}
	if findErr != nil && !errors.Is(findErr, domain.ErrNotFound) {
		return nil, findErr
	}
	return nil, err
}

func (s *lineageEngine) Link(ctx context.Context, partition domain.Partition, req LinkRequest) (*LinkResult, error) {
	job, err := s.resolveTargetJob(ctx, partition, req.TargetJobID)
	if err != nil {
		return nil, err
	}

	switch {
	case req.AssetID != "":
		return s.linkMaster(ctx, partition, job, req.AssetID)
	case req.ReportID != "":
		return s.linkReport(ctx, partition, job, req.ReportKind, req.ReportID)
	}
	return nil, fmt.Errorf("link requires an asset id or a report reference: %w", domain.ErrNotFound)
}

func (s *lineageEngine) linkMaster(ctx context.Context, partition domain.Partition, job *domain.Job, assetID string) (*LinkResult, error) {
	master, err := s.assets.GetAsset(ctx, partition, assetID, false)
	if err != nil {
		return nil, err
	}
	if !master.IsMaster() {
		return nil, fmt.Errorf("asset %s is already attached to job %s; link only applies to master assets",
			assetID, *master.JobID)
	}

	linked := &domain.Asset{
		CustomerID:    master.CustomerID,
		JobID:         &job.JobID,
		AssetIdentity: master.AssetIdentity,
		Name:          master.Name,
		ReportKind:    master.ReportKind,
		ReportID:      master.ReportID,
	}
	created, err := s.lineage.LinkMasterAsset(ctx, partition, linked)
	if err != nil {
		return nil, err
	}
	if created {
		s.publishEvent(ctx, map[string]any{
			"operation": "link",
			"partition": string(partition),
			"job_id":    job.JobID,
			"identity":  master.AssetIdentity,
			"asset_id":  linked.AssetID,
		})
	}
	return &LinkResult{Created: created, AssetID: linked.AssetID, JobID: job.JobID}, nil
}

func (s *lineageEngine) linkReport(ctx context.Context, partition domain.Partition, job *domain.Job, kind domain.ReportKind, reportID string) (*LinkResult, error) {
	// Verify the report exists before creating a junction row; the
	// original report's job pointer is never touched.
	report, err := s.reports.GetReport(ctx, partition, kind, reportID)
	if err != nil {
		return nil, err
	}

	created, err := s.lineage.LinkReport(ctx, partition, job.JobID, kind, reportID)
	if err != nil {
		return nil, err
	}
	if created {
		s.publishEvent(ctx, map[string]any{
			"operation":     "link",
			"partition":     string(partition),
			"job_id":        job.JobID,
			"source_job_id": report.JobID,
			"kind":          string(kind),
			"report_id":     reportID,
		})
	}
	return &LinkResult{Created: created, JobID: job.JobID}, nil
}

func (s *lineageEngine) CloneForRetest(ctx context.Context, partition domain.Partition, req CloneRequest) (*CloneResult, error) {
	job, err := s.resolveTargetJob(ctx, partition, req.TargetJobID)
	if err != nil {
		return nil, err
	}

	source, err := s.reports.GetReport(ctx, partition, req.SourceKind, req.SourceReportID)
	if err != nil {
		return nil, err
	}
	if !req.SourceKind.HasRealData(source.Payload) {
		return nil, fmt.Errorf("report %s/%s: %w; enter the test data before retesting",
			req.SourceKind, req.SourceReportID, domain.ErrEmptySourcePayload)
	}

	payload := source.Payload.Clone()
	payload[domain.PayloadKeyRetestOf] = source.JobID

	// A retest records the unit as re-verified and back in service, so
	// the clone defaults to PASS regardless of the source's status.
	status := domain.StatusPass
	if req.KeepStatus {
		status = source.Status
	}

	identity := req.SourceKind.ExtractIdentity(source.Payload)
	report := &domain.Report{
		JobID:   job.JobID,
		Kind:    req.SourceKind,
		Status:  status,
		Payload: payload,
	}
	asset := &domain.Asset{
		CustomerID:    job.CustomerID,
		JobID:         &job.JobID,
		AssetIdentity: identity,
		Name:          fmt.Sprintf("%s %s", req.SourceKind.Label(), identity),
	}

	if err := s.lineage.InsertReportWithAsset(ctx, partition, report, asset); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, map[string]any{
		"operation":     "clone-for-retest",
		"partition":     string(partition),
		"job_id":        job.JobID,
		"source_job_id": source.JobID,
		"kind":          string(req.SourceKind),
		"identity":      identity,
		"report_id":     report.ReportID,
	})
	return &CloneResult{Report: report, Asset: asset}, nil
}

func (s *lineageEngine) Promote(ctx context.Context, partition domain.Partition, req PromoteRequest) (*CloneResult, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown report kind %q: %w", string(req.Kind), domain.ErrNotFound)
	}

	job, err := s.resolveTargetJob(ctx, partition, req.TargetJobID)
	if err != nil {
		return nil, err
	}

	master, err := s.assets.GetAsset(ctx, partition, req.AssetID, false)
	if err != nil {
		return nil, err
	}
	if !master.IsMaster() {
		return nil, fmt.Errorf("asset %s is already attached to a job; promote only applies to master assets", req.AssetID)
	}
	if master.HasReport() {
		return nil, fmt.Errorf("asset %s already has a report; use link instead of promote", req.AssetID)
	}

	report := &domain.Report{
		JobID:  job.JobID,
		Kind:   req.Kind,
		Status: domain.StatusPass,
		Payload: domain.Payload{
			"asset_id":      master.AssetIdentity,
			"customer_name": master.Name,
		},
	}
	asset := &domain.Asset{
		CustomerID:    master.CustomerID,
		JobID:         &job.JobID,
		AssetIdentity: master.AssetIdentity,
		Name:          master.Name,
	}

	if err := s.lineage.InsertReportWithAsset(ctx, partition, report, asset); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, map[string]any{
		"operation": "promote",
		"partition": string(partition),
		"job_id":    job.JobID,
		"kind":      string(req.Kind),
		"identity":  master.AssetIdentity,
		"report_id": report.ReportID,
	})
	return &CloneResult{Report: report, Asset: asset}, nil
}

// publishEvent sends a lineage audit event. The mutation is already
// committed, so publish failures are logged, never propagated.
func (s *lineageEngine) publishEvent(ctx context.Context, event map[string]any) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.PublishJSON(ctx, s.stream, event); err != nil {
		s.logger.Warn("failed to publish lineage event",
			zap.String("stream", s.stream),
			zap.Error(err),
		)
	}
}
