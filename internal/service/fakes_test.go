package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/186mph/calsoft-assets/internal/domain"
	"github.com/186mph/calsoft-assets/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes for unit tests. They mimic the Postgres
// implementations' contracts (soft-delete filtering, idempotent link,
// sequence claims) without a database.

type fakeIdentitiesRepo struct {
	mu         sync.Mutex
	claimed    map[int]map[int]string
	failClaims int // next N claims lose the race
	maxErr     error
	claimErr   error
}

func newFakeIdentitiesRepo() *fakeIdentitiesRepo {
	return &fakeIdentitiesRepo{claimed: make(map[int]map[int]string)}
}

func (f *fakeIdentitiesRepo) MaxSequence(ctx context.Context, companyKey int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.maxErr != nil {
		return 0, f.maxErr
	}
	max := 0
	for seq := range f.claimed[companyKey] {
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (f *fakeIdentitiesRepo) ClaimSequence(ctx context.Context, companyKey, seq int, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return f.claimErr
	}
	if f.failClaims > 0 {
		f.failClaims--
		// simulate a racing writer grabbing this seq first
		if f.claimed[companyKey] == nil {
			f.claimed[companyKey] = make(map[int]string)
		}
		f.claimed[companyKey][seq] = "raced-" + identity
		return fmt.Errorf("identity %s: %w", identity, repository.ErrSequenceClaimed)
	}
	if _, taken := f.claimed[companyKey][seq]; taken {
		return fmt.Errorf("identity %s: %w", identity, repository.ErrSequenceClaimed)
	}
	if f.claimed[companyKey] == nil {
		f.claimed[companyKey] = make(map[int]string)
	}
	f.claimed[companyKey][seq] = identity
	return nil
}

type fakeJobsRepo struct {
	jobs map[domain.Partition]map[string]*domain.Job
	err  error
}

func newFakeJobsRepo() *fakeJobsRepo {
	return &fakeJobsRepo{jobs: map[domain.Partition]map[string]*domain.Job{
		domain.PartitionNETA: {},
		domain.PartitionLab:  {},
	}}
}

func (f *fakeJobsRepo) addJob(p domain.Partition, job *domain.Job) *domain.Job {
	job.Division = p
	f.jobs[p][job.JobID] = job
	return job
}

func (f *fakeJobsRepo) GetJob(ctx context.Context, p domain.Partition, jobID string) (*domain.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	if job, ok := f.jobs[p][jobID]; ok {
		return job, nil
	}
	return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
}

func (f *fakeJobsRepo) FindJob(ctx context.Context, jobID string) (domain.Partition, *domain.Job, error) {
	for _, p := range domain.AllPartitions {
		if job, ok := f.jobs[p][jobID]; ok {
			return p, job, nil
		}
	}
	return "", nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
}

type fakeAssetsRepo struct {
	mu     sync.Mutex
	assets map[domain.Partition]map[string]*domain.Asset
	err    error
}

func newFakeAssetsRepo() *fakeAssetsRepo {
	return &fakeAssetsRepo{assets: map[domain.Partition]map[string]*domain.Asset{
		domain.PartitionNETA: {},
		domain.PartitionLab:  {},
	}}
}

func (f *fakeAssetsRepo) addAsset(p domain.Partition, asset *domain.Asset) *domain.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	if asset.AssetID == "" {
		asset.AssetID = uuid.NewString()
	}
	if asset.UpdatedAt.IsZero() {
		asset.UpdatedAt = time.Now()
	}
	f.assets[p][asset.AssetID] = asset
	return asset
}

func (f *fakeAssetsRepo) GetAsset(ctx context.Context, p domain.Partition, assetID string, includeDeleted bool) (*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	asset, ok := f.assets[p][assetID]
	if !ok || (!includeDeleted && asset.DeletedAt != nil) {
		return nil, fmt.Errorf("asset %s: %w", assetID, domain.ErrNotFound)
	}
	return asset, nil
}

func (f *fakeAssetsRepo) ListJobAssets(ctx context.Context, p domain.Partition, jobID string) ([]*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Asset
	for _, a := range f.assets[p] {
		if a.DeletedAt == nil && a.JobID != nil && *a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssetsRepo) SearchMasterAssets(ctx context.Context, p domain.Partition, freeText, excludeJobID string) ([]*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	attached := make(map[string]bool)
	for _, a := range f.assets[p] {
		if a.DeletedAt == nil && a.JobID != nil && *a.JobID == excludeJobID {
			attached[a.AssetIdentity] = true
		}
	}
	q := strings.ToLower(freeText)
	var out []*domain.Asset
	for _, a := range f.assets[p] {
		if a.DeletedAt != nil || !a.IsMaster() || attached[a.AssetIdentity] {
			continue
		}
		if strings.Contains(strings.ToLower(a.AssetIdentity), q) ||
			strings.Contains(strings.ToLower(a.Name), q) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssetsRepo) CreateAsset(ctx context.Context, p domain.Partition, asset *domain.Asset) (*domain.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.addAsset(p, asset), nil
}

func (f *fakeAssetsRepo) SoftDeleteAsset(ctx context.Context, p domain.Partition, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assets[p][assetID]
	if !ok || asset.DeletedAt != nil {
		return fmt.Errorf("asset %s: %w", assetID, domain.ErrNotFound)
	}
	now := time.Now()
	asset.DeletedAt = &now
	return nil
}

type fakeReportsRepo struct {
	mu        sync.Mutex
	reports   map[domain.Partition]map[domain.ReportKind]map[string]*domain.Report
	failKinds map[domain.ReportKind]error
	links     map[string]bool // job|kind|report junction rows
}

func newFakeReportsRepo() *fakeReportsRepo {
	f := &fakeReportsRepo{
		reports:   make(map[domain.Partition]map[domain.ReportKind]map[string]*domain.Report),
		failKinds: make(map[domain.ReportKind]error),
		links:     make(map[string]bool),
	}
	for _, p := range domain.AllPartitions {
		f.reports[p] = make(map[domain.ReportKind]map[string]*domain.Report)
		for _, k := range domain.AllReportKinds {
			f.reports[p][k] = make(map[string]*domain.Report)
		}
	}
	return f
}

func linkKey(jobID string, kind domain.ReportKind, reportID string) string {
	return jobID + "|" + string(kind) + "|" + reportID
}

func (f *fakeReportsRepo) addReport(p domain.Partition, r *domain.Report) *domain.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ReportID == "" {
		r.ReportID = uuid.NewString()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	f.reports[p][r.Kind][r.ReportID] = r
	return r
}

func (f *fakeReportsRepo) GetReport(ctx context.Context, p domain.Partition, kind domain.ReportKind, reportID string) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failKinds[kind]; err != nil {
		return nil, err
	}
	r, ok := f.reports[p][kind][reportID]
	if !ok || r.DeletedAt != nil {
		return nil, fmt.Errorf("report %s/%s: %w", kind, reportID, domain.ErrNotFound)
	}
	return r, nil
}

func (f *fakeReportsRepo) GetReportStatus(ctx context.Context, p domain.Partition, kind domain.ReportKind, reportID string) (string, error) {
	r, err := f.GetReport(ctx, p, kind, reportID)
	if err != nil {
		return "", err
	}
	return string(r.Status), nil
}

func (f *fakeReportsRepo) SearchReports(ctx context.Context, p domain.Partition, kind domain.ReportKind, freeText, excludeJobID string) ([]*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failKinds[kind]; err != nil {
		return nil, err
	}
	q := strings.ToLower(freeText)
	var out []*domain.Report
	for _, r := range f.reports[p][kind] {
		if r.DeletedAt != nil || r.JobID == excludeJobID || f.links[linkKey(excludeJobID, kind, r.ReportID)] {
			continue
		}
		cols := append(append([]string{}, kind.SearchColumns()...), kind.IdentityKeys()...)
		for _, col := range cols {
			if v := r.Payload.String(col); v != "" && strings.Contains(strings.ToLower(v), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeReportsRepo) SoftDeleteReport(ctx context.Context, p domain.Partition, kind domain.ReportKind, reportID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[p][kind][reportID]
	if !ok || r.DeletedAt != nil {
		return fmt.Errorf("report %s/%s: %w", kind, reportID, domain.ErrNotFound)
	}
	now := time.Now()
	r.DeletedAt = &now
	return nil
}

// fakeLineageRepo writes through the asset/report fakes so idempotency
// and visibility checks behave like the real transactional repository.
type fakeLineageRepo struct {
	assets  *fakeAssetsRepo
	reports *fakeReportsRepo
	err     error
}

func (f *fakeLineageRepo) InsertReportWithAsset(ctx context.Context, p domain.Partition, report *domain.Report, asset *domain.Asset) error {
	if f.err != nil {
		return f.err
	}
	report.ReportID = uuid.NewString()
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now
	f.reports.addReport(p, report)

	asset.AssetID = uuid.NewString()
	kind := report.Kind
	asset.ReportKind = &kind
	asset.ReportID = &report.ReportID
	asset.CreatedAt = now
	asset.UpdatedAt = now
	f.assets.addAsset(p, asset)
	return nil
}

func (f *fakeLineageRepo) LinkMasterAsset(ctx context.Context, p domain.Partition, asset *domain.Asset) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.assets.mu.Lock()
	for _, existing := range f.assets.assets[p] {
		if existing.DeletedAt == nil && existing.JobID != nil && asset.JobID != nil &&
			*existing.JobID == *asset.JobID && existing.AssetIdentity == asset.AssetIdentity {
			f.assets.mu.Unlock()
			return false, nil
		}
	}
	f.assets.mu.Unlock()
	f.assets.addAsset(p, asset)
	return true, nil
}

func (f *fakeLineageRepo) LinkReport(ctx context.Context, p domain.Partition, jobID string, kind domain.ReportKind, reportID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.reports.mu.Lock()
	defer f.reports.mu.Unlock()
	key := linkKey(jobID, kind, reportID)
	if f.reports.links[key] {
		return false, nil
	}
	f.reports.links[key] = true
	return true, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []map[string]any
	err    error
}

func (f *fakePublisher) PublishJSON(ctx context.Context, stream string, data any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if event, ok := data.(map[string]any); ok {
		f.events = append(f.events, event)
	}
	return fmt.Sprintf("%d-0", len(f.events)), nil
}

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	sets int
	err  error
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string]string)} }

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return "", f.err
	}
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss")
}

func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	return nil
}
