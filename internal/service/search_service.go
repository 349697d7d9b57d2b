package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/186mph/calsoft-assets/internal/domain"
	"github.com/186mph/calsoft-assets/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// minSearchLength free text shorter than this is not worth a scan.
const minSearchLength = 2

// searchWorkers bounds the concurrent sub-queries of one search.
const searchWorkers = 4

// CatalogSearch scans the master asset catalog and every report-kind
// table of a partition for records matching free text.
type CatalogSearch interface {
	// Search returns candidates ordered master-assets-first, then
	// report-derived candidates, most recent first within each group.
	// Candidates already attached to currentJobID are excluded, and a
	// report candidate resolving to a master candidate's identity is
	// suppressed in favor of the master.
	Search(ctx context.Context, partition domain.Partition, currentJobID, freeText string) ([]domain.Candidate, error)
}

type catalogSearch struct {
	assets  repository.AssetsRepository
	reports repository.ReportsRepository
	logger  *zap.Logger
}

// NewCatalogSearch creates a CatalogSearch.
func NewCatalogSearch(assets repository.AssetsRepository, reports repository.ReportsRepository, logger *zap.Logger) CatalogSearch {
	return &catalogSearch{assets: assets, reports: reports, logger: logger}
}

func (s *catalogSearch) Search(ctx context.Context, partition domain.Partition, currentJobID, freeText string) ([]domain.Candidate, error) {
	if !partition.Valid() {
		return nil, fmt.Errorf("unknown partition %q: %w", string(partition), domain.ErrNotFound)
	}

	freeText = strings.TrimSpace(freeText)
	if utf8.RuneCountInString(freeText) < minSearchLength {
		return nil, nil
	}

	var (
		mu          sync.Mutex
		masters     []*domain.Asset
		kindReports = make(map[domain.ReportKind][]*domain.Report)
	)

	// Fan out over the master catalog and every report-kind table. A
	// failed sub-query is logged and its contribution omitted; the
	// search as a whole only stops when the caller cancels.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchWorkers)

	g.Go(func() error {
		found, err := s.assets.SearchMasterAssets(gctx, partition, freeText, currentJobID)
		if err != nil {
			s.logger.Warn("master asset search failed, omitting",
				zap.String("partition", string(partition)),
				zap.Error(err),
			)
			return nil
		}
		mu.Lock()
		masters = found
		mu.Unlock()
		return nil
	})

	for _, kind := range domain.AllReportKinds {
		kind := kind
		g.Go(func() error {
			found, err := s.reports.SearchReports(gctx, partition, kind, freeText, currentJobID)
			if err != nil {
				s.logger.Warn("report search failed, omitting kind",
					zap.String("partition", string(partition)),
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			kindReports[kind] = found
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return mergeCandidates(partition, masters, kindReports), nil
}

// mergeCandidates produces the deterministic result order: masters
// first (most recent first), then report candidates (most recent
// first), with report candidates shadowed by a master of the same
// identity dropped.
func mergeCandidates(partition domain.Partition, masters []*domain.Asset, kindReports map[domain.ReportKind][]*domain.Report) []domain.Candidate {
	var out []domain.Candidate

	masterIdentities := make(map[string]struct{}, len(masters))
	for _, a := range masters {
		masterIdentities[a.AssetIdentity] = struct{}{}
		out = append(out, domain.Candidate{
			Source:      domain.CandidateFromMaster,
			Partition:   partition,
			DisplayName: a.Name,
			Identity:    a.AssetIdentity,
			AssetID:     a.AssetID,
			ReportKind:  a.ReportKind,
			JobID:       a.JobID,
			IsMaster:    true,
			Status:      domain.StatusUnknown,
			UpdatedAt:   a.UpdatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	var derived []domain.Candidate
	for kind, reports := range kindReports {
		for _, r := range reports {
			identity := kind.ExtractIdentity(r.Payload)
			if _, shadowed := masterIdentities[identity]; shadowed {
				continue
			}
			name := r.Payload.String("customer_name")
			if name == "" {
				name = identity
			}
			kind := kind
			jobID := r.JobID
			derived = append(derived, domain.Candidate{
				Source:      domain.CandidateFromReport,
				Partition:   partition,
				DisplayName: fmt.Sprintf("%s (%s)", name, kind.Label()),
				Identity:    identity,
				ReportKind:  &kind,
				ReportID:    r.ReportID,
				JobID:       &jobID,
				IsMaster:    false,
				Status:      domain.NormalizeStatus(string(r.Status)),
				UpdatedAt:   r.UpdatedAt,
			})
		}
	}
	sort.SliceStable(derived, func(i, j int) bool {
		if !derived[i].UpdatedAt.Equal(derived[j].UpdatedAt) {
			return derived[i].UpdatedAt.After(derived[j].UpdatedAt)
		}
		// stable tiebreak so merge order is deterministic across runs
		return derived[i].ReportID < derived[j].ReportID
	})

	return append(out, derived...)
}
