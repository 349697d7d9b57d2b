package service

import (
	"context"
	"fmt"
	"time"

	"github.com/186mph/calsoft-assets/internal/cache"
	"github.com/186mph/calsoft-assets/internal/domain"
	"github.com/186mph/calsoft-assets/internal/repository"

	"go.uber.org/zap"
)

// StatusProjector maps an asset's report reference to its current
// PASS/FAIL status. It runs per row inside listings, so it never
// returns an error: anything unresolvable is UNKNOWN.
type StatusProjector interface {
	ProjectStatus(ctx context.Context, partition domain.Partition, asset *domain.Asset) domain.ReportStatus
}

type statusProjector struct {
	reports repository.ReportsRepository
	kv      cache.KV // nil disables caching
	ttl     time.Duration
	logger  *zap.Logger
}

// NewStatusProjector creates a StatusProjector. kv may be nil; cache
// failures fall through to a direct read.
func NewStatusProjector(reports repository.ReportsRepository, kv cache.KV, ttl time.Duration, logger *zap.Logger) StatusProjector {
	return &statusProjector{reports: reports, kv: kv, ttl: ttl, logger: logger}
}

func (s *statusProjector) ProjectStatus(ctx context.Context, partition domain.Partition, asset *domain.Asset) domain.ReportStatus {
	if asset == nil || !asset.HasReport() || !partition.Valid() {
		return domain.StatusUnknown
	}
	kind := *asset.ReportKind
	if !kind.Valid() {
		return domain.StatusUnknown
	}
	reportID := *asset.ReportID

	key := fmt.Sprintf("calsoft:status:%s:%s:%s", partition, kind, reportID)
	if s.kv != nil {
		if val, err := s.kv.Get(ctx, key); err == nil {
			return domain.NormalizeStatus(val)
		}
	}

	raw, err := s.reports.GetReportStatus(ctx, partition, kind, reportID)
	if err != nil {
		s.logger.Debug("status projection fell back to UNKNOWN",
			zap.String("partition", string(partition)),
			zap.String("kind", string(kind)),
			zap.String("report_id", reportID),
			zap.Error(err),
		)
		return domain.StatusUnknown
	}

	status := domain.NormalizeStatus(raw)
	if s.kv != nil {
		if err := s.kv.Set(ctx, key, string(status), s.ttl); err != nil {
			s.logger.Debug("status cache write failed", zap.Error(err))
		}
	}
	return status
}
