package service

import (
	"context"
	"testing"
	"time"

	"github.com/186mph/calsoft-assets/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSearchFixture() (*fakeAssetsRepo, *fakeReportsRepo, CatalogSearch) {
	assets := newFakeAssetsRepo()
	reports := newFakeReportsRepo()
	search := NewCatalogSearch(assets, reports, zap.NewNop())
	return assets, reports, search
}

func TestSearch_ShortQueryIsNoop(t *testing.T) {
	_, _, search := newSearchFixture()

	for _, q := range []string{"", "b", "  b  "} {
		out, err := search.Search(context.Background(), domain.PartitionNETA, "job-1", q)
		require.NoError(t, err)
		assert.Nil(t, out, "query %q should not scan", q)
	}
}

func TestSearch_UnknownPartition(t *testing.T) {
	_, _, search := newSearchFixture()

	_, err := search.Search(context.Background(), domain.Partition("bogus"), "job-1", "BT-004")
	assert.Error(t, err)
}

// A master asset and a report candidate resolving to the same identity
// collapse to one actionable choice: the master.
func TestSearch_MasterShadowsReport(t *testing.T) {
	assets, reports, search := newSearchFixture()

	assets.addAsset(domain.PartitionNETA, &domain.Asset{
		CustomerID:    "cust-1",
		AssetIdentity: "BT-004",
		Name:          "Truck-7",
	})
	reports.addReport(domain.PartitionNETA, &domain.Report{
		JobID:   "job-old",
		Kind:    domain.KindBucketTruckTest,
		Status:  domain.StatusPass,
		Payload: domain.Payload{"customer_name": "Acme", "truck_number": "BT-004"},
	})

	out, err := search.Search(context.Background(), domain.PartitionNETA, "job-current", "BT-004")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsMaster)
	assert.Equal(t, "BT-004", out[0].Identity)
	assert.Equal(t, domain.CandidateFromMaster, out[0].Source)
}

func TestSearch_MergeOrderMastersFirstThenRecent(t *testing.T) {
	assets, reports, search := newSearchFixture()

	now := time.Now()
	assets.addAsset(domain.PartitionLab, &domain.Asset{
		CustomerID: "cust-1", AssetIdentity: "1-0001", Name: "Acme Glove A",
		UpdatedAt: now.Add(-2 * time.Hour),
	})
	assets.addAsset(domain.PartitionLab, &domain.Asset{
		CustomerID: "cust-1", AssetIdentity: "1-0002", Name: "Acme Glove B",
		UpdatedAt: now.Add(-1 * time.Hour),
	})
	reports.addReport(domain.PartitionLab, &domain.Report{
		JobID: "job-old", Kind: domain.KindGloveTest, Status: domain.StatusFail,
		Payload:   domain.Payload{"customer_name": "Acme", "asset_id": "1-0010"},
		UpdatedAt: now.Add(-3 * time.Hour),
	})
	reports.addReport(domain.PartitionLab, &domain.Report{
		JobID: "job-old", Kind: domain.KindSleeveTest, Status: domain.StatusPass,
		Payload:   domain.Payload{"customer_name": "Acme", "asset_id": "1-0011"},
		UpdatedAt: now.Add(-1 * time.Minute),
	})

	out, err := search.Search(context.Background(), domain.PartitionLab, "job-current", "Acme")
	require.NoError(t, err)
	require.Len(t, out, 4)

	// masters first, newest first
	assert.True(t, out[0].IsMaster)
	assert.Equal(t, "1-0002", out[0].Identity)
	assert.True(t, out[1].IsMaster)
	assert.Equal(t, "1-0001", out[1].Identity)
	// then report candidates, newest first
	assert.False(t, out[2].IsMaster)
	assert.Equal(t, "1-0011", out[2].Identity)
	assert.Equal(t, domain.StatusPass, out[2].Status)
	assert.Equal(t, "1-0010", out[3].Identity)
	assert.Equal(t, domain.StatusFail, out[3].Status)
}

// Records already attached to the current job are not re-offered.
func TestSearch_ExcludesCurrentJob(t *testing.T) {
	assets, reports, search := newSearchFixture()

	jobID := "job-current"
	assets.addAsset(domain.PartitionNETA, &domain.Asset{
		CustomerID: "cust-1", JobID: &jobID, AssetIdentity: "42-0005", Name: "Acme Meter",
	})
	reports.addReport(domain.PartitionNETA, &domain.Report{
		JobID: jobID, Kind: domain.KindMeterTest, Status: domain.StatusPass,
		Payload: domain.Payload{"customer_name": "Acme", "meter_serial": "M-1"},
	})

	out, err := search.Search(context.Background(), domain.PartitionNETA, jobID, "Acme")
	require.NoError(t, err)
	assert.Empty(t, out)
}

// One report-kind table failing drops only that kind's contribution.
func TestSearch_PartialFailureOmitsKind(t *testing.T) {
	assets, reports, search := newSearchFixture()

	reports.failKinds[domain.KindGloveTest] = domain.ErrBackendUnavailable
	reports.addReport(domain.PartitionLab, &domain.Report{
		JobID: "job-old", Kind: domain.KindGloveTest, Status: domain.StatusPass,
		Payload: domain.Payload{"customer_name": "Acme"},
	})
	reports.addReport(domain.PartitionLab, &domain.Report{
		JobID: "job-old", Kind: domain.KindMeterTest, Status: domain.StatusPass,
		Payload: domain.Payload{"customer_name": "Acme", "meter_serial": "M-2"},
	})
	assets.addAsset(domain.PartitionLab, &domain.Asset{
		CustomerID: "cust-1", AssetIdentity: "1-0001", Name: "Acme Sleeve",
	})

	out, err := search.Search(context.Background(), domain.PartitionLab, "job-current", "Acme")
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, c := range out {
		if c.ReportKind != nil {
			assert.NotEqual(t, domain.KindGloveTest, *c.ReportKind)
		}
	}
}

// Soft-deleted records never show up in search results.
func TestSearch_SoftDeletedExcluded(t *testing.T) {
	assets, _, search := newSearchFixture()

	asset := assets.addAsset(domain.PartitionNETA, &domain.Asset{
		CustomerID: "cust-1", AssetIdentity: "42-0009", Name: "Acme Truck",
	})
	require.NoError(t, assets.SoftDeleteAsset(context.Background(), domain.PartitionNETA, asset.AssetID))

	out, err := search.Search(context.Background(), domain.PartitionNETA, "job-1", "Acme")
	require.NoError(t, err)
	assert.Empty(t, out)

	// the row itself survives for audit
	got, err := assets.GetAsset(context.Background(), domain.PartitionNETA, asset.AssetID, true)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)
}

func TestSearch_Cancelled(t *testing.T) {
	_, _, search := newSearchFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := search.Search(ctx, domain.PartitionNETA, "job-1", "Acme")
	assert.ErrorIs(t, err, context.Canceled)
}
