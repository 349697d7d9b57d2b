package domain

import "time"

// Asset is a catalog entry for a physical item (glove, bucket truck,
// meter) or a generic document, always scoped to one partition. A
// "master" asset has no job yet and acts as the template/source for
// Link and Promote.
type Asset struct {
	AssetID       string      `db:"asset_id"`
	CustomerID    string      `db:"customer_id"`
	JobID         *string     `db:"job_id"`
	AssetIdentity string      `db:"asset_identity"`
	Name          string      `db:"name"`
	ReportKind    *ReportKind `db:"report_kind"`
	ReportID      *string     `db:"report_id"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
	DeletedAt     *time.Time  `db:"deleted_at"`
}

// IsMaster reports whether the asset is a catalog-level entry not yet
// attached to any job.
func (a *Asset) IsMaster() bool {
	return a.JobID == nil || *a.JobID == ""
}

// HasReport reports whether the asset points at a report row.
func (a *Asset) HasReport() bool {
	return a.ReportKind != nil && a.ReportID != nil && *a.ReportID != ""
}
