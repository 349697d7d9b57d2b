package domain

import "time"

// CandidateSource tags where a search candidate came from.
type CandidateSource string

const (
	CandidateFromMaster CandidateSource = "master"
	CandidateFromReport CandidateSource = "report"
)

// Candidate is one actionable search result: either a master asset or
// a report-derived summary. Master candidates take precedence over
// report candidates resolving to the same identity.
type Candidate struct {
	Source      CandidateSource `json:"source"`
	Partition   Partition       `json:"partition"`
	DisplayName string          `json:"display_name"`
	Identity    string          `json:"identity,omitempty"`
	AssetID     string          `json:"asset_id,omitempty"`
	ReportKind  *ReportKind     `json:"report_kind,omitempty"`
	ReportID    string          `json:"report_id,omitempty"`
	JobID       *string         `json:"job_id,omitempty"`
	IsMaster    bool            `json:"is_master"`
	Status      ReportStatus    `json:"status"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
