package domain

import (
	"strings"
	"time"
)

// ReportStatus is the closed lifecycle vocabulary for a report.
type ReportStatus string

const (
	StatusPass     ReportStatus = "PASS"
	StatusFail     ReportStatus = "FAIL"
	StatusTemplate ReportStatus = "TEMPLATE"
	StatusUnknown  ReportStatus = "UNKNOWN"
)

// NormalizeStatus maps a stored status value onto the display
// vocabulary. Anything other than PASS/FAIL comes back as UNKNOWN so
// listings keep a closed set of values.
func NormalizeStatus(s string) ReportStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusPass):
		return StatusPass
	case string(StatusFail):
		return StatusFail
	}
	return StatusUnknown
}

// Payload is a report's equipment-specific structured data, stored as
// JSONB. Keys are kind-dependent; lineage annotations live here too.
type Payload map[string]any

// PayloadKeyRetestOf carries the originating job id on a cloned report.
// Lineage is payload-only: it never becomes the authoritative job
// pointer of the clone.
const PayloadKeyRetestOf = "retest_of_job_id"

// String returns the payload value under key when it is a non-empty
// string, and "" otherwise.
func (p Payload) String(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// HasRealData reports whether the payload carries at least one
// recognizable field for the kind (a searchable column or an identity
// key). A structurally empty template fails this check.
func (k ReportKind) HasRealData(p Payload) bool {
	for _, key := range k.SearchColumns() {
		if p.String(key) != "" {
			return true
		}
	}
	for _, key := range k.IdentityKeys() {
		if p.String(key) != "" {
			return true
		}
	}
	return false
}

// ExtractIdentity pulls the asset identity out of a payload using the
// kind's ordered identity keys, falling back to "Unknown".
func (k ReportKind) ExtractIdentity(p Payload) string {
	for _, key := range k.IdentityKeys() {
		if v := p.String(key); v != "" {
			return v
		}
	}
	return "Unknown"
}

// Report is a typed test record stored in a kind-specific table within
// a partition.
type Report struct {
	ReportID  string       `db:"report_id"`
	JobID     string       `db:"job_id"`
	Kind      ReportKind   `db:"-"`
	Status    ReportStatus `db:"status"`
	Payload   Payload      `db:"payload"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	DeletedAt *time.Time   `db:"deleted_at"`
}
