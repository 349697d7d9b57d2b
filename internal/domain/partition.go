package domain

import "fmt"

// Partition is an isolated storage domain (a Postgres schema) grouping
// jobs, assets and report tables. A record lives in exactly one
// partition for its lifetime; partitions are never merged.
type Partition string

const (
	// PartitionNETA general field operations (NETA testing division).
	PartitionNETA Partition = "neta_ops"
	// PartitionLab laboratory operations (rubber goods / calibration lab).
	PartitionLab Partition = "lab_ops"
)

// AllPartitions lists every known partition.
var AllPartitions = []Partition{PartitionNETA, PartitionLab}

// Valid reports whether p names a known partition.
func (p Partition) Valid() bool {
	switch p {
	case PartitionNETA, PartitionLab:
		return true
	}
	return false
}

// Schema returns the SQL schema name for the partition. Callers must
// have validated the partition first; Schema panics on unknown values
// so an unvalidated partition can never reach query text.
func (p Partition) Schema() string {
	if !p.Valid() {
		panic(fmt.Sprintf("unknown partition %q", string(p)))
	}
	return string(p)
}
