package domain

import "time"

// Job is a unit of work belonging to a customer. Its division tag
// selects the partition at creation time and is immutable thereafter.
type Job struct {
	JobID      string     `db:"job_id"`
	CustomerID string     `db:"customer_id"`
	Division   Partition  `db:"division"`
	JobNumber  string     `db:"job_number"`
	Title      string     `db:"title"`
	CreatedAt  time.Time  `db:"created_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

// Customer has a company key used as the namespace for identity
// issuance. The same company key may appear in more than one
// partition's customer table; issuance treats all occurrences as one
// namespace.
type Customer struct {
	CustomerID string `db:"customer_id"`
	CompanyKey string `db:"company_key"`
	Name       string `db:"name"`
}
