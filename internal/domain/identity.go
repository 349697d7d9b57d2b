package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// maxCompanyKey guards against junk keys (e.g. a row id pasted into the
// company-number field) claiming huge namespaces.
const maxCompanyKey = 1000000

// ResolveCompanyKey resolves a customer's company key to the small
// positive integer namespace used for identity issuance. Malformed or
// missing keys fall back to def so the caller is never blocked on an
// identity lookup.
func ResolveCompanyKey(raw string, def int) int {
	key, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || key <= 0 || key > maxCompanyKey {
		return def
	}
	return key
}

// FormatIdentity renders an asset identity using the namespace's fixed
// prefix/padding convention, e.g. key 42, seq 1 -> "42-0001".
func FormatIdentity(companyKey, seq int) string {
	return fmt.Sprintf("%d-%04d", companyKey, seq)
}
