package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportKind_TableNamesUnique(t *testing.T) {
	seen := map[string]ReportKind{}
	for _, k := range AllReportKinds {
		table := k.TableName()
		assert.NotEmpty(t, table, "kind %s has no table", k)
		prev, dup := seen[table]
		assert.False(t, dup, "kinds %s and %s share table %s", prev, k, table)
		seen[table] = k
	}
}

func TestReportKind_EveryKindSearchable(t *testing.T) {
	for _, k := range AllReportKinds {
		assert.NotEmpty(t, k.SearchColumns(), "kind %s has no search columns", k)
		assert.NotEmpty(t, k.IdentityKeys(), "kind %s has no identity keys", k)
		assert.NotEmpty(t, k.Label(), "kind %s has no label", k)
		assert.True(t, k.Valid())
	}
}

func TestReportKind_Invalid(t *testing.T) {
	assert.False(t, ReportKind("transformer-test").Valid())
	assert.Empty(t, ReportKind("transformer-test").TableName())
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusPass, NormalizeStatus("PASS"))
	assert.Equal(t, StatusPass, NormalizeStatus(" pass "))
	assert.Equal(t, StatusFail, NormalizeStatus("FAIL"))
	assert.Equal(t, StatusUnknown, NormalizeStatus("TEMPLATE"))
	assert.Equal(t, StatusUnknown, NormalizeStatus("NEEDS-REVIEW"))
	assert.Equal(t, StatusUnknown, NormalizeStatus(""))
}

func TestHasRealData(t *testing.T) {
	assert.False(t, KindGloveTest.HasRealData(Payload{}))
	assert.False(t, KindGloveTest.HasRealData(nil))
	assert.False(t, KindGloveTest.HasRealData(Payload{"customer_name": "   "}))
	// unrecognized keys alone do not count as real data
	assert.False(t, KindGloveTest.HasRealData(Payload{"scratch": "notes"}))

	assert.True(t, KindGloveTest.HasRealData(Payload{"customer_name": "Acme"}))
	assert.True(t, KindBucketTruckTest.HasRealData(Payload{"truck_number": "BT-004"}))
}

func TestExtractIdentity(t *testing.T) {
	assert.Equal(t, "G-100", KindGloveTest.ExtractIdentity(Payload{"asset_id": "G-100"}))
	// ordered fallback: asset_id wins over truck_number
	assert.Equal(t, "42-0007", KindBucketTruckTest.ExtractIdentity(Payload{
		"asset_id":     "42-0007",
		"truck_number": "BT-004",
	}))
	assert.Equal(t, "BT-004", KindBucketTruckTest.ExtractIdentity(Payload{"truck_number": "BT-004"}))
	assert.Equal(t, "Unknown", KindGloveTest.ExtractIdentity(Payload{}))
}

func TestResolveCompanyKey(t *testing.T) {
	assert.Equal(t, 42, ResolveCompanyKey("42", 1))
	assert.Equal(t, 42, ResolveCompanyKey(" 42 ", 1))
	assert.Equal(t, 1, ResolveCompanyKey("", 1))
	assert.Equal(t, 1, ResolveCompanyKey("Acme-key", 1))
	assert.Equal(t, 1, ResolveCompanyKey("-5", 1))
	assert.Equal(t, 1, ResolveCompanyKey("99999999", 1))
}

func TestFormatIdentity(t *testing.T) {
	assert.Equal(t, "42-0001", FormatIdentity(42, 1))
	assert.Equal(t, "1-0134", FormatIdentity(1, 134))
	assert.Equal(t, "7-12345", FormatIdentity(7, 12345))
}

func TestPayloadClone(t *testing.T) {
	src := Payload{"customer_name": "Acme"}
	dst := src.Clone()
	dst["customer_name"] = "Globex"
	assert.Equal(t, "Acme", src.String("customer_name"))
	assert.NotNil(t, Payload(nil).Clone())
}

func TestAssetIsMaster(t *testing.T) {
	job := "job-1"
	assert.True(t, (&Asset{}).IsMaster())
	assert.False(t, (&Asset{JobID: &job}).IsMaster())
	empty := ""
	assert.True(t, (&Asset{JobID: &empty}).IsMaster())
}
