package domain

// ReportKind is the closed enumeration of test-record kinds. Each kind
// owns its storage table, its searchable payload columns and its
// identity-extraction rule, so adding a kind is a single change here
// checked by the exhaustive switches below.
type ReportKind string

const (
	KindGloveTest       ReportKind = "glove-test"
	KindSleeveTest      ReportKind = "sleeve-test"
	KindBucketTruckTest ReportKind = "bucket-truck-test"
	KindMeterTest       ReportKind = "meter-test"
	KindEngineering     ReportKind = "engineering-report"
	KindDocument        ReportKind = "document"
)

// AllReportKinds lists every known report kind in search-merge order.
var AllReportKinds = []ReportKind{
	KindGloveTest,
	KindSleeveTest,
	KindBucketTruckTest,
	KindMeterTest,
	KindEngineering,
	KindDocument,
}

// Valid reports whether k names a known report kind.
func (k ReportKind) Valid() bool {
	switch k {
	case KindGloveTest, KindSleeveTest, KindBucketTruckTest,
		KindMeterTest, KindEngineering, KindDocument:
		return true
	}
	return false
}

// TableName returns the kind-specific report table.
func (k ReportKind) TableName() string {
	switch k {
	case KindGloveTest:
		return "glove_test_reports"
	case KindSleeveTest:
		return "sleeve_test_reports"
	case KindBucketTruckTest:
		return "bucket_truck_reports"
	case KindMeterTest:
		return "meter_test_reports"
	case KindEngineering:
		return "engineering_reports"
	case KindDocument:
		return "documents"
	}
	return ""
}

// Label returns the display name for the kind.
func (k ReportKind) Label() string {
	switch k {
	case KindGloveTest:
		return "Glove Test"
	case KindSleeveTest:
		return "Sleeve Test"
	case KindBucketTruckTest:
		return "Bucket Truck Test"
	case KindMeterTest:
		return "Meter Test"
	case KindEngineering:
		return "Engineering Report"
	case KindDocument:
		return "Document"
	}
	return string(k)
}

// SearchColumns returns the payload keys Catalog Search matches free
// text against for this kind. Every kind also matches on asset_id.
func (k ReportKind) SearchColumns() []string {
	switch k {
	case KindGloveTest:
		return []string{"customer_name", "manufacturer", "glove_class"}
	case KindSleeveTest:
		return []string{"customer_name", "manufacturer", "sleeve_class"}
	case KindBucketTruckTest:
		return []string{"customer_name", "truck_number", "serial_number"}
	case KindMeterTest:
		return []string{"customer_name", "meter_serial", "model"}
	case KindEngineering:
		return []string{"customer_name", "equipment_location", "equipment_name"}
	case KindDocument:
		return []string{"customer_name", "title"}
	}
	return nil
}

// IdentityKeys returns the ordered payload keys tried when extracting
// the asset identity from a report payload.
func (k ReportKind) IdentityKeys() []string {
	switch k {
	case KindGloveTest, KindSleeveTest, KindEngineering, KindDocument:
		return []string{"asset_id"}
	case KindBucketTruckTest:
		return []string{"asset_id", "truck_number"}
	case KindMeterTest:
		return []string{"asset_id", "meter_serial"}
	}
	return nil
}
