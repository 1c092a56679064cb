package domain

import "testing"

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestAssetUpdateApply(t *testing.T) {
	asset := Asset{
		ID:           "1700000000000",
		AssetBarcode: "WT-001",
		AssetType:    "Water Tap",
		Status:       "ACTIVE",
		FilterNeeded: true,
		Notes:        "original notes",
		Created:      "2025-01-01T00:00:00.000Z",
		CreatedBy:    "System",
		Modified:     "2025-01-01T00:00:00.000Z",
		ModifiedBy:   "System",
	}

	update := AssetUpdate{
		Status:       strPtr("MAINTENANCE"),
		FilterNeeded: boolPtr(false),
		ModifiedBy:   strPtr("engineer"),
	}
	update.Apply(&asset)

	if asset.Status != "MAINTENANCE" {
		t.Errorf("Status = %q, want MAINTENANCE", asset.Status)
	}
	if asset.FilterNeeded {
		t.Error("FilterNeeded should have been overwritten to false")
	}
	if asset.ModifiedBy != "engineer" {
		t.Errorf("ModifiedBy = %q, want engineer", asset.ModifiedBy)
	}

	// Nil fields stay untouched.
	if asset.AssetBarcode != "WT-001" || asset.AssetType != "Water Tap" || asset.Notes != "original notes" {
		t.Errorf("untouched fields changed: %+v", asset)
	}

	// Identity and creation provenance are not reachable through the
	// update type at all.
	if asset.ID != "1700000000000" || asset.Created != "2025-01-01T00:00:00.000Z" || asset.CreatedBy != "System" {
		t.Errorf("identity fields changed: %+v", asset)
	}
}

func TestAssetUpdateApplyEmpty(t *testing.T) {
	asset := Asset{ID: "1", AssetBarcode: "WT-001", Status: "ACTIVE"}
	original := asset

	var update AssetUpdate
	update.Apply(&asset)

	if asset != original {
		t.Errorf("empty update changed the asset: %+v != %+v", asset, original)
	}
}
