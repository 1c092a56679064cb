package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/watersafety/asset-management-backend/internal/domain"
)

// emptyLocalStore skips seeding so tests start from a clean collection.
func emptyLocalStore() *LocalStore {
	return &LocalStore{kv: newMemoryStorage()}
}

func strPtr(s string) *string { return &s }

func TestSeedingIdempotent(t *testing.T) {
	s := NewLocalStore("")

	assets, err := s.GetAllAssets(context.Background())
	if err != nil {
		t.Fatalf("GetAllAssets: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("seeded %d assets, want 2", len(assets))
	}

	assetTypes, err := s.GetAllAssetTypes(context.Background())
	if err != nil {
		t.Fatalf("GetAllAssetTypes: %v", err)
	}
	if len(assetTypes) != 4 {
		t.Fatalf("seeded %d asset types, want 4", len(assetTypes))
	}

	// A second initialize must not duplicate anything.
	s.initialize()
	assets, _ = s.GetAllAssets(context.Background())
	if len(assets) != 2 {
		t.Errorf("after re-initialize got %d assets, want 2", len(assets))
	}
}

func TestSeedingSkippedWhenDataExists(t *testing.T) {
	dir := t.TempDir()

	s := NewLocalStore(dir)
	created, err := s.CreateAsset(context.Background(), domain.Asset{AssetBarcode: "WT-100"})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	// A fresh store over the same directory sees the persisted data and
	// does not reseed.
	s2 := NewLocalStore(dir)
	assets, _ := s2.GetAllAssets(context.Background())
	if len(assets) != 3 {
		t.Fatalf("got %d assets, want 3 (2 seeded + 1 created)", len(assets))
	}
	found := false
	for _, a := range assets {
		if a.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("created asset missing after reopen")
	}
}

func TestCreateAssetAuditTrail(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	created, err := s.CreateAsset(ctx, domain.Asset{AssetBarcode: "WT-010", CreatedBy: "alice"})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	if created.ID == "" || created.Created == "" || created.Modified == "" {
		t.Fatalf("provenance not stamped: %+v", created)
	}

	logs, _ := s.GetAuditLogs(ctx, "")
	if len(logs) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(logs))
	}
	entry := logs[0]
	if entry.Action != domain.ActionCreate {
		t.Errorf("action = %q, want CREATE", entry.Action)
	}
	if entry.User != "alice" {
		t.Errorf("user = %q, want alice", entry.User)
	}
	if entry.AssetID != created.ID {
		t.Errorf("assetId = %q, want %q", entry.AssetID, created.ID)
	}
	// Details round-trip through the JSON medium as a map holding the
	// full created asset.
	details, ok := entry.Details.(map[string]any)
	if !ok {
		t.Fatalf("details is %T, want a decoded object", entry.Details)
	}
	if details["id"] != created.ID {
		t.Errorf("details id = %v, want %q", details["id"], created.ID)
	}
	if details["assetBarcode"] != "WT-010" {
		t.Errorf("details barcode = %v, want WT-010", details["assetBarcode"])
	}
	if details["created"] != created.Created {
		t.Errorf("details created = %v, want %q", details["created"], created.Created)
	}
}

func TestCreateAssetUnknownUser(t *testing.T) {
	s := emptyLocalStore()

	if _, err := s.CreateAsset(context.Background(), domain.Asset{AssetBarcode: "WT-011"}); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	logs, _ := s.GetAuditLogs(context.Background(), "")
	if logs[0].User != "Unknown" {
		t.Errorf("user = %q, want Unknown", logs[0].User)
	}
}

func TestCreateAssetIDsUnique(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		a, err := s.CreateAsset(ctx, domain.Asset{AssetBarcode: "WT"})
		if err != nil {
			t.Fatalf("CreateAsset: %v", err)
		}
		if seen[a.ID] {
			t.Fatalf("duplicate id %q", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestUpdateAsset(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	created, _ := s.CreateAsset(ctx, domain.Asset{AssetBarcode: "WT-020", Status: "ACTIVE", CreatedBy: "alice"})

	updates := domain.AssetUpdate{
		Status:     strPtr("MAINTENANCE"),
		ModifiedBy: strPtr("bob"),
	}
	updated, err := s.UpdateAsset(ctx, created.ID, updates)
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if updated == nil {
		t.Fatal("UpdateAsset returned nil for an existing id")
	}
	if updated.ID != created.ID {
		t.Errorf("id changed on update: %q -> %q", created.ID, updated.ID)
	}
	if updated.Status != "MAINTENANCE" {
		t.Errorf("status = %q, want MAINTENANCE", updated.Status)
	}
	if updated.AssetBarcode != "WT-020" {
		t.Errorf("barcode lost in merge: %q", updated.AssetBarcode)
	}
	if updated.CreatedBy != "alice" {
		t.Errorf("createdBy changed: %q", updated.CreatedBy)
	}

	logs, _ := s.GetAuditLogs(ctx, created.ID)
	if len(logs) != 2 {
		t.Fatalf("got %d audit entries, want 2 (create + update)", len(logs))
	}
	entry := logs[1]
	if entry.Action != domain.ActionUpdate || entry.User != "bob" {
		t.Errorf("entry = %+v, want UPDATE by bob", entry)
	}
	// Update details carry the partial input, not the merged record.
	details, ok := entry.Details.(map[string]any)
	if !ok {
		t.Fatalf("details is %T, want a decoded object", entry.Details)
	}
	if details["status"] != "MAINTENANCE" {
		t.Errorf("details status = %v, want MAINTENANCE", details["status"])
	}
	if _, present := details["assetBarcode"]; present {
		t.Error("details should not contain fields the partial never set")
	}
}

func TestUpdateAssetAbsent(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	s.CreateAsset(ctx, domain.Asset{AssetBarcode: "WT-030"})
	before, _ := s.GetAllAssets(ctx)
	logsBefore, _ := s.GetAuditLogs(ctx, "")

	updated, err := s.UpdateAsset(ctx, "no-such-id", domain.AssetUpdate{Status: strPtr("X")})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if updated != nil {
		t.Fatal("update of an absent id must return nil")
	}

	after, _ := s.GetAllAssets(ctx)
	if len(after) != len(before) {
		t.Error("collection changed on absent update")
	}
	logsAfter, _ := s.GetAuditLogs(ctx, "")
	if len(logsAfter) != len(logsBefore) {
		t.Error("audit entry appended on absent update")
	}
}

func TestDeleteAsset(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	created, _ := s.CreateAsset(ctx, domain.Asset{AssetBarcode: "WT-040"})

	removed, err := s.DeleteAsset(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if !removed {
		t.Fatal("DeleteAsset = false for an existing id")
	}

	got, _ := s.GetAssetByID(ctx, created.ID)
	if got != nil {
		t.Error("asset still present after delete")
	}

	logs, _ := s.GetAuditLogs(ctx, created.ID)
	if len(logs) != 2 {
		t.Fatalf("got %d audit entries, want 2", len(logs))
	}
	entry := logs[1]
	if entry.Action != domain.ActionDelete || entry.User != "System" {
		t.Errorf("entry = %+v, want DELETE by System", entry)
	}
	if entry.Details != nil {
		t.Errorf("delete entry carries details: %+v", entry.Details)
	}

	// The audit trail survives the asset.
	if entry.AssetID != created.ID {
		t.Errorf("assetId = %q, want %q", entry.AssetID, created.ID)
	}
}

func TestDeleteAssetAbsent(t *testing.T) {
	s := emptyLocalStore()

	removed, err := s.DeleteAsset(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if removed {
		t.Error("DeleteAsset = true for an absent id")
	}
	logs, _ := s.GetAuditLogs(context.Background(), "")
	if len(logs) != 0 {
		t.Errorf("got %d audit entries, want 0", len(logs))
	}
}

func TestBulkCreateNoAudit(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	batch := []domain.Asset{
		{AssetBarcode: "B-1"},
		{AssetBarcode: "B-2"},
		{AssetBarcode: "B-3"},
	}
	created, err := s.BulkCreateAssets(ctx, batch)
	if err != nil {
		t.Fatalf("BulkCreateAssets: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("created %d assets, want 3", len(created))
	}

	seen := map[string]bool{}
	for _, a := range created {
		if a.ID == "" || seen[a.ID] {
			t.Errorf("bad or duplicate id %q", a.ID)
		}
		seen[a.ID] = true
	}

	all, _ := s.GetAllAssets(ctx)
	if len(all) != 3 {
		t.Errorf("collection holds %d assets, want 3", len(all))
	}

	logs, _ := s.GetAuditLogs(ctx, "")
	if len(logs) != 0 {
		t.Errorf("bulk create appended %d audit entries, want 0", len(logs))
	}
}

func TestCleanupBlankAssets(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	s.CreateAsset(ctx, domain.Asset{AssetBarcode: "WT-050"})
	s.CreateAsset(ctx, domain.Asset{AssetBarcode: ""})
	s.CreateAsset(ctx, domain.Asset{AssetBarcode: "   "})

	count, err := s.CleanupBlankAssets(ctx)
	if err != nil {
		t.Fatalf("CleanupBlankAssets: %v", err)
	}
	if count != 2 {
		t.Errorf("deleted %d, want 2", count)
	}
	remaining, _ := s.GetAllAssets(ctx)
	if len(remaining) != 1 || remaining[0].AssetBarcode != "WT-050" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestCorruptStorageTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, assetsKey+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &LocalStore{kv: &fileStorage{dir: dir}}
	assets, err := s.GetAllAssets(context.Background())
	if err != nil {
		t.Fatalf("corrupt storage surfaced an error: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("got %d assets from corrupt storage, want 0", len(assets))
	}
}

func TestAssetTypes(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	created, err := s.CreateAssetType(ctx, "Drinking Fountain", "alice")
	if err != nil {
		t.Fatalf("CreateAssetType: %v", err)
	}
	if created.TypeID == "" || created.Label != "Drinking Fountain" || created.CreatedBy != "alice" {
		t.Fatalf("created = %+v", created)
	}

	removed, err := s.DeleteAssetType(ctx, created.TypeID)
	if err != nil {
		t.Fatalf("DeleteAssetType: %v", err)
	}
	if !removed {
		t.Error("DeleteAssetType = false for an existing id")
	}

	removed, _ = s.DeleteAssetType(ctx, created.TypeID)
	if removed {
		t.Error("DeleteAssetType = true for an absent id")
	}

	// Type operations leave no audit trail.
	logs, _ := s.GetAuditLogs(ctx, "")
	if len(logs) != 0 {
		t.Errorf("asset type operations appended %d audit entries, want 0", len(logs))
	}
}

func TestScanAssetPage(t *testing.T) {
	s := emptyLocalStore()
	ctx := context.Background()

	batch := make([]domain.Asset, 7)
	for i := range batch {
		batch[i] = domain.Asset{AssetBarcode: "P"}
	}
	s.BulkCreateAssets(ctx, batch)

	var got []domain.Asset
	cursor := ""
	pages := 0
	for {
		page, err := s.ScanAssetPage(ctx, cursor, 3)
		if err != nil {
			t.Fatalf("ScanAssetPage: %v", err)
		}
		got = append(got, page.Items...)
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if len(got) != 7 {
		t.Errorf("paged through %d assets, want 7", len(got))
	}
	if pages != 3 {
		t.Errorf("took %d pages, want 3", pages)
	}
}
