package storage

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/watersafety/asset-management-backend/internal/domain"
)

// Storage keys, one per entity collection. Each holds a JSON-encoded array.
const (
	assetsKey     = "watersafety_assets"
	auditKey      = "watersafety_audit"
	assetTypesKey = "watersafety_asset_types"
)

// keyValue is the storage medium behind the local backend: a JSON file per
// key when a data directory is usable, an in-process map otherwise.
type keyValue interface {
	getItem(key string) (string, bool)
	setItem(key, value string)
	removeItem(key string)
}

// memoryStorage guards the map itself but offers nothing beyond that:
// read-modify-write sequences on a collection can still interleave, which is
// acceptable for the single-developer mode this backend exists for.
type memoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{items: make(map[string]string)}
}

func (m *memoryStorage) getItem(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *memoryStorage) setItem(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

func (m *memoryStorage) removeItem(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

type fileStorage struct {
	dir string
}

func (f *fileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *fileStorage) getItem(key string) (string, bool) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (f *fileStorage) setItem(key, value string) {
	if err := os.WriteFile(f.path(key), []byte(value), 0o644); err != nil {
		log.Error().Err(err).Str("key", key).Msg("local storage write failed")
	}
}

func (f *fileStorage) removeItem(key string) {
	_ = os.Remove(f.path(key))
}

// LocalStore emulates the DynamoDB backend without any external dependency.
// It is meant for single-developer use: reads and writes of a collection are
// not atomic with respect to each other.
type LocalStore struct {
	kv keyValue
}

// NewLocalStore picks the storage medium once and seeds sample data on first
// use. An empty dataDir (or one that cannot be created) means transient
// in-process storage.
func NewLocalStore(dataDir string) *LocalStore {
	var kv keyValue
	if dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("data dir unusable, using in-memory storage")
			kv = newMemoryStorage()
		} else {
			kv = &fileStorage{dir: dataDir}
		}
	} else {
		kv = newMemoryStorage()
	}

	s := &LocalStore{kv: kv}
	s.initialize()
	return s
}

// initialize seeds sample data if the collections are empty. Idempotent.
func (s *LocalStore) initialize() {
	if len(s.readAssets()) == 0 {
		s.saveAssets(sampleAssets())
		log.Info().Msg("initialized local storage with sample assets")
	}
	if len(s.readAssetTypes()) == 0 {
		s.saveAssetTypes(sampleAssetTypes())
		log.Info().Msg("initialized local storage with sample asset types")
	}
}

func (s *LocalStore) readAssets() []domain.Asset {
	data, ok := s.kv.getItem(assetsKey)
	if !ok {
		return []domain.Asset{}
	}
	var assets []domain.Asset
	if err := json.Unmarshal([]byte(data), &assets); err != nil {
		log.Error().Err(err).Msg("error reading assets from local storage")
		return []domain.Asset{}
	}
	return assets
}

func (s *LocalStore) saveAssets(assets []domain.Asset) {
	data, _ := json.Marshal(assets)
	s.kv.setItem(assetsKey, string(data))
}

func (s *LocalStore) readAuditLogs() []domain.AuditLogEntry {
	data, ok := s.kv.getItem(auditKey)
	if !ok {
		return []domain.AuditLogEntry{}
	}
	var logs []domain.AuditLogEntry
	if err := json.Unmarshal([]byte(data), &logs); err != nil {
		log.Error().Err(err).Msg("error reading audit logs from local storage")
		return []domain.AuditLogEntry{}
	}
	return logs
}

func (s *LocalStore) appendAuditLog(entry domain.AuditLogEntry) {
	logs := append(s.readAuditLogs(), entry)
	data, _ := json.Marshal(logs)
	s.kv.setItem(auditKey, string(data))
}

func (s *LocalStore) readAssetTypes() []domain.AssetType {
	data, ok := s.kv.getItem(assetTypesKey)
	if !ok {
		return []domain.AssetType{}
	}
	var types []domain.AssetType
	if err := json.Unmarshal([]byte(data), &types); err != nil {
		log.Error().Err(err).Msg("error reading asset types from local storage")
		return []domain.AssetType{}
	}
	return types
}

func (s *LocalStore) saveAssetTypes(types []domain.AssetType) {
	data, _ := json.Marshal(types)
	s.kv.setItem(assetTypesKey, string(data))
}

func (s *LocalStore) GetAllAssets(ctx context.Context) ([]domain.Asset, error) {
	return s.readAssets(), nil
}

func (s *LocalStore) GetAssetByID(ctx context.Context, id string) (*domain.Asset, error) {
	for _, a := range s.readAssets() {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *LocalStore) CreateAsset(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	assets := s.readAssets()

	now := domain.NowISO()
	asset.ID = nextAssetID(assets)
	asset.Created = now
	asset.Modified = now

	assets = append(assets, asset)
	s.saveAssets(assets)

	user := asset.CreatedBy
	if user == "" {
		user = "Unknown"
	}
	s.appendAuditLog(domain.AuditLogEntry{
		AssetID:   asset.ID,
		Timestamp: domain.NowISO(),
		User:      user,
		Action:    domain.ActionCreate,
		Details:   asset,
	})
	return &asset, nil
}

func (s *LocalStore) UpdateAsset(ctx context.Context, id string, updates domain.AssetUpdate) (*domain.Asset, error) {
	assets := s.readAssets()
	idx := -1
	for i, a := range assets {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	updates.Apply(&assets[idx])
	assets[idx].Modified = domain.NowISO()
	s.saveAssets(assets)

	user := "Unknown"
	if updates.ModifiedBy != nil && *updates.ModifiedBy != "" {
		user = *updates.ModifiedBy
	}
	s.appendAuditLog(domain.AuditLogEntry{
		AssetID:   id,
		Timestamp: domain.NowISO(),
		User:      user,
		Action:    domain.ActionUpdate,
		Details:   updates,
	})
	return &assets[idx], nil
}

func (s *LocalStore) DeleteAsset(ctx context.Context, id string) (bool, error) {
	assets := s.readAssets()
	remaining := assets[:0:0]
	for _, a := range assets {
		if a.ID != id {
			remaining = append(remaining, a)
		}
	}
	if len(remaining) == len(assets) {
		return false, nil
	}

	s.saveAssets(remaining)
	s.appendAuditLog(domain.AuditLogEntry{
		AssetID:   id,
		Timestamp: domain.NowISO(),
		User:      "System",
		Action:    domain.ActionDelete,
	})
	return true, nil
}

// BulkCreateAssets persists the whole batch in one write and, unlike the
// single create, appends no audit entries.
func (s *LocalStore) BulkCreateAssets(ctx context.Context, assets []domain.Asset) ([]domain.Asset, error) {
	existing := s.readAssets()

	now := domain.NowISO()
	created := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		a.ID = strconv.FormatInt(time.Now().UnixMilli(), 10) + randBase36(9)
		a.Created = now
		a.Modified = now
		created = append(created, a)
	}

	s.saveAssets(append(existing, created...))
	return created, nil
}

func (s *LocalStore) CleanupBlankAssets(ctx context.Context) (int, error) {
	deleted := 0
	for _, a := range s.readAssets() {
		if strings.TrimSpace(a.AssetBarcode) == "" {
			removed, err := s.DeleteAsset(ctx, a.ID)
			if err != nil {
				return deleted, err
			}
			if removed {
				deleted++
			}
		}
	}
	return deleted, nil
}

func (s *LocalStore) LogAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	s.appendAuditLog(entry)
	return nil
}

func (s *LocalStore) GetAuditLogs(ctx context.Context, assetID string) ([]domain.AuditLogEntry, error) {
	logs := s.readAuditLogs()
	if assetID == "" {
		return logs, nil
	}
	filtered := []domain.AuditLogEntry{}
	for _, l := range logs {
		if l.AssetID == assetID {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

func (s *LocalStore) GetAllAssetTypes(ctx context.Context) ([]domain.AssetType, error) {
	return s.readAssetTypes(), nil
}

func (s *LocalStore) CreateAssetType(ctx context.Context, label, createdBy string) (*domain.AssetType, error) {
	types := s.readAssetTypes()
	newType := domain.AssetType{
		TypeID:    strconv.FormatInt(time.Now().UnixMilli(), 10),
		Label:     label,
		CreatedAt: domain.NowISO(),
		CreatedBy: createdBy,
	}
	types = append(types, newType)
	s.saveAssetTypes(types)
	return &newType, nil
}

func (s *LocalStore) DeleteAssetType(ctx context.Context, typeID string) (bool, error) {
	types := s.readAssetTypes()
	remaining := types[:0:0]
	for _, t := range types {
		if t.TypeID != typeID {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) == len(types) {
		return false, nil
	}
	s.saveAssetTypes(remaining)
	return true, nil
}

// ScanAssetPage pages over the collection in storage order. The cursor is
// the offset of the next item.
func (s *LocalStore) ScanAssetPage(ctx context.Context, cursor string, limit int32) (AssetPage, error) {
	assets := s.readAssets()

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return AssetPage{}, err
		}
		offset = n
	}
	if offset >= len(assets) {
		return AssetPage{Items: []domain.Asset{}}, nil
	}

	end := offset + int(limit)
	if end >= len(assets) {
		return AssetPage{Items: assets[offset:]}, nil
	}
	return AssetPage{Items: assets[offset:end], NextCursor: strconv.Itoa(end)}, nil
}

// nextAssetID derives an id from the current time, nudged forward if two
// creates land in the same millisecond.
func nextAssetID(existing []domain.Asset) string {
	taken := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		taken[a.ID] = struct{}{}
	}
	ms := time.Now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randBase36(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return b.String()
}

func sampleAssets() []domain.Asset {
	now := domain.NowISO()
	return []domain.Asset{
		{
			ID:                  "1",
			AssetBarcode:        "WT-001",
			Status:              "ACTIVE",
			AssetType:           "Water Tap",
			PrimaryIdentifier:   "WT-001",
			SecondaryIdentifier: "Main Floor",
			Wing:                "North Wing",
			WingInShort:         "NW",
			Room:                "Room 101",
			Floor:               "1",
			FloorInWords:        "First",
			RoomNo:              "101",
			RoomName:            "Consultation Room",
			FilterNeeded:        true,
			FiltersOn:           true,
			FilterExpiryDate:    "2025-12-31",
			FilterInstalledOn:   "2025-01-01",
			FilterType:          "Standard",
			Notes:               "Sample asset for local development",
			Created:             now,
			CreatedBy:           "System",
			Modified:            now,
			ModifiedBy:          "System",
		},
		{
			ID:                  "2",
			AssetBarcode:        "WC-001",
			Status:              "ACTIVE",
			AssetType:           "Water Cooler",
			PrimaryIdentifier:   "WC-001",
			SecondaryIdentifier: "Reception Area",
			Wing:                "South Wing",
			WingInShort:         "SW",
			Room:                "Reception",
			Floor:               "G",
			FloorInWords:        "Ground",
			RoomNo:              "REC",
			RoomName:            "Reception",
			Notes:               "Water cooler in reception",
			Created:             now,
			CreatedBy:           "System",
			Modified:            now,
			ModifiedBy:          "System",
		},
	}
}

func sampleAssetTypes() []domain.AssetType {
	now := domain.NowISO()
	return []domain.AssetType{
		{TypeID: "1", Label: "Water Tap", CreatedAt: now, CreatedBy: "System"},
		{TypeID: "2", Label: "Water Cooler", CreatedAt: now, CreatedBy: "System"},
		{TypeID: "3", Label: "LNS Outlet - TMT", CreatedAt: now, CreatedBy: "System"},
		{TypeID: "4", Label: "LNS Shower - TMT", CreatedAt: now, CreatedBy: "System"},
	}
}
