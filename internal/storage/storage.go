package storage

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/watersafety/asset-management-backend/internal/cloud"
	"github.com/watersafety/asset-management-backend/internal/domain"
)

// Store is the uniform backend capability both implementations satisfy.
// Not-found is a nil result for GetAssetByID/UpdateAsset and false for the
// delete operations, never an error.
type Store interface {
	GetAllAssets(ctx context.Context) ([]domain.Asset, error)
	GetAssetByID(ctx context.Context, id string) (*domain.Asset, error)
	CreateAsset(ctx context.Context, asset domain.Asset) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, id string, updates domain.AssetUpdate) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) (bool, error)
	BulkCreateAssets(ctx context.Context, assets []domain.Asset) ([]domain.Asset, error)
	CleanupBlankAssets(ctx context.Context) (int, error)

	LogAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error
	GetAuditLogs(ctx context.Context, assetID string) ([]domain.AuditLogEntry, error)

	GetAllAssetTypes(ctx context.Context) ([]domain.AssetType, error)
	CreateAssetType(ctx context.Context, label, createdBy string) (*domain.AssetType, error)
	DeleteAssetType(ctx context.Context, typeID string) (bool, error)
}

// AssetPage is one page of a sequential asset scan. Cursor is opaque to the
// caller; an empty NextCursor means the scan is exhausted.
type AssetPage struct {
	Items      []domain.Asset
	NextCursor string
}

// AssetPager is the paginated read capability the template export path uses.
type AssetPager interface {
	ScanAssetPage(ctx context.Context, cursor string, limit int32) (AssetPage, error)
}

// Options selects and parameterises the backend. The choice is made once at
// construction and never varies per call.
type Options struct {
	UseLocal     bool
	LocalDataDir string

	Region          string
	AssetsTable     string
	AuditTable      string
	AssetTypesTable string
}

// DB routes every call to the one backend chosen at startup. It owns no
// state of its own. The DynamoDB client is constructed lazily on the first
// remote call so local runs never touch AWS configuration.
type DB struct {
	opts  Options
	local *LocalStore

	remoteOnce sync.Once
	remote     *cloud.DynamoStore
	remoteErr  error
}

func New(opts Options) *DB {
	db := &DB{opts: opts}
	if opts.UseLocal {
		log.Info().Str("dataDir", opts.LocalDataDir).Msg("using local storage backend")
		db.local = NewLocalStore(opts.LocalDataDir)
	}
	return db
}

func (db *DB) backend(ctx context.Context) (Store, error) {
	if db.opts.UseLocal {
		return db.local, nil
	}
	db.remoteOnce.Do(func() {
		db.remote, db.remoteErr = cloud.NewDynamoStore(ctx, cloud.DynamoConfig{
			Region:          db.opts.Region,
			AssetsTable:     db.opts.AssetsTable,
			AuditTable:      db.opts.AuditTable,
			AssetTypesTable: db.opts.AssetTypesTable,
		})
		if db.remoteErr != nil {
			log.Error().Err(db.remoteErr).Msg("dynamodb client init failed")
		}
	})
	if db.remoteErr != nil {
		return nil, db.remoteErr
	}
	return db.remote, nil
}

func (db *DB) GetAllAssets(ctx context.Context) ([]domain.Asset, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.GetAllAssets(ctx)
}

func (db *DB) GetAssetByID(ctx context.Context, id string) (*domain.Asset, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.GetAssetByID(ctx, id)
}

func (db *DB) CreateAsset(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.CreateAsset(ctx, asset)
}

func (db *DB) UpdateAsset(ctx context.Context, id string, updates domain.AssetUpdate) (*domain.Asset, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.UpdateAsset(ctx, id, updates)
}

func (db *DB) DeleteAsset(ctx context.Context, id string) (bool, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return false, err
	}
	return b.DeleteAsset(ctx, id)
}

func (db *DB) BulkCreateAssets(ctx context.Context, assets []domain.Asset) ([]domain.Asset, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.BulkCreateAssets(ctx, assets)
}

func (db *DB) CleanupBlankAssets(ctx context.Context) (int, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return 0, err
	}
	return b.CleanupBlankAssets(ctx)
}

func (db *DB) LogAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	b, err := db.backend(ctx)
	if err != nil {
		return err
	}
	return b.LogAuditEntry(ctx, entry)
}

func (db *DB) GetAuditLogs(ctx context.Context, assetID string) ([]domain.AuditLogEntry, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.GetAuditLogs(ctx, assetID)
}

func (db *DB) GetAllAssetTypes(ctx context.Context) ([]domain.AssetType, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.GetAllAssetTypes(ctx)
}

func (db *DB) CreateAssetType(ctx context.Context, label, createdBy string) (*domain.AssetType, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.CreateAssetType(ctx, label, createdBy)
}

func (db *DB) DeleteAssetType(ctx context.Context, typeID string) (bool, error) {
	b, err := db.backend(ctx)
	if err != nil {
		return false, err
	}
	return b.DeleteAssetType(ctx, typeID)
}

// ScanAssetPage satisfies AssetPager against whichever backend is selected.
func (db *DB) ScanAssetPage(ctx context.Context, cursor string, limit int32) (AssetPage, error) {
	if db.opts.UseLocal {
		return db.local.ScanAssetPage(ctx, cursor, limit)
	}
	if _, err := db.backend(ctx); err != nil {
		return AssetPage{}, err
	}
	page, err := db.remote.ScanAssetPage(ctx, cursor, limit)
	if err != nil {
		return AssetPage{}, err
	}
	return AssetPage{Items: page.Items, NextCursor: page.NextCursor}, nil
}
