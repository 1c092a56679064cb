package cloud

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/watersafety/asset-management-backend/internal/domain"
)

// DynamoConfig names the region and tables the remote backend operates on.
type DynamoConfig struct {
	Region          string
	AssetsTable     string
	AuditTable      string
	AssetTypesTable string
}

// DynamoStore is the remote backend: one table per entity collection,
// full-table scans for list operations, no transactions. Its observable
// semantics match the local backend exactly.
type DynamoStore struct {
	svc *dynamodb.Client
	cfg DynamoConfig
}

// NewDynamoStore creates the DynamoDB client from ambient AWS configuration.
func NewDynamoStore(ctx context.Context, cfg DynamoConfig) (*DynamoStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &DynamoStore{
		svc: dynamodb.NewFromConfig(awsCfg),
		cfg: cfg,
	}, nil
}

// AssetPage is one page of a sequential scan. An empty NextCursor means the
// table is exhausted.
type AssetPage struct {
	Items      []domain.Asset
	NextCursor string
}

func (s *DynamoStore) GetAllAssets(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.svc.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.cfg.AssetsTable),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan assets: %w", err)
		}

		var page []domain.Asset
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assets: %w", err)
		}
		assets = append(assets, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return assets, nil
}

func (s *DynamoStore) GetAssetByID(ctx context.Context, id string) (*domain.Asset, error) {
	result, err := s.svc.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.cfg.AssetsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var asset domain.Asset
	if err := attributevalue.UnmarshalMap(result.Item, &asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset: %w", err)
	}
	return &asset, nil
}

func (s *DynamoStore) CreateAsset(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	now := domain.NowISO()
	asset.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	asset.Created = now
	asset.Modified = now

	item, err := attributevalue.MarshalMap(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal asset: %w", err)
	}
	_, err = s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.AssetsTable),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put asset: %w", err)
	}

	user := asset.CreatedBy
	if user == "" {
		user = "Unknown"
	}
	if err := s.LogAuditEntry(ctx, domain.AuditLogEntry{
		AssetID:   asset.ID,
		Timestamp: domain.NowISO(),
		User:      user,
		Action:    domain.ActionCreate,
		Details:   asset,
	}); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *DynamoStore) UpdateAsset(ctx context.Context, id string, updates domain.AssetUpdate) (*domain.Asset, error) {
	existing, err := s.GetAssetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	updates.Apply(existing)
	existing.Modified = domain.NowISO()

	item, err := attributevalue.MarshalMap(existing)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal asset: %w", err)
	}
	_, err = s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.AssetsTable),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put asset: %w", err)
	}

	user := "Unknown"
	if updates.ModifiedBy != nil && *updates.ModifiedBy != "" {
		user = *updates.ModifiedBy
	}
	if err := s.LogAuditEntry(ctx, domain.AuditLogEntry{
		AssetID:   id,
		Timestamp: domain.NowISO(),
		User:      user,
		Action:    domain.ActionUpdate,
		Details:   updates,
	}); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *DynamoStore) DeleteAsset(ctx context.Context, id string) (bool, error) {
	existing, err := s.GetAssetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	_, err = s.svc.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.cfg.AssetsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete asset: %w", err)
	}

	if err := s.LogAuditEntry(ctx, domain.AuditLogEntry{
		AssetID:   id,
		Timestamp: domain.NowISO(),
		User:      "System",
		Action:    domain.ActionDelete,
	}); err != nil {
		return true, err
	}
	return true, nil
}

// BulkCreateAssets writes in chunks of 25, the DynamoDB batch write limit.
// Bulk creation appends no audit entries.
func (s *DynamoStore) BulkCreateAssets(ctx context.Context, assets []domain.Asset) ([]domain.Asset, error) {
	const batchSize = 25

	now := domain.NowISO()
	created := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		a.ID = fmt.Sprintf("%d%s", time.Now().UnixMilli(), randomSuffix())
		a.Created = now
		a.Modified = now
		created = append(created, a)
	}

	for i := 0; i < len(created); i += batchSize {
		end := i + batchSize
		if end > len(created) {
			end = len(created)
		}

		batch := created[i:end]
		writeRequests := make([]types.WriteRequest, len(batch))
		for j, asset := range batch {
			item, err := attributevalue.MarshalMap(asset)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal asset %d: %w", i+j, err)
			}
			writeRequests[j] = types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			}
		}

		_, err := s.svc.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.cfg.AssetsTable: writeRequests,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to batch write assets: %w", err)
		}
	}
	return created, nil
}

func (s *DynamoStore) CleanupBlankAssets(ctx context.Context) (int, error) {
	assets, err := s.GetAllAssets(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, a := range assets {
		if strings.TrimSpace(a.AssetBarcode) != "" {
			continue
		}
		removed, err := s.DeleteAsset(ctx, a.ID)
		if err != nil {
			return deleted, err
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}

func (s *DynamoStore) LogAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	_, err = s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.AuditTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put audit entry: %w", err)
	}
	return nil
}

func (s *DynamoStore) GetAuditLogs(ctx context.Context, assetID string) ([]domain.AuditLogEntry, error) {
	if assetID != "" {
		result, err := s.svc.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.cfg.AuditTable),
			KeyConditionExpression: aws.String("assetId = :aid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":aid": &types.AttributeValueMemberS{Value: assetID},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query audit logs: %w", err)
		}
		var logs []domain.AuditLogEntry
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &logs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit logs: %w", err)
		}
		return logs, nil
	}

	var logs []domain.AuditLogEntry
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.svc.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.cfg.AuditTable),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit logs: %w", err)
		}
		var page []domain.AuditLogEntry
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit logs: %w", err)
		}
		logs = append(logs, page...)
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}
	return logs, nil
}

func (s *DynamoStore) GetAllAssetTypes(ctx context.Context) ([]domain.AssetType, error) {
	result, err := s.svc.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.cfg.AssetTypesTable),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset types: %w", err)
	}

	var assetTypes []domain.AssetType
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &assetTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset types: %w", err)
	}
	return assetTypes, nil
}

func (s *DynamoStore) CreateAssetType(ctx context.Context, label, createdBy string) (*domain.AssetType, error) {
	assetType := domain.AssetType{
		TypeID:    strconv.FormatInt(time.Now().UnixMilli(), 10),
		Label:     label,
		CreatedAt: domain.NowISO(),
		CreatedBy: createdBy,
	}

	item, err := attributevalue.MarshalMap(assetType)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal asset type: %w", err)
	}
	_, err = s.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.AssetTypesTable),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put asset type: %w", err)
	}
	return &assetType, nil
}

func (s *DynamoStore) DeleteAssetType(ctx context.Context, typeID string) (bool, error) {
	result, err := s.svc.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.cfg.AssetTypesTable),
		Key: map[string]types.AttributeValue{
			"typeId": &types.AttributeValueMemberS{Value: typeID},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get asset type: %w", err)
	}
	if result.Item == nil {
		return false, nil
	}

	_, err = s.svc.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.cfg.AssetTypesTable),
		Key: map[string]types.AttributeValue{
			"typeId": &types.AttributeValueMemberS{Value: typeID},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete asset type: %w", err)
	}
	return true, nil
}

// ScanAssetPage issues a single bounded scan. The cursor is the id of the
// last item of the previous page.
func (s *DynamoStore) ScanAssetPage(ctx context.Context, cursor string, limit int32) (AssetPage, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.cfg.AssetsTable),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: cursor},
		}
	}

	result, err := s.svc.Scan(ctx, input)
	if err != nil {
		return AssetPage{}, fmt.Errorf("failed to scan assets: %w", err)
	}

	var items []domain.Asset
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return AssetPage{}, fmt.Errorf("failed to unmarshal assets: %w", err)
	}

	page := AssetPage{Items: items}
	if result.LastEvaluatedKey != nil {
		if id, ok := result.LastEvaluatedKey["id"].(*types.AttributeValueMemberS); ok {
			page.NextCursor = id.Value
		}
	}
	return page, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomSuffix keeps ids unique when a bulk batch lands many creates in the
// same millisecond.
func randomSuffix() string {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return b.String()
}
