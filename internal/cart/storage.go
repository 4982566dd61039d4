package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/diamanteazul/storefront-api/internal/awsx"
)

// Storage persists the serialized cart under a fixed key. Implementations
// must round-trip the nested product snapshots faithfully.
type Storage interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// MemoryStorage is the in-process adapter used in tests and local runs.
type MemoryStorage struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(_ context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.blob) == 0 {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal(m.blob, &items); err != nil {
		return nil, fmt.Errorf("decode cart blob: %w", err)
	}
	return items, nil
}

func (m *MemoryStorage) Save(_ context.Context, items []Item) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart blob: %w", err)
	}
	m.mu.Lock()
	m.blob = blob
	m.mu.Unlock()
	return nil
}

// DynamoStorage keeps the cart as a single JSON blob item, keyed by the
// session's storage key. One item per cart, last writer wins.
type DynamoStorage struct {
	client     awsx.DynamoDBAPI
	tableName  string
	storageKey string
	nowFunc    func() time.Time
}

func NewDynamoStorage(client awsx.DynamoDBAPI, tableName, storageKey string) *DynamoStorage {
	if storageKey == "" {
		storageKey = StorageKey
	}
	return &DynamoStorage{
		client:     client,
		tableName:  tableName,
		storageKey: storageKey,
		nowFunc:    time.Now,
	}
}

func (d *DynamoStorage) Load(ctx context.Context) ([]Item, error) {
	out, err := d.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &d.tableName,
		Key: map[string]types.AttributeValue{
			"storage_key": &types.AttributeValueMemberS{Value: d.storageKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	blobAttr, ok := out.Item["items"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("cart item has no items blob")
	}
	var items []Item
	if err := json.Unmarshal([]byte(blobAttr.Value), &items); err != nil {
		return nil, fmt.Errorf("decode cart blob: %w", err)
	}
	return items, nil
}

func (d *DynamoStorage) Save(ctx context.Context, items []Item) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart blob: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &d.tableName,
		Item: map[string]types.AttributeValue{
			"storage_key": &types.AttributeValueMemberS{Value: d.storageKey},
			"items":       &types.AttributeValueMemberS{Value: string(blob)},
			"updated_at":  &types.AttributeValueMemberS{Value: d.nowFunc().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("put cart item: %w", err)
	}
	return nil
}
