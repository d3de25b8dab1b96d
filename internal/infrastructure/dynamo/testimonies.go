package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hisworks-api/internal/domain"
)

// TestimonyRepo reads the testimonies table. Testimonies are written by the app backend;
// this service only needs the owner, title and event date.
type TestimonyRepo struct {
	client    API
	tableName string
}

func NewTestimonyRepo(client API, tableName string) *TestimonyRepo {
	return &TestimonyRepo{client: client, tableName: tableName}
}

func (r *TestimonyRepo) Get(ctx context.Context, testimonyID string) (*domain.Testimony, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("testimony_id", testimonyID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("testimony not found: %w", domain.ErrNotFound)
	}
	var t domain.Testimony
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetMany returns the testimonies that exist among ids, keyed by id.
func (r *TestimonyRepo) GetMany(ctx context.Context, ids []string) (map[string]*domain.Testimony, error) {
	items, err := batchGetItems(ctx, r.client, r.tableName, "testimony_id", ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Testimony, len(items))
	for _, item := range items {
		var t domain.Testimony
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			return nil, err
		}
		out[t.TestimonyID] = &t
	}
	return out, nil
}
