package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hisworks-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetMany returns the users that exist among userIDs, keyed by id.
func (r *UserRepo) GetMany(ctx context.Context, userIDs []string) (map[string]*domain.User, error) {
	items, err := batchGetItems(ctx, r.client, r.tableName, "user_id", userIDs)
	if err != nil {
		return nil, err
	}
	users := make(map[string]*domain.User, len(items))
	for _, item := range items {
		var u domain.User
		if err := attributevalue.UnmarshalMap(item, &u); err != nil {
			return nil, err
		}
		users[u.UserID] = &u
	}
	return users, nil
}

// UpdateReminderSettings replaces the reminder_settings map of an existing user.
func (r *UserRepo) UpdateReminderSettings(ctx context.Context, userID string, settings domain.ReminderSettings) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldReminderSettings: settings,
		fieldUpdatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#id"] = "user_id"
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return err
}
