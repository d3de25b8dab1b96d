package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hisworks-api/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    API
	tableName string
}

func NewNotificationRepo(client API, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListUnread queries the user_id-created_at GSI and filters for readed=0.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexUserCreatedAt),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("readed = :zero"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":  &types.AttributeValueMemberS{Value: userID},
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead sets readed=1 on an existing notification. A missing row is domain.ErrNotFound.
func (r *NotificationRepo) MarkAsRead(ctx context.Context, notificationID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldReaded:    1,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#id"] = "notification_id"
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	return err
}
