package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hisworks-api/internal/config"
)

// TableCreator is the subset of the DynamoDB client Bootstrap needs.
type TableCreator interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Safe to call on every startup — skips tables that already exist.
func Bootstrap(ctx context.Context, client TableCreator, tables config.DynamoTables) {
	for _, input := range tableDefinitions(tables) {
		createTable(ctx, client, input)
	}
}

func tableDefinitions(tables config.DynamoTables) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:   aws.String(tables.Users),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				attr("user_id", types.ScalarAttributeTypeS),
			},
			KeySchema: hashKey("user_id"),
		},
		{
			TableName:   aws.String(tables.Devices),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				attr("device_id", types.ScalarAttributeTypeS),
				attr("user_id", types.ScalarAttributeTypeS),
				attr("device_uuid", types.ScalarAttributeTypeS),
			},
			KeySchema: hashKey("device_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexUserDevices, "user_id", ""),
				gsi(indexDeviceUUID, "device_uuid", ""),
			},
		},
		{
			TableName:   aws.String(tables.Notifications),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				attr("notification_id", types.ScalarAttributeTypeS),
				attr("user_id", types.ScalarAttributeTypeS),
				attr("created_at", types.ScalarAttributeTypeS),
			},
			KeySchema: hashKey("notification_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexUserCreatedAt, "user_id", "created_at"),
			},
		},
		{
			// pending_day only exists on unsent rows, so indexPendingDay is sparse.
			TableName:   aws.String(tables.Reminders),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				attr("reminder_id", types.ScalarAttributeTypeS),
				attr("user_id", types.ScalarAttributeTypeS),
				attr("testimony_id", types.ScalarAttributeTypeS),
				attr(fieldPendingDay, types.ScalarAttributeTypeS),
				attr(fieldScheduledFor, types.ScalarAttributeTypeN),
			},
			KeySchema: hashKey("reminder_id"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				gsi(indexPendingDay, fieldPendingDay, fieldScheduledFor),
				gsi(indexUserReminders, "user_id", fieldScheduledFor),
				gsi(indexTestimony, "testimony_id", ""),
			},
		},
		{
			TableName:   aws.String(tables.Testimonies),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				attr("testimony_id", types.ScalarAttributeTypeS),
			},
			KeySchema: hashKey("testimony_id"),
		},
	}
}

func attr(name string, typ types.ScalarAttributeType) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: typ}
}

func hashKey(name string) []types.KeySchemaElement {
	return []types.KeySchemaElement{{AttributeName: aws.String(name), KeyType: types.KeyTypeHash}}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client TableCreator, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists — that's fine.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
	} else {
		slog.Info("created table", "table", *input.TableName)
	}
}
