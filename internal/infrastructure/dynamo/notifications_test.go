package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hisworks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepo_MarkAsReadRequiresExistingRow(t *testing.T) {
	api := &fakeAPI{}

	err := NewNotificationRepo(api, "notifications").MarkAsRead(context.Background(), "r1")

	require.NoError(t, err)
	require.Len(t, api.updates, 1)
	in := api.updates[0]
	assert.Equal(t, "attribute_exists(#id)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, "notification_id", in.ExpressionAttributeNames["#id"])
}

func TestNotificationRepo_MarkAsReadMissingRow(t *testing.T) {
	api := &fakeAPI{updateErrs: map[string]error{"never-recorded": &types.ConditionalCheckFailedException{}}}

	err := NewNotificationRepo(api, "notifications").MarkAsRead(context.Background(), "never-recorded")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
