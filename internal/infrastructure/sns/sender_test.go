package sns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/hisworks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, f.err
}

func TestRunFailed_PublishesToTopic(t *testing.T) {
	fp := &fakePublisher{}
	a := NewAlerter(fp, "arn:aws:sns:us-east-1:000000000000:reminder-alerts")

	err := a.RunFailed(context.Background(), &domain.RunResult{
		RunID:     "01J0000000000000000000000",
		Period:    domain.Evening,
		StartedAt: time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
		Selected:  4,
	}, errors.New("deliver reminders: push service down"))

	require.NoError(t, err)
	require.Len(t, fp.inputs, 1)
	in := fp.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:reminder-alerts", aws.ToString(in.TopicArn))
	assert.Contains(t, aws.ToString(in.Subject), "01J0000000000000000000000")
	assert.Contains(t, aws.ToString(in.Message), "push service down")
	assert.Contains(t, aws.ToString(in.Message), "selected: 4")
}

func TestRunFailed_NilResult(t *testing.T) {
	fp := &fakePublisher{}
	require.NoError(t, NewAlerter(fp, "arn").RunFailed(context.Background(), nil, errors.New("config")))
	assert.Equal(t, "Reminder run failed", aws.ToString(fp.inputs[0].Subject))
}

func TestRunFailed_WrapsPublishError(t *testing.T) {
	fp := &fakePublisher{err: errors.New("denied")}
	err := NewAlerter(fp, "arn").RunFailed(context.Background(), nil, errors.New("x"))
	assert.ErrorContains(t, err, "denied")
}
