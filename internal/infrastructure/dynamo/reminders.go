package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hisworks-api/internal/domain"
)

// batchWriteLimit is DynamoDB's maximum number of requests per BatchWriteItem call.
const batchWriteLimit = 25

// ReminderRepo provides typed DynamoDB operations for the reminders table.
//
// Pending rows carry a pending_day attribute (UTC date of scheduled_for) that keys the sparse
// pending_day-scheduled_for-index. Marking a row sent removes the attribute, so the due
// query never sees delivered reminders.
type ReminderRepo struct {
	client    API
	tableName string
}

func NewReminderRepo(client API, tableName string) *ReminderRepo {
	return &ReminderRepo{client: client, tableName: tableName}
}

// Put inserts a new reminder. An existing id is a conflict.
func (r *ReminderRepo) Put(ctx context.Context, rem *domain.Reminder) error {
	if rem.Pending() {
		rem.PendingDay = domain.PendingDayFor(rem.ScheduledFor)
	} else {
		rem.PendingDay = ""
	}
	item, err := attributevalue.MarshalMap(rem)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(reminder_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("reminder %s exists: %w", rem.ReminderID, domain.ErrConflict)
	}
	return err
}

func (r *ReminderRepo) Get(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("reminder_id", reminderID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reminder not found: %w", domain.ErrNotFound)
	}
	var rem domain.Reminder
	if err := attributevalue.UnmarshalMap(out.Item, &rem); err != nil {
		return nil, err
	}
	return &rem, nil
}

// ListPendingBetween returns unsent reminders with from <= scheduled_for <= to, ordered by
// scheduled_for then id. It queries one index partition per UTC day in the range.
func (r *ReminderRepo) ListPendingBetween(ctx context.Context, from, to time.Time) ([]domain.Reminder, error) {
	from, to = from.UTC(), to.UTC()
	if to.Before(from) {
		return nil, nil
	}
	var reminders []domain.Reminder
	for day := truncateDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(indexPendingDay),
			KeyConditionExpression: aws.String("#pd = :day AND #sf BETWEEN :from AND :to"),
			FilterExpression:       aws.String("attribute_not_exists(#sa)"),
			ExpressionAttributeNames: map[string]string{
				"#pd": fieldPendingDay,
				"#sf": fieldScheduledFor,
				"#sa": fieldSentAt,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":day":  &types.AttributeValueMemberS{Value: day.Format(domain.PendingDayLayout)},
				":from": unixValue(from),
				":to":   unixValue(to),
			},
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("query pending reminders for %s: %w", day.Format(domain.PendingDayLayout), err)
			}
			var batch []domain.Reminder
			if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
				return nil, err
			}
			reminders = append(reminders, batch...)
		}
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i], reminders[j]
		if !a.ScheduledFor.Equal(b.ScheduledFor) {
			return a.ScheduledFor.Before(b.ScheduledFor)
		}
		return a.ReminderID < b.ReminderID
	})
	return reminders, nil
}

// ListByUser returns the user's reminders ordered by scheduled_for.
func (r *ReminderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error) {
	return r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexUserReminders),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
}

func (r *ReminderRepo) ListByTestimony(ctx context.Context, testimonyID string) ([]domain.Reminder, error) {
	return r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexTestimony),
		KeyConditionExpression: aws.String("testimony_id = :tid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tid": &types.AttributeValueMemberS{Value: testimonyID},
		},
	})
}

// UpdateSchedule moves a pending reminder. Sent reminders are immutable (ErrConflict).
func (r *ReminderRepo) UpdateSchedule(ctx context.Context, reminderID string, scheduledFor, now time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldScheduledFor: scheduledFor.UTC().Unix(),
		fieldPendingDay:   domain.PendingDayFor(scheduledFor),
		fieldUpdatedAt:    now.UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#id"] = "reminder_id"
	ue.Names["#sa"] = fieldSentAt
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("reminder_id", reminderID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id) AND attribute_not_exists(#sa)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("reminder %s is missing or already sent: %w", reminderID, domain.ErrConflict)
	}
	return err
}

// MarkSent stamps sent_at on each reminder independently and returns the per-id failures
// (an empty map means every row was marked). A row that is already sent fails with
// domain.ErrConflict and keeps its original sent_at.
func (r *ReminderRepo) MarkSent(ctx context.Context, reminderIDs []string, sentAt time.Time) map[string]error {
	failures := make(map[string]error)
	ue, err := buildSetRemoveExpr(map[string]interface{}{
		fieldSentAt:    sentAt.UTC().Unix(),
		fieldUpdatedAt: sentAt.UTC(),
	}, []string{fieldPendingDay})
	if err != nil {
		for _, id := range reminderIDs {
			failures[id] = err
		}
		return failures
	}
	ue.Names["#id"] = "reminder_id"
	ue.Names["#sa"] = fieldSentAt

	for _, id := range reminderIDs {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey("reminder_id", id),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String("attribute_exists(#id) AND attribute_not_exists(#sa)"),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		})
		switch {
		case isConditionFailed(err):
			failures[id] = fmt.Errorf("reminder %s already sent: %w", id, domain.ErrConflict)
		case err != nil:
			failures[id] = fmt.Errorf("mark reminder %s sent: %w", id, err)
		}
	}
	return failures
}

func (r *ReminderRepo) Delete(ctx context.Context, reminderID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("reminder_id", reminderID),
	})
	return err
}

// DeleteByTestimony removes the testimony's reminders (only unsent ones when pendingOnly)
// and returns how many were deleted.
func (r *ReminderRepo) DeleteByTestimony(ctx context.Context, testimonyID string, pendingOnly bool) (int, error) {
	reminders, err := r.ListByTestimony(ctx, testimonyID)
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, rem := range reminders {
		if pendingOnly && !rem.Pending() {
			continue
		}
		ids = append(ids, rem.ReminderID)
	}
	for start := 0; start < len(ids); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(ids))
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, id := range ids[start:end] {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: strKey("reminder_id", id)},
			})
		}
		if err := r.batchWrite(ctx, reqs); err != nil {
			return start, err
		}
	}
	return len(ids), nil
}

// batchWrite submits the requests and resubmits unprocessed items a bounded number of times.
func (r *ReminderRepo) batchWrite(ctx context.Context, reqs []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.tableName: reqs}
	for attempt := 0; attempt < 5 && len(pending[r.tableName]) > 0; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, retryBackoff(attempt)); err != nil {
				return err
			}
		}
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("batch delete reminders: %w", err)
		}
		pending = out.UnprocessedItems
	}
	if n := len(pending[r.tableName]); n > 0 {
		return fmt.Errorf("batch delete reminders: %d items unprocessed", n)
	}
	return nil
}

func (r *ReminderRepo) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]domain.Reminder, error) {
	var reminders []domain.Reminder
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Reminder
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		reminders = append(reminders, batch...)
	}
	return reminders, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func unixValue(t time.Time) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.Unix(), 10)}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return err != nil && errors.As(err, &ccf)
}
