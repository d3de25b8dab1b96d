package dynamo

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI records inputs and replays canned outputs. Methods not overridden panic through
// the nil embedded interface.
type fakeAPI struct {
	API

	mu          sync.Mutex
	puts        []*dynamodb.PutItemInput
	updates     []*dynamodb.UpdateItemInput
	queries     []*dynamodb.QueryInput
	batchWrites []*dynamodb.BatchWriteItemInput
	batchGets   []*dynamodb.BatchGetItemInput

	getItem     map[string]types.AttributeValue
	queryItems  map[string][]map[string]types.AttributeValue // keyed by first :day / :tid / :uid value
	updateErrs  map[string]error                             // keyed by reminder_id
	putErr      error
	batchGetOut map[string][]map[string]types.AttributeValue
	// unprocessedGets is how many BatchGetItem calls hand every key back unprocessed.
	unprocessedGets int
}

func (f *fakeAPI) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	for _, av := range in.Key {
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			if err := f.updateErrs[s.Value]; err != nil {
				return nil, err
			}
		}
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)
	for _, key := range []string{":day", ":tid", ":uid"} {
		if s, ok := in.ExpressionAttributeValues[key].(*types.AttributeValueMemberS); ok {
			return &dynamodb.QueryOutput{Items: f.queryItems[s.Value]}, nil
		}
	}
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeAPI) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchWrites = append(f.batchWrites, in)
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeAPI) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchGets = append(f.batchGets, in)
	if f.unprocessedGets > 0 {
		f.unprocessedGets--
		return &dynamodb.BatchGetItemOutput{UnprocessedKeys: in.RequestItems}, nil
	}
	return &dynamodb.BatchGetItemOutput{Responses: f.batchGetOut}, nil
}
