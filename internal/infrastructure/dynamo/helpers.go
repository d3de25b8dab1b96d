package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// updateExpr is a compiled UpdateExpression with its placeholder maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Keys are sorted so the same input always yields the same expression.
func buildUpdateExpr(updates map[string]interface{}) (*updateExpr, error) {
	return buildSetRemoveExpr(updates, nil)
}

// buildSetRemoveExpr is buildUpdateExpr plus a REMOVE clause for the given attributes.
func buildSetRemoveExpr(updates map[string]interface{}, removes []string) (*updateExpr, error) {
	if len(updates) == 0 && len(removes) == 0 {
		return nil, errors.New("no fields to update")
	}
	ue := &updateExpr{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	i := 0
	for _, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i == 0 {
			ue.Expr = "SET "
		} else {
			ue.Expr += ", "
		}
		ue.Expr += nameKey + " = " + valueKey
		i++
	}

	for j, k := range removes {
		nameKey := fmt.Sprintf("#f%d", i)
		ue.Names[nameKey] = k
		if j == 0 {
			if ue.Expr != "" {
				ue.Expr += " "
			}
			ue.Expr += "REMOVE "
		} else {
			ue.Expr += ", "
		}
		ue.Expr += nameKey
		i++
	}
	if len(ue.Values) == 0 {
		ue.Values = nil
	}
	return ue, nil
}

// batchGetLimit is DynamoDB's maximum number of keys per BatchGetItem call.
const batchGetLimit = 100

// batchGetItems fetches items by a single string key, 100 keys per call, resubmitting
// unprocessed keys. Missing items are simply absent from the result; order is not preserved.
func batchGetItems(ctx context.Context, client API, table, keyName string, ids []string) ([]map[string]types.AttributeValue, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var items []map[string]types.AttributeValue
	for start := 0; start < len(unique); start += batchGetLimit {
		end := min(start+batchGetLimit, len(unique))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range unique[start:end] {
			keys = append(keys, strKey(keyName, id))
		}
		request := map[string]types.KeysAndAttributes{table: {Keys: keys}}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt >= 5 {
				return nil, fmt.Errorf("batch get %s: unprocessed keys remain", table)
			}
			if attempt > 0 {
				if err := sleepCtx(ctx, retryBackoff(attempt)); err != nil {
					return nil, err
				}
			}
			out, err := client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("batch get %s: %w", table, err)
			}
			items = append(items, out.Responses[table]...)
			request = out.UnprocessedKeys
		}
	}
	return items, nil
}

// retryBackoff is the wait before resubmitting unprocessed batch items.
var retryBackoff = func(attempt int) time.Duration {
	return time.Duration(50<<attempt) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
