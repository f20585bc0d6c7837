package knob

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API used by DynamoHistory.
type DDBClient interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoHistory implements HistoryClient on a DynamoDB table that logs knob
// settings.
//
// Table schema:
//   - Partition key: knob (string) - the knob name
//   - Sort key: timestamp (number) - Unix milliseconds of the setting change
//   - Attribute: value (number) - the setting
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name knob-history \
//	  --attribute-definitions AttributeName=knob,AttributeType=S AttributeName=timestamp,AttributeType=N \
//	  --key-schema AttributeName=knob,KeyType=HASH AttributeName=timestamp,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DynamoHistory struct {
	client    DDBClient
	tableName string
	maxAge    time.Duration
}

// NewDynamoHistory creates a history client. When maxAge > 0, settings
// logged more than maxAge before the acquisition are treated as missing.
func NewDynamoHistory(client DDBClient, tableName string, maxAge time.Duration) *DynamoHistory {
	return &DynamoHistory{client: client, tableName: tableName, maxAge: maxAge}
}

// Value returns the newest setting logged at or before at.
func (d *DynamoHistory) Value(ctx context.Context, knob string, at time.Time) (float64, error) {
	out, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("knob = :knob AND #ts <= :at"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":knob": &types.AttributeValueMemberS{Value: knob},
			":at":   &types.AttributeValueMemberN{Value: strconv.FormatInt(at.UnixMilli(), 10)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, fmt.Errorf("query knob history: %w", err)
	}
	if len(out.Items) == 0 {
		return 0, fmt.Errorf("%w: %s has no setting before %s", ErrNotFound, knob, at.Format(time.RFC3339))
	}

	item := out.Items[0]
	if d.maxAge > 0 {
		ts, err := numberAttr(item, "timestamp")
		if err != nil {
			return 0, err
		}
		logged := time.UnixMilli(int64(ts))
		if at.Sub(logged) > d.maxAge {
			return 0, fmt.Errorf("%w: %s last set %s, older than %s", ErrNotFound, knob, logged.Format(time.RFC3339), d.maxAge)
		}
	}
	return numberAttr(item, "value")
}

func numberAttr(item map[string]types.AttributeValue, name string) (float64, error) {
	n, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("knob history item: attribute %q missing or not a number", name)
	}
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("knob history item: attribute %q: %w", name, err)
	}
	return v, nil
}
