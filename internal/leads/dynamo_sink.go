package leads

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoSink writes leads to a DynamoDB table keyed by id.
type DynamoSink struct {
	client    dynamoAPI
	tableName string
}

// NewDynamoSink builds a sink backed by the provided DynamoDB client.
func NewDynamoSink(client dynamoAPI, tableName string) *DynamoSink {
	if client == nil {
		panic("leads: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("leads: table name cannot be empty")
	}
	return &DynamoSink{client: client, tableName: tableName}
}

// Name implements Sink.
func (s *DynamoSink) Name() string { return "dynamodb" }

// Append puts the lead unless an item with the same id exists.
func (s *DynamoSink) Append(ctx context.Context, lead *Lead) error {
	if lead == nil {
		return ErrNilLead
	}
	item, err := attributevalue.MarshalMap(lead)
	if err != nil {
		return fmt.Errorf("leads: failed to marshal lead: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("leads: failed to persist lead: %w", err)
	}
	return nil
}

// List implements Lister. The table is small enough to scan; items are
// sorted by creation time after every page has been read.
func (s *DynamoSink) List(ctx context.Context) ([]Lead, error) {
	var (
		out      []Lead
		startKey map[string]types.AttributeValue
	)
	for {
		page, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("leads: failed to scan leads: %w", err)
		}
		var batch []Lead
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("leads: failed to unmarshal leads: %w", err)
		}
		out = append(out, batch...)
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
