package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input   *dynamodb.PutItemInput
	err     error
	pages   []*dynamodb.ScanOutput
	scanned []*dynamodb.ScanInput
}

func (f *fakePutter) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanned = append(f.scanned, in)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return &dynamodb.ScanOutput{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakePutter) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoSinkAppend(t *testing.T) {
	putter := &fakePutter{}
	sink := NewDynamoSink(putter, "leads")
	date := "2026-10-22"
	lead := &Lead{ID: "lead-1", Type: TypeContact, Name: "Anna", Email: "anna@example.de", Date: &date, Slots: []string{"11-15"}}

	require.NoError(t, sink.Append(context.Background(), lead))
	require.NotNil(t, putter.input)
	assert.Equal(t, "leads", aws.ToString(putter.input.TableName))
	assert.Equal(t, "attribute_not_exists(id)", aws.ToString(putter.input.ConditionExpression))

	var got Lead
	require.NoError(t, attributevalue.UnmarshalMap(putter.input.Item, &got))
	assert.Equal(t, "lead-1", got.ID)
	require.NotNil(t, got.Date)
	assert.Equal(t, date, *got.Date)
	assert.Equal(t, []string{"11-15"}, got.Slots)
}

func TestDynamoSinkOmitsEmptySelection(t *testing.T) {
	putter := &fakePutter{}
	sink := NewDynamoSink(putter, "leads")

	require.NoError(t, sink.Append(context.Background(), &Lead{ID: "lead-2", Name: "Jens", Phone: "030"}))
	_, hasDate := putter.input.Item["date"]
	_, hasSlots := putter.input.Item["slots"]
	assert.False(t, hasDate)
	assert.False(t, hasSlots)
}

func TestDynamoSinkAppendError(t *testing.T) {
	putErr := errors.New("throttled")
	sink := NewDynamoSink(&fakePutter{err: putErr}, "leads")

	err := sink.Append(context.Background(), &Lead{ID: "lead-3"})
	assert.ErrorIs(t, err, putErr)
	assert.ErrorIs(t, sink.Append(context.Background(), nil), ErrNilLead)
}

func TestNewDynamoSinkPanics(t *testing.T) {
	assert.Panics(t, func() { NewDynamoSink(nil, "leads") })
	assert.Panics(t, func() { NewDynamoSink(&fakePutter{}, "") })
}

func TestDynamoSinkListFollowsPages(t *testing.T) {
	base := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	newer, err := attributevalue.MarshalMap(Lead{ID: "lead-2", Name: "Jens", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	older, err := attributevalue.MarshalMap(Lead{ID: "lead-1", Name: "Anna", CreatedAt: base})
	require.NoError(t, err)

	lastKey := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "lead-2"}}
	putter := &fakePutter{pages: []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{newer}, LastEvaluatedKey: lastKey},
		{Items: []map[string]types.AttributeValue{older}},
	}}

	got, err := NewDynamoSink(putter, "leads").List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "lead-1", got[0].ID)
	assert.Equal(t, "lead-2", got[1].ID)

	require.Len(t, putter.scanned, 2)
	assert.Nil(t, putter.scanned[0].ExclusiveStartKey)
	assert.Equal(t, lastKey, putter.scanned[1].ExclusiveStartKey)
}

func TestDynamoSinkListError(t *testing.T) {
	scanErr := errors.New("access denied")
	_, err := NewDynamoSink(&fakePutter{err: scanErr}, "leads").List(context.Background())
	assert.ErrorIs(t, err, scanErr)
}
