package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"message-store/internal/domain"
)

type fakeDynamo struct {
	getOut      *dynamodb.GetItemOutput
	getErr      error
	putErr      error
	deleteOut   *dynamodb.DeleteItemOutput
	deleteErr   error
	scanPages   []*dynamodb.ScanOutput
	scanErr     error
	lastGetIn   *dynamodb.GetItemInput
	lastPutIn   *dynamodb.PutItemInput
	lastDelIn   *dynamodb.DeleteItemInput
	scanInputs  []*dynamodb.ScanInput
	scanCallIdx int
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetIn = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutIn = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDelIn = in
	return f.deleteOut, f.deleteErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	if f.scanCallIdx >= len(f.scanPages) {
		return &dynamodb.ScanOutput{}, nil
	}
	out := f.scanPages[f.scanCallIdx]
	f.scanCallIdx++
	return out, nil
}

func sampleMessage(id string) domain.Message {
	return domain.Message{ID: id, Title: "T", Body: "B", AttachmentURL: "U", CreatedAt: 100}
}

func mustNewClient(t *testing.T, db *fakeDynamo) *DynamoClient {
	t.Helper()
	c, err := NewDynamoClient(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestGet_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: messageItem(sampleMessage("abc"))}}
	c := mustNewClient(t, db)
	msg, ok, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sampleMessage("abc"), msg)
	require.Equal(t, "MSG#abc", db.lastGetIn.Key["PK"].(*types.AttributeValueMemberS).Value)
	require.True(t, *db.lastGetIn.ConsistentRead)
}

func TestGet_Missing(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	c := mustNewClient(t, db)
	_, ok, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGet_GetItemError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	c := mustNewClient(t, db)
	_, _, err := c.Get(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Get item")
}

func TestGet_MalformedCreatedAt(t *testing.T) {
	item := messageItem(sampleMessage("abc"))
	item["createdAt"] = &types.AttributeValueMemberS{Value: "bad"}
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: item}}
	c := mustNewClient(t, db)
	_, _, err := c.Get(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "createdAt")
}

func TestInsert_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.Insert(context.Background(), sampleMessage("abc")))
	require.Equal(t, condNotExists, *db.lastPutIn.ConditionExpression)
	require.NotContains(t, db.lastPutIn.Item, "updatedAt")
	require.Equal(t, "100", db.lastPutIn.Item["createdAt"].(*types.AttributeValueMemberN).Value)
}

func TestInsert_Collision(t *testing.T) {
	db := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{Message: ptr("conditional check failed")}}
	c := mustNewClient(t, db)
	err := c.Insert(context.Background(), sampleMessage("abc"))
	require.ErrorIs(t, err, domain.ErrMessageExists)
}

func TestInsert_DynamoError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	c := mustNewClient(t, db)
	err := c.Insert(context.Background(), sampleMessage("abc"))
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrMessageExists)
	require.Contains(t, err.Error(), "Insert")
}

func TestInsert_MissingID(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.Insert(context.Background(), domain.Message{Title: "T"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
	require.Nil(t, db.lastPutIn)
}

func TestReplace_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	msg := sampleMessage("abc")
	msg.UpdatedAt = domain.Some(domain.Timestamp(200))
	require.NoError(t, c.Replace(context.Background(), msg))
	require.Equal(t, condExists, *db.lastPutIn.ConditionExpression)
	require.Equal(t, "200", db.lastPutIn.Item["updatedAt"].(*types.AttributeValueMemberN).Value)
}

func TestReplace_Missing(t *testing.T) {
	db := &fakeDynamo{putErr: &types.ConditionalCheckFailedException{}}
	c := mustNewClient(t, db)
	err := c.Replace(context.Background(), sampleMessage("abc"))
	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestDelete_HappyPath(t *testing.T) {
	msg := sampleMessage("abc")
	msg.UpdatedAt = domain.Some(domain.Timestamp(150))
	db := &fakeDynamo{deleteOut: &dynamodb.DeleteItemOutput{Attributes: messageItem(msg)}}
	c := mustNewClient(t, db)
	deleted, ok, err := c.Delete(context.Background(), "abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, msg, deleted)
	require.Equal(t, types.ReturnValueAllOld, db.lastDelIn.ReturnValues)
}

func TestDelete_Missing(t *testing.T) {
	db := &fakeDynamo{deleteOut: &dynamodb.DeleteItemOutput{}}
	c := mustNewClient(t, db)
	_, ok, err := c.Delete(context.Background(), "abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDelete_DynamoError(t *testing.T) {
	db := &fakeDynamo{deleteErr: errors.New("internal server error")}
	c := mustNewClient(t, db)
	_, _, err := c.Delete(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Delete")
}

func TestList_FollowsPagination(t *testing.T) {
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{messageItem(sampleMessage("a"))},
			LastEvaluatedKey: keyOf("a"),
		},
		{
			Items: []map[string]types.AttributeValue{messageItem(sampleMessage("b"))},
		},
	}}
	c := mustNewClient(t, db)
	msgs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "a", msgs[0].ID)
	require.Equal(t, "b", msgs[1].ID)
	require.Len(t, db.scanInputs, 2)
	require.Nil(t, db.scanInputs[0].ExclusiveStartKey)
	require.Equal(t, keyOf("a"), db.scanInputs[1].ExclusiveStartKey)
	require.Equal(t, "begins_with(PK, :prefix)", *db.scanInputs[0].FilterExpression)
}

func TestList_Empty(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	msgs, err := c.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, msgs)
	require.Empty(t, msgs)
}

func TestList_ScanError(t *testing.T) {
	db := &fakeDynamo{scanErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)
	_, err := c.List(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "List scan")
}

func TestList_MalformedItem(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "MSG#abc"},
		"id": &types.AttributeValueMemberS{Value: "abc"},
	}
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{item}}}}
	c := mustNewClient(t, db)
	_, err := c.List(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "title")
}

func TestMsgPK(t *testing.T) {
	require.Equal(t, "MSG#my-id", msgPK("my-id"))
}

func TestNewDynamoClient_NilAPI(t *testing.T) {
	_, err := NewDynamoClient(nil, "test-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNewDynamoClient_EmptyTableName(t *testing.T) {
	_, err := NewDynamoClient(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}

func ptr(s string) *string { return &s }
