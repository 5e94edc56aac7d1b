package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"message-store/internal/domain"
)

const (
	pkPrefixMsg = "MSG#"

	condNotExists = "attribute_not_exists(PK)"
	condExists    = "attribute_exists(PK)"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoClient.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoClient stores messages in a DynamoDB table keyed by PK = "MSG#{id}".
type DynamoClient struct {
	api       dynamodbAPI
	tableName string
}

// NewDynamoClient creates a new DynamoDB-backed store.
func NewDynamoClient(api dynamodbAPI, tableName string) (*DynamoClient, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoClient{api: api, tableName: tableName}, nil
}

// msgPK returns the DynamoDB partition key for a message.
func msgPK(id string) string {
	return pkPrefixMsg + id
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: msgPK(id)},
	}
}

// List scans every MSG# item in the table, following pagination.
func (c *DynamoClient) List(ctx context.Context) ([]domain.Message, error) {
	msgs := make([]domain.Message, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(c.tableName),
			FilterExpression: aws.String("begins_with(PK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: pkPrefixMsg},
			},
			ConsistentRead:    aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: List scan: %w", err)
		}
		for _, item := range out.Items {
			msg, err := itemToMessage(item)
			if err != nil {
				return nil, fmt.Errorf("repository: List unmarshal: %w", err)
			}
			msgs = append(msgs, msg)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return msgs, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (c *DynamoClient) Get(ctx context.Context, id string) (domain.Message, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("repository: Get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Message{}, false, nil
	}
	msg, err := itemToMessage(out.Item)
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("repository: Get unmarshal: %w", err)
	}
	return msg, true, nil
}

// Insert writes a new message, refusing to overwrite a live id.
func (c *DynamoClient) Insert(ctx context.Context, msg domain.Message) error {
	if err := c.put(ctx, msg, condNotExists); err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("repository: Insert: %w", domain.ErrMessageExists)
		}
		return fmt.Errorf("repository: Insert: %w", err)
	}
	return nil
}

// Replace overwrites an existing message in place.
func (c *DynamoClient) Replace(ctx context.Context, msg domain.Message) error {
	if err := c.put(ctx, msg, condExists); err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("repository: Replace: %w", domain.ErrMessageNotFound)
		}
		return fmt.Errorf("repository: Replace: %w", err)
	}
	return nil
}

// Delete removes a message and returns the removed attributes.
func (c *DynamoClient) Delete(ctx context.Context, id string) (domain.Message, bool, error) {
	out, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(c.tableName),
		Key:          keyOf(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("repository: Delete item: %w", err)
	}
	if out == nil || len(out.Attributes) == 0 {
		return domain.Message{}, false, nil
	}
	msg, err := itemToMessage(out.Attributes)
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("repository: Delete unmarshal: %w", err)
	}
	return msg, true, nil
}

func (c *DynamoClient) Close() error { return nil }

func (c *DynamoClient) put(ctx context.Context, msg domain.Message, condition string) error {
	if msg.ID == "" {
		return errors.New("id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                messageItem(msg),
		ConditionExpression: aws.String(condition),
	})
	return err
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func messageItem(msg domain.Message) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":            &types.AttributeValueMemberS{Value: msgPK(msg.ID)},
		"id":            &types.AttributeValueMemberS{Value: msg.ID},
		"title":         &types.AttributeValueMemberS{Value: msg.Title},
		"body":          &types.AttributeValueMemberS{Value: msg.Body},
		"attachmentURL": &types.AttributeValueMemberS{Value: msg.AttachmentURL},
		"createdAt":     &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(msg.CreatedAt), 10)},
	}
	if updatedAt, ok := msg.UpdatedAt.Get(); ok {
		item["updatedAt"] = &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(updatedAt), 10)}
	}
	return item
}

// itemToMessage converts a DynamoDB attribute map to a Message.
func itemToMessage(item map[string]types.AttributeValue) (domain.Message, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Message{}, err
	}
	title, err := strAttr(item, "title")
	if err != nil {
		return domain.Message{}, err
	}
	body, err := strAttr(item, "body")
	if err != nil {
		return domain.Message{}, err
	}
	attachmentURL, err := strAttr(item, "attachmentURL")
	if err != nil {
		return domain.Message{}, err
	}
	createdAt, err := timestampAttr(item, "createdAt")
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:            id,
		Title:         title,
		Body:          body,
		AttachmentURL: attachmentURL,
		CreatedAt:     createdAt,
	}
	if _, ok := item["updatedAt"]; ok {
		updatedAt, err := timestampAttr(item, "updatedAt")
		if err != nil {
			return domain.Message{}, err
		}
		msg.UpdatedAt = domain.Some(updatedAt)
	}
	return msg, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func timestampAttr(item map[string]types.AttributeValue, key string) (domain.Timestamp, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseUint(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return domain.Timestamp(parsed), nil
}
