package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/domain/entities"
	pkgerrors "notes-backend/pkg/errors"
)

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user.
// Keying the item by normalized username makes the unique-identifier
// invariant a single conditional put.
type userItem struct {
	PK           string `dynamodbav:"PK"` // USERNAME#<normalized username>
	SK           string `dynamodbav:"SK"` // PROFILE
	EntityType   string `dynamodbav:"EntityType"`
	UserID       string `dynamodbav:"UserID"`
	Username     string `dynamodbav:"Username"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

func userKey(username string) string {
	return fmt.Sprintf("USERNAME#%s", username)
}

// Create persists a new user. A username collision fails the condition
// and surfaces as a conflict.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	item, err := attributevalue.MarshalMap(userItem{
		PK:           userKey(user.Username),
		SK:           "PROFILE",
		EntityType:   "USER",
		UserID:       user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError("username already registered")
		}
		return pkgerrors.NewDatabaseError("create user", err)
	}

	return nil
}

// GetByUsername retrieves a user by normalized username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userKey(username)},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}

	return item.toEntity(), nil
}

func (i userItem) toEntity() *entities.User {
	createdAt, _ := time.Parse(time.RFC3339Nano, i.CreatedAt)
	return &entities.User{
		ID:           i.UserID,
		Username:     i.Username,
		PasswordHash: i.PasswordHash,
		CreatedAt:    createdAt,
	}
}
