package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/domain/entities"
	pkgerrors "notes-backend/pkg/errors"
)

// NoteRepository implements ports.NoteRepository using DynamoDB.
//
// Notes are keyed by their own id so public reads need no owner context;
// GSI1 groups items by owner with creation time in the sort key so the
// owner listing is a single descending query. Ownership-gated mutations
// carry the owner id in a condition expression, which makes the ownership
// check and the write one atomic operation.
type NoteRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.NoteRepository {
	return &NoteRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// noteItem represents the DynamoDB item structure for a note
type noteItem struct {
	PK         string `dynamodbav:"PK"`     // NOTE#<id>
	SK         string `dynamodbav:"SK"`     // METADATA
	GSI1PK     string `dynamodbav:"GSI1PK"` // USER#<ownerID>
	GSI1SK     string `dynamodbav:"GSI1SK"` // NOTE#<createdAt>#<id>
	EntityType string `dynamodbav:"EntityType"`
	NoteID     string `dynamodbav:"NoteID"`
	OwnerID    string `dynamodbav:"OwnerID"`
	Title      string `dynamodbav:"Title"`
	Content    string `dynamodbav:"Content"`
	IsPublic   bool   `dynamodbav:"IsPublic"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// noteTimeFormat is RFC3339 with fixed nine-digit fractional seconds.
// The GSI sort key is compared as a string, so the encoding must keep
// lexicographic order aligned with chronological order; the variable
// width of RFC3339Nano breaks that within a second.
const noteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func noteKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NOTE#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// noteSortKey builds the GSI1 sort key. The note id breaks ties between
// notes created at the same instant.
func noteSortKey(createdAt time.Time, id string) string {
	return fmt.Sprintf("NOTE#%s#%s", createdAt.UTC().Format(noteTimeFormat), id)
}

// ownerCondition gates a mutation on the note existing and belonging to
// ownerID. A failed condition is indistinguishable between missing and
// not-owned, which is the policy: existence is not leaked.
func ownerCondition(ownerID string) expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name("PK")).
		And(expression.Name("OwnerID").Equal(expression.Value(ownerID)))
}

// Create persists a new note
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) error {
	item, err := attributevalue.MarshalMap(noteItem{
		PK:         fmt.Sprintf("NOTE#%s", note.ID),
		SK:         "METADATA",
		GSI1PK:     fmt.Sprintf("USER#%s", note.OwnerID),
		GSI1SK:     noteSortKey(note.CreatedAt, note.ID),
		EntityType: "NOTE",
		NoteID:     note.ID,
		OwnerID:    note.OwnerID,
		Title:      note.Title,
		Content:    note.Content,
		IsPublic:   note.IsPublic,
		CreatedAt:  note.CreatedAt.UTC().Format(noteTimeFormat),
		UpdatedAt:  note.UpdatedAt.UTC().Format(noteTimeFormat),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal note", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		return pkgerrors.NewDatabaseError("create note", err)
	}

	return nil
}

// GetByID retrieves a note by its id regardless of owner
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*entities.Note, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       noteKey(id),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get note", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("note")
	}

	return r.parseItem(result.Item)
}

// ListByOwner retrieves all notes owned by ownerID, newest first. The GSI
// sort key embeds the creation time, so a descending query gives the
// ordering directly.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Note, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", ownerID)},
			":sk": &types.AttributeValueMemberS{Value: "NOTE#"},
		},
		ScanIndexForward: aws.Bool(false),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list notes", err)
	}

	notes := make([]*entities.Note, 0, len(result.Items))
	for _, item := range result.Items {
		note, err := r.parseItem(item)
		if err != nil {
			r.logger.Warn("failed to unmarshal note", zap.Error(err))
			continue
		}
		notes = append(notes, note)
	}

	return notes, nil
}

// UpdateContent updates title and/or content of a note owned by ownerID
func (r *NoteRepository) UpdateContent(ctx context.Context, id, ownerID string, title, content *string) (*entities.Note, error) {
	update := expression.Set(
		expression.Name("UpdatedAt"),
		expression.Value(time.Now().UTC().Format(noteTimeFormat)),
	)
	if title != nil {
		update = update.Set(expression.Name("Title"), expression.Value(*title))
	}
	if content != nil {
		update = update.Set(expression.Name("Content"), expression.Value(*content))
	}

	return r.conditionalUpdate(ctx, id, ownerID, update)
}

// SetVisibility sets the public flag of a note owned by ownerID
func (r *NoteRepository) SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*entities.Note, error) {
	update := expression.
		Set(expression.Name("IsPublic"), expression.Value(isPublic)).
		Set(expression.Name("UpdatedAt"), expression.Value(time.Now().UTC().Format(noteTimeFormat)))

	return r.conditionalUpdate(ctx, id, ownerID, update)
}

// conditionalUpdate runs an ownership-filtered UpdateItem and returns the
// updated note
func (r *NoteRepository) conditionalUpdate(ctx context.Context, id, ownerID string, update expression.UpdateBuilder) (*entities.Note, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(ownerCondition(ownerID)).
		Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build update expression", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       noteKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	}

	result, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, pkgerrors.NewNotFoundError("note")
		}
		return nil, pkgerrors.NewDatabaseError("update note", err)
	}

	return r.parseItem(result.Attributes)
}

// Delete removes a note owned by ownerID
func (r *NoteRepository) Delete(ctx context.Context, id, ownerID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(ownerCondition(ownerID)).
		Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build delete expression", err)
	}

	input := &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       noteKey(id),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("note")
		}
		return pkgerrors.NewDatabaseError("delete note", err)
	}

	return nil
}

func (r *NoteRepository) parseItem(item map[string]types.AttributeValue) (*entities.Note, error) {
	var ni noteItem
	if err := attributevalue.UnmarshalMap(item, &ni); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal note", err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, ni.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, ni.UpdatedAt)

	return &entities.Note{
		ID:        ni.NoteID,
		OwnerID:   ni.OwnerID,
		Title:     ni.Title,
		Content:   ni.Content,
		IsPublic:  ni.IsPublic,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
