package dynamo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/siuupriyanshu/auth-core/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
//
// The table is keyed by email (stored case-folded) so the store itself
// enforces email uniqueness; user_id lookups go through the user_id-index GSI.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Create inserts a new user. The conditional put is the uniqueness
// tie-breaker: of two concurrent registrations for the same email exactly
// one wins, the other receives KindConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if isConditionFailure(err) {
		return domain.E(domain.KindConflict, "email already registered")
	}
	return err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "user_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: userID}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies a partial attribute update to the record keyed by email.
func (r *UserRepo) Update(ctx context.Context, email string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// SetVerificationToken stores the verification token hash and expiry.
func (r *UserRepo) SetVerificationToken(ctx context.Context, email, tokenHash string, expiresAt int64) error {
	return r.Update(ctx, email, map[string]interface{}{
		"email_verification_token_hash":   tokenHash,
		"email_verification_token_expiry": expiresAt,
	})
}

// SetResetToken stores the password reset token hash and expiry.
func (r *UserRepo) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt int64) error {
	return r.Update(ctx, email, map[string]interface{}{
		"password_reset_token_hash":   tokenHash,
		"password_reset_token_expiry": expiresAt,
	})
}

// ConsumeVerificationToken atomically marks the email verified and removes
// the token attributes, conditional on the stored hash matching tokenHash
// and the expiry still being in the future. The conditional write is what
// makes the token single-use under concurrent requests: of two racing
// consumers exactly one passes the condition.
func (r *UserRepo) ConsumeVerificationToken(ctx context.Context, email, tokenHash string, now int64) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
		ConditionExpression: aws.String(
			"email_verification_token_hash = :h AND email_verification_token_expiry > :now"),
		UpdateExpression: aws.String(
			"SET email_verified = :t, updated_at = :u REMOVE email_verification_token_hash, email_verification_token_expiry"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":h":   &types.AttributeValueMemberS{Value: tokenHash},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":u":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if isConditionFailure(err) {
		return domain.E(domain.KindInvalidToken, "invalid or expired token")
	}
	return err
}

// ConsumeResetToken atomically replaces the password hash and removes the
// reset token attributes under the same condition as ConsumeVerificationToken.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, email, tokenHash, newPasswordHash string, now int64) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
		ConditionExpression: aws.String(
			"password_reset_token_hash = :h AND password_reset_token_expiry > :now"),
		UpdateExpression: aws.String(
			"SET password_hash = :p, updated_at = :u REMOVE password_reset_token_hash, password_reset_token_expiry"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":h":   &types.AttributeValueMemberS{Value: tokenHash},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
			":p":   &types.AttributeValueMemberS{Value: newPasswordHash},
			":u":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if isConditionFailure(err) {
		return domain.E(domain.KindInvalidToken, "invalid or expired token")
	}
	return err
}

// ScanPage returns a page of users for the admin listing.
// cursor is a base64-encoded email used as ExclusiveStartKey.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *UserRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		email, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", domain.E(domain.KindValidation, "invalid cursor")
		}
		input.ExclusiveStartKey = strKey("email", email)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var users []domain.User
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["email"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return users, nextCursor, nil
}

func encodeCursor(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
