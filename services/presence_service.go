package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"accessible_connect/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// presenceDB is the slice of the DynamoDB layer the presence tracker uses.
type presenceDB interface {
	QueryItems(ctx context.Context, tableName string, keyConditionExpression string,
		expressionAttributeValues map[string]types.AttributeValue,
		expressionAttributeNames map[string]string, limit int32, latestFirst bool,
	) ([]map[string]types.AttributeValue, error)
	QueryItemsWithIndex(ctx context.Context, tableName string, indexName string,
		keyConditionExpression string,
		expressionAttributeValues map[string]types.AttributeValue,
		expressionAttributeNames map[string]string, limit int32,
	) ([]map[string]types.AttributeValue, error)
	UpdateItemWithCondition(ctx context.Context, tableName string,
		key map[string]types.AttributeValue, updateExpression string,
		conditionExpression string,
		expressionAttributeValues map[string]types.AttributeValue,
		expressionAttributeNames map[string]string,
	) error
}

// PresenceService tracks which binding record is live for a participant and
// marks records disconnected when a participant deliberately leaves.
// Bindings are never deleted; a reconnect inserts a newer record and the
// most recent active one is authoritative.
type PresenceService struct {
	Dynamo presenceDB
}

// activeBindingScan caps how many recent records are inspected when looking
// for the newest non-disconnected binding.
const activeBindingScan = 10

// ActiveBinding returns the most recent non-disconnected binding for the
// given userId, or nil when the participant has no live connection.
func (s *PresenceService) ActiveBinding(ctx context.Context, userID string) (*models.Participant, error) {
	keyCondition := "#userId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}
	expressionNames := map[string]string{
		"#userId": "userId",
	}

	items, err := s.Dynamo.QueryItems(ctx, models.ParticipantsTable, keyCondition,
		expressionValues, expressionNames, activeBindingScan, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query bindings for userId %s: %w", userID, err)
	}

	var participants []models.Participant
	if err := attributevalue.UnmarshalListOfMaps(items, &participants); err != nil {
		return nil, fmt.Errorf("failed to parse bindings for userId %s: %w", userID, err)
	}

	// Items arrive newest first; the first active one wins.
	for i := range participants {
		if !participants[i].Disconnected {
			return &participants[i], nil
		}
	}
	return nil, nil
}

// MarkDisconnected flags the binding matching socketID as disconnected.
// Exactly one active record should match. More than one is a data-integrity
// violation and is logged as an error without repair; zero matches is only a
// warning since a prior event may already have marked the record.
func (s *PresenceService) MarkDisconnected(ctx context.Context, socketID string) error {
	keyCondition := "#socketId = :socketId"
	expressionValues := map[string]types.AttributeValue{
		":socketId": &types.AttributeValueMemberS{Value: socketID},
	}
	expressionNames := map[string]string{
		"#socketId": "socketId",
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ParticipantsTable,
		models.ParticipantsSocketIndex, keyCondition, expressionValues, expressionNames, activeBindingScan)
	if err != nil {
		return fmt.Errorf("failed to query bindings for socketId %s: %w", socketID, err)
	}

	var bindings []models.Participant
	if err := attributevalue.UnmarshalListOfMaps(items, &bindings); err != nil {
		return fmt.Errorf("failed to parse bindings for socketId %s: %w", socketID, err)
	}

	var active []models.Participant
	for _, b := range bindings {
		if !b.Disconnected {
			active = append(active, b)
		}
	}

	if len(active) == 0 {
		log.Printf("⚠️ Participant with socketId %s not found, may already be marked disconnected", socketID)
		return nil
	}
	if len(active) > 1 {
		// This shouldn't happen, it means multiple active participants share one socketId.
		log.Printf("❌ Integrity violation: %d active participants share socketId %s", len(active), socketID)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedDateTime > active[j].CreatedDateTime
	})
	target := active[0]

	key := map[string]types.AttributeValue{
		"userId":          &types.AttributeValueMemberS{Value: target.UserID},
		"createdDateTime": &types.AttributeValueMemberS{Value: target.CreatedDateTime},
	}
	// The attribute_not_exists guard keeps a duplicate disconnect event from
	// double-writing the same record.
	err = s.Dynamo.UpdateItemWithCondition(ctx, models.ParticipantsTable, key,
		"SET disconnected = :true",
		"attribute_not_exists(disconnected)",
		map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
		nil,
	)
	if errors.Is(err, ErrConditionFailed) {
		log.Printf("⚠️ Binding for socketId %s was already marked disconnected", socketID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark socketId %s disconnected: %w", socketID, err)
	}

	log.Printf("✅ Participant marked disconnected: userId=%s socketId=%s", target.UserID, socketID)
	return nil
}
