package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"accessible_connect/models"
)

// ParticipantService owns the identity-binding writes: one record per
// (userId, socketId) pair, inserted on first join and again whenever the
// client announces a fresh socket after a reconnect.
type ParticipantService struct {
	Dynamo *DynamoService
}

// CreateParticipant validates and inserts a new connection binding. The new
// record supersedes any previous binding for the same userId; older records
// are left in place for the presence tracker to reason about.
func (s *ParticipantService) CreateParticipant(ctx context.Context, participant models.Participant) error {
	if participant.UserID == "" || participant.SessionID == "" || participant.SocketID == "" {
		return errors.New("participant is missing userId, sessionId, or socketId")
	}
	if !models.IsValidParticipantType(participant.ParticipantType) {
		return fmt.Errorf("unknown participant type %q", participant.ParticipantType)
	}

	participant.CreatedDateTime = time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.Dynamo.PutItem(ctx, models.ParticipantsTable, participant); err != nil {
		return fmt.Errorf("failed to store participant: %w", err)
	}

	log.Printf("✅ Participant inserted: userId=%s sessionId=%s socketId=%s",
		participant.UserID, participant.SessionID, participant.SocketID)
	return nil
}
