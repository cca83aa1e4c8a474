package services

import (
	"context"
	"fmt"
	"os"

	"accessible_connect/models"
)

// AppConfigService serves the session directory the client fetches at
// startup. Session records are written by provisioning and read-only here.
type AppConfigService struct {
	Dynamo *DynamoService
}

// GetAppConfig returns the endpoint URL plus every non-deleted session.
func (s *AppConfigService) GetAppConfig(ctx context.Context) (*models.AppConfig, error) {
	var moderators []models.Moderator
	err := s.Dynamo.ScanWithFilter(ctx, models.ModeratorsTable, nil, nil, &moderators)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	sessions := make([]models.Session, 0, len(moderators))
	for _, m := range moderators {
		if m.Deleted {
			continue
		}
		sessions = append(sessions, models.Session{
			ModeratorUserID: m.ModeratorUserID,
			SessionID:       m.SessionID,
			GroupID:         m.GroupID,
			ThreadID:        m.ThreadID,
		})
	}

	return &models.AppConfig{
		EndpointURL: os.Getenv("ACS_ENDPOINT_URL"),
		Sessions:    sessions,
	}, nil
}
