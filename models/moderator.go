package models

// Moderator is one scheduled session: a moderator identity plus the call
// room and chat thread it owns. Written once by provisioning, read-only at
// runtime.
type Moderator struct {
	ModeratorUserID string `dynamodbav:"moderatorUserId" json:"moderatorUserId"`
	SessionID       string `dynamodbav:"sessionId" json:"sessionId"`
	GroupID         string `dynamodbav:"groupId" json:"groupId"`
	ThreadID        string `dynamodbav:"threadId" json:"threadId"`
	CreatedDateTime string `dynamodbav:"createdDateTime" json:"createdDateTime"`
	Deleted         bool   `dynamodbav:"deleted,omitempty" json:"deleted,omitempty"`
}

// Session is the client-facing view of a Moderator record.
type Session struct {
	ModeratorUserID string `json:"moderatorUserId"`
	SessionID       string `json:"sessionId"`
	GroupID         string `json:"groupId"`
	ThreadID        string `json:"threadId"`
}

// AppConfig is the payload served by /getAppConfig.
type AppConfig struct {
	EndpointURL string    `json:"endpointUrl"`
	Sessions    []Session `json:"sessions"`
}

// ModeratorsTable is the DynamoDB table for session/moderator records.
const ModeratorsTable = "Moderators"
