package models

// Participant types. The display name of a participant always encodes its
// type as "<Type>: <First> <Last>".
const (
	ParticipantTypeDeaf        = "Deaf"
	ParticipantTypeHearing     = "Hearing"
	ParticipantTypeInterpreter = "Interpreter"
	ParticipantTypeAdmin       = "Admin"
)

// Participant is one connection binding record: a participant identity tied
// to the socket it is currently reachable on. A reconnect inserts a fresh
// record with the new socketId; older records are never deleted, the most
// recent non-disconnected one wins.
type Participant struct {
	FirstName       string `dynamodbav:"firstName" json:"firstName"`
	LastName        string `dynamodbav:"lastName" json:"lastName"`
	DisplayName     string `dynamodbav:"displayName" json:"displayName"`
	UserID          string `dynamodbav:"userId" json:"userId"`
	GroupID         string `dynamodbav:"groupId" json:"groupId"`
	ThreadID        string `dynamodbav:"threadId" json:"threadId"`
	SessionID       string `dynamodbav:"sessionId" json:"sessionId"`
	ParticipantType string `dynamodbav:"participantType" json:"participantType"`
	SocketID        string `dynamodbav:"socketId" json:"socketId"`
	CreatedDateTime string `dynamodbav:"createdDateTime" json:"createdDateTime"`
	UpdatedDateTime string `dynamodbav:"updatedDateTime,omitempty" json:"updatedDateTime,omitempty"`
	// Disconnected is only ever written by the presence tracker when the
	// participant deliberately leaves. Absent means the binding is active.
	Disconnected bool `dynamodbav:"disconnected,omitempty" json:"disconnected,omitempty"`
}

// IsValidParticipantType reports whether t is one of the closed set of types.
func IsValidParticipantType(t string) bool {
	switch t {
	case ParticipantTypeDeaf, ParticipantTypeHearing, ParticipantTypeInterpreter, ParticipantTypeAdmin:
		return true
	}
	return false
}

// ParticipantsTable is the DynamoDB table for connection bindings,
// keyed (userId, createdDateTime).
const ParticipantsTable = "Participants"

// ParticipantsSocketIndex is the GSI keyed by socketId, used by the
// disconnect path.
const ParticipantsSocketIndex = "socketId-index"
