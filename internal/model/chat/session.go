package chat

// SessionState is the externally visible lifecycle state of a session.
type SessionState string

const (
	// StateEmpty means the session exists but holds no turns.
	StateEmpty SessionState = "EMPTY"
	// StateActive means at least one turn has been recorded. Sessions never leave it.
	StateActive SessionState = "ACTIVE"
)

// Exchange is the result of one submitted utterance.
type Exchange struct {
	SessionID  string `json:"session_id"`
	User       Turn   `json:"user_message"`
	Assistant  Turn   `json:"ai_response"`
	Transcript []Turn `json:"conversation_history"`
}
