package chat

import "time"

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// KindText is the only turn kind produced today.
const KindText = "text"

// Turn is one utterance in a conversation transcript.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
	Kind      string    `json:"type"`
}

// Label renders the speaker the way prompts address it.
func (s Speaker) Label() string {
	switch s {
	case SpeakerUser:
		return "Customer"
	case SpeakerAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}
