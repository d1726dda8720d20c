package conversation

import (
	"strings"
	"time"
)

// WelcomeMessage 是新会话的开场白，同时作为 transcript 的第一行。
const WelcomeMessage = "Hello! I'm your banking assistant. How can I assist you today?\n" +
	"I can help with Funds Transfer and Funds Deposit. Just let me know what you need."

// Session captures one in-progress intent classification dialogue.
type Session struct {
	ID          string    `json:"session_id"`
	Transcript  string    `json:"conversation_history"`
	Flow        Intent    `json:"flow"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewSession seeds a session with the welcome line and an unresolved flow.
func NewSession(id string, now time.Time) Session {
	now = now.UTC()
	return Session{
		ID:          id,
		Transcript:  "System: " + WelcomeMessage + "\n",
		Flow:        IntentUnknown,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// AppendUser records a user turn in the transcript.
func (s *Session) AppendUser(message string) {
	s.appendLine("User", message)
}

func (s *Session) appendLine(speaker, text string) {
	var b strings.Builder
	b.WriteString(s.Transcript)
	b.WriteString(speaker)
	b.WriteString(": ")
	b.WriteString(text)
	b.WriteString("\n")
	s.Transcript = b.String()
}

// Expired reports whether the session has been idle for longer than ttl.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.LastUpdated) > ttl
}
