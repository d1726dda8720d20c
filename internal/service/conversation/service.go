package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zhouzirui/funds-assistant/backend/internal/logging"
	model "github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
	"github.com/zhouzirui/funds-assistant/backend/internal/service/intent"
	"github.com/zhouzirui/funds-assistant/backend/internal/service/session"
)

var (
	ErrMessageRequired   = errors.New("message is required")
	ErrSessionIDRequired = errors.New("session id is required")
)

const (
	StartedMessage = "Conversation started"
	HandOffPrompt  = "Thank you! I will guide you through the process."
	ClarifyPrompt  = "Could you please clarify? Do you want to transfer or deposit funds?"
)

// Classifier decides the intent of the newest user line given the transcript so far.
type Classifier interface {
	Classify(ctx context.Context, userInput, transcript string) intent.Result
}

// StartResult is returned when a conversation begins.
type StartResult struct {
	Message    string `json:"message"`
	SessionID  string `json:"session_id"`
	NextPrompt string `json:"next_prompt"`
}

// ProcessResult carries the detected intent and the scripted follow-up.
type ProcessResult struct {
	Intent     model.Intent `json:"intent"`
	NextPrompt string       `json:"next_prompt"`
}

// Service runs the single-shot intent dialogue on top of a session store.
type Service struct {
	store      session.Store
	classifier Classifier
	now        func() time.Time
}

// NewService wires the store and classifier together.
func NewService(store session.Store, classifier Classifier) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		now:        time.Now,
	}
}

// Start replaces any conversation held by clientKey with a new one.
func (s *Service) Start(ctx context.Context, clientKey string) (StartResult, error) {
	sess, err := s.store.Create(ctx, clientKey)
	if err != nil {
		return StartResult{}, fmt.Errorf("failed to create session: %w", err)
	}

	logging.Infof("conversation", "started new session: %s", sess.ID)

	return StartResult{
		Message:    StartedMessage,
		SessionID:  sess.ID,
		NextPrompt: model.WelcomeMessage,
	}, nil
}

// Process classifies one user message. A resolved intent ends the session; an
// unknown one keeps it for a clarifying turn.
func (s *Service) Process(ctx context.Context, clientKey, sessionID, message string) (ProcessResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ProcessResult{}, ErrMessageRequired
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ProcessResult{}, ErrSessionIDRequired
	}
	if clientKey == "" {
		return ProcessResult{}, session.ErrSessionNotFound
	}

	sess, err := s.store.Get(ctx, clientKey, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return ProcessResult{}, err
		}
		return ProcessResult{}, fmt.Errorf("failed to load session: %w", err)
	}

	sess.AppendUser(message)
	result := s.classifier.Classify(ctx, message, sess.Transcript)
	if !result.OK() {
		logging.Infof("conversation", "session %s classified as UNKNOWN: %v", sess.ID, result.Err)
	}

	sess.Flow = result.Intent
	sess.LastUpdated = s.now().UTC()

	if sess.Flow.Resolved() {
		if err := s.store.Clear(ctx, clientKey); err != nil {
			return ProcessResult{}, fmt.Errorf("failed to clear session: %w", err)
		}
		logging.Infof("conversation", "session %s resolved to %s", sess.ID, sess.Flow)
		return ProcessResult{Intent: sess.Flow, NextPrompt: HandOffPrompt}, nil
	}

	if err := s.store.Update(ctx, clientKey, sess); err != nil {
		return ProcessResult{}, fmt.Errorf("failed to update session: %w", err)
	}
	return ProcessResult{Intent: model.IntentUnknown, NextPrompt: ClarifyPrompt}, nil
}
