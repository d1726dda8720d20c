package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/funds-assistant/backend/internal/analysis/keyword"
	"github.com/zhouzirui/funds-assistant/backend/internal/logging"
	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

// ErrParseFailed marks a model reply that is not a JSON object with a known intent.
var ErrParseFailed = errors.New("intent reply could not be parsed")

const classifierUserPrompt = "{instructions}\n\nConversation so far:\n{transcript}\n\nUser: {message}"

// Result is the typed outcome of one classification. Intent is always usable:
// any failure has already been mapped to UNKNOWN.
type Result struct {
	Intent conversation.Intent
	Raw    string
	Err    error
}

// OK reports whether the model produced a well-formed reply.
func (r Result) OK() bool {
	return r.Err == nil
}

// Classifier asks a chat model which flow the user wants.
type Classifier struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	instructions string
	fallback     *keyword.Analyzer
}

// NewClassifier compiles the prompt + model chain. A nil chatModel leaves the
// classifier in keyword-only mode.
func NewClassifier(ctx context.Context, chatModel model.BaseChatModel, spec PromptSpec) (*Classifier, error) {
	c := &Classifier{
		instructions: spec.Instructions(),
		fallback:     keyword.NewAnalyzer(spec.Keywords()),
	}

	if chatModel == nil {
		return c, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile intent classifier chain: %w", err)
	}

	c.chain = runnable
	return c, nil
}

// Enabled 返回是否接入了大模型。
func (c *Classifier) Enabled() bool {
	return c != nil && c.chain != nil
}

// Classify sends instructions, transcript and the new user line to the model in a
// single call. It never returns an error; failures come back as UNKNOWN with Err set.
func (c *Classifier) Classify(ctx context.Context, userInput, transcript string) Result {
	if !c.Enabled() {
		decision := c.fallback.Analyze(userInput)
		return Result{Intent: decision.Intent}
	}

	msg, err := c.chain.Invoke(ctx, map[string]any{
		"instructions": c.instructions,
		"transcript":   transcript,
		"message":      userInput,
	})
	if err != nil {
		logging.Errorf("intent", "classifier invoke failed: %v", err)
		return Result{Intent: conversation.IntentUnknown, Err: fmt.Errorf("classifier invoke: %w", err)}
	}

	raw := ""
	if msg != nil {
		raw = strings.TrimSpace(msg.Content)
	}
	logging.Infof("intent", "response: %s", raw)

	intent, err := parseReply(raw)
	return Result{Intent: intent, Raw: raw, Err: err}
}

type replyPayload struct {
	Intent *string `json:"intent"`
}

// parseReply accepts only a bare JSON object whose intent is one of the known labels.
func parseReply(raw string) (conversation.Intent, error) {
	var payload replyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return conversation.IntentUnknown, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if payload.Intent == nil {
		return conversation.IntentUnknown, fmt.Errorf("%w: missing intent key", ErrParseFailed)
	}

	intent, ok := conversation.ParseIntent(*payload.Intent)
	if !ok {
		return conversation.IntentUnknown, fmt.Errorf("%w: unexpected intent %q", ErrParseFailed, *payload.Intent)
	}
	return intent, nil
}
