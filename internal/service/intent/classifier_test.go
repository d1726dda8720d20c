package intent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

type stubChatModel struct {
	mu     sync.Mutex
	reply  string
	err    error
	inputs [][]*schema.Message
}

func (s *stubChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := s.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func newTestClassifier(t *testing.T, stub *stubChatModel) *Classifier {
	t.Helper()
	c, err := NewClassifier(context.Background(), stub, DefaultPrompt())
	require.NoError(t, err)
	require.True(t, c.Enabled())
	return c
}

func TestClassifyParsesIntent(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  conversation.Intent
	}{
		{"transfer", `{"intent": "FUNDS_TRANSFER"}`, conversation.IntentFundsTransfer},
		{"deposit with whitespace", "  \n{\"intent\": \"FUNDS_DEPOSIT\"}\n", conversation.IntentFundsDeposit},
		{"lowercase label", `{"intent": "funds_transfer"}`, conversation.IntentFundsTransfer},
		{"explicit unknown", `{"intent": "UNKNOWN"}`, conversation.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(t, &stubChatModel{reply: tt.reply})
			result := c.Classify(context.Background(), "send 500 to Raj", "System: hi\nUser: send 500 to Raj\n")
			assert.True(t, result.OK())
			assert.Equal(t, tt.want, result.Intent)
		})
	}
}

func TestClassifyMalformedReplyIsUnknown(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain text", "Sure! The user wants to transfer money."},
		{"code fence", "```json\n{\"intent\": \"FUNDS_TRANSFER\"}\n```"},
		{"missing key", `{"label": "FUNDS_TRANSFER"}`},
		{"unexpected label", `{"intent": "FUNDS_WITHDRAWAL"}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(t, &stubChatModel{reply: tt.reply})
			result := c.Classify(context.Background(), "hello", "System: hi\n")
			assert.Equal(t, conversation.IntentUnknown, result.Intent)
			assert.ErrorIs(t, result.Err, ErrParseFailed)
		})
	}
}

func TestClassifyModelErrorIsUnknown(t *testing.T) {
	c := newTestClassifier(t, &stubChatModel{err: errors.New("quota exceeded")})

	result := c.Classify(context.Background(), "send money", "System: hi\n")
	assert.Equal(t, conversation.IntentUnknown, result.Intent)
	assert.Error(t, result.Err)
	assert.NotErrorIs(t, result.Err, ErrParseFailed)
}

func TestClassifyBuildsSinglePrompt(t *testing.T) {
	stub := &stubChatModel{reply: `{"intent": "UNKNOWN"}`}
	c := newTestClassifier(t, stub)

	transcript := "System: welcome\nUser: I need {help}\n"
	c.Classify(context.Background(), "I need {help}", transcript)

	require.Len(t, stub.inputs, 1)
	require.Len(t, stub.inputs[0], 1)
	msg := stub.inputs[0][0]
	assert.Equal(t, schema.User, msg.Role)
	assert.Contains(t, msg.Content, "You are a banking assistant specializing in funds management.")
	assert.Contains(t, msg.Content, "classify as FUNDS_TRANSFER")
	assert.Contains(t, msg.Content, "imps, neft, rtgs")
	assert.Contains(t, msg.Content, "\n\nConversation so far:\n"+transcript)
	assert.Contains(t, msg.Content, "\n\nUser: I need {help}")
}

func TestClassifyWithoutModelUsesKeywords(t *testing.T) {
	c, err := NewClassifier(context.Background(), nil, DefaultPrompt())
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	assert.Equal(t, conversation.IntentFundsTransfer, c.Classify(context.Background(), "pay my landlord via IMPS", "").Intent)
	assert.Equal(t, conversation.IntentFundsDeposit, c.Classify(context.Background(), "open a recurring deposit", "").Intent)
	assert.Equal(t, conversation.IntentUnknown, c.Classify(context.Background(), "what's the weather", "").Intent)
}
