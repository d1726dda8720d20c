package intent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

func TestDefaultPromptInstructions(t *testing.T) {
	spec := DefaultPrompt()
	instructions := spec.Instructions()

	assert.True(t, strings.HasPrefix(instructions, "You are a banking assistant"))
	assert.Contains(t, instructions, `"intent": "FUNDS_TRANSFER" or "FUNDS_DEPOSIT" or "UNKNOWN"`)
	assert.Contains(t, instructions, "fixed deposit")

	keywords := spec.Keywords()
	assert.Contains(t, keywords[conversation.IntentFundsTransfer], "rtgs")
	assert.Contains(t, keywords[conversation.IntentFundsDeposit], "recurring deposit")
}

func TestLoadPromptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intent.yaml")
	content := "system: Classify banking requests.\n" +
		"intents:\n" +
		"  - name: FUNDS_TRANSFER\n" +
		"    keywords: [wire]\n" +
		"reply: Reply with JSON.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	spec, err := LoadPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "Classify banking requests.\n\n- If the user mentions wire, classify as FUNDS_TRANSFER.\n\nReply with JSON.", spec.Instructions())
}

func TestLoadPromptRejectsInvalidSpec(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"no-system.yaml":   "intents: []\n",
		"bad-intent.yaml":  "system: x\nintents:\n  - name: UNKNOWN\n    keywords: [a]\n",
		"no-keywords.yaml": "system: x\nintents:\n  - name: FUNDS_DEPOSIT\n",
		"not-yaml.yaml":    "system: [unterminated\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := LoadPrompt(path)
		assert.Error(t, err, name)
	}

	_, err := LoadPrompt(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadPromptEmptyPathUsesDefault(t *testing.T) {
	spec, err := LoadPrompt("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt().Instructions(), spec.Instructions())
}
