package intent

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

//go:embed prompts/intent.yaml
var defaultPromptYAML []byte

// PromptSpec is the instruction block sent ahead of every transcript.
type PromptSpec struct {
	System  string       `yaml:"system"`
	Intents []IntentSpec `yaml:"intents"`
	Reply   string       `yaml:"reply"`
}

// IntentSpec lists the vocabulary that signals one intent.
type IntentSpec struct {
	Name     conversation.Intent `yaml:"name"`
	Keywords []string            `yaml:"keywords"`
}

// DefaultPrompt returns the embedded prompt spec.
func DefaultPrompt() PromptSpec {
	spec, err := parsePrompt(defaultPromptYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded intent prompt is invalid: %v", err))
	}
	return spec
}

// LoadPrompt reads a prompt spec from path, falling back to the embedded one when path is empty.
func LoadPrompt(path string) (PromptSpec, error) {
	if path == "" {
		return DefaultPrompt(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return PromptSpec{}, fmt.Errorf("failed to read intent prompt %s: %w", path, err)
	}
	spec, err := parsePrompt(b)
	if err != nil {
		return PromptSpec{}, fmt.Errorf("invalid intent prompt %s: %w", path, err)
	}
	return spec, nil
}

func parsePrompt(b []byte) (PromptSpec, error) {
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return PromptSpec{}, err
	}
	if strings.TrimSpace(spec.System) == "" {
		return PromptSpec{}, fmt.Errorf("system instructions are required")
	}
	for _, it := range spec.Intents {
		if !it.Name.Resolved() {
			return PromptSpec{}, fmt.Errorf("intent %q is not a classifiable intent", it.Name)
		}
		if len(it.Keywords) == 0 {
			return PromptSpec{}, fmt.Errorf("intent %s has no keywords", it.Name)
		}
	}
	return spec, nil
}

// Instructions renders the full instruction text.
func (p PromptSpec) Instructions() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.System))
	b.WriteString("\n\n")
	for _, it := range p.Intents {
		fmt.Fprintf(&b, "- If the user mentions %s, classify as %s.\n", strings.Join(it.Keywords, ", "), it.Name)
	}
	if reply := strings.TrimSpace(p.Reply); reply != "" {
		b.WriteString("\n")
		b.WriteString(reply)
	}
	return b.String()
}

// Keywords maps each intent to its vocabulary.
func (p PromptSpec) Keywords() map[conversation.Intent][]string {
	out := make(map[conversation.Intent][]string, len(p.Intents))
	for _, it := range p.Intents {
		out[it.Name] = append(out[it.Name], it.Keywords...)
	}
	return out
}
