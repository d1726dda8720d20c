package keyword

import (
	"strings"
	"unicode"

	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

// Decision 给出关键词匹配的意图以及各意图得分。
type Decision struct {
	Intent conversation.Intent
	Scores map[conversation.Intent]int
}

// Analyzer scores text against per-intent vocabularies.
type Analyzer struct {
	buckets map[conversation.Intent][]string
}

// NewAnalyzer normalizes the vocabulary once so Analyze only tokenizes the input.
func NewAnalyzer(buckets map[conversation.Intent][]string) *Analyzer {
	normalized := make(map[conversation.Intent][]string, len(buckets))
	for intent, words := range buckets {
		for _, w := range words {
			if phrase := normalize(w); phrase != " " {
				normalized[intent] = append(normalized[intent], phrase)
			}
		}
	}
	return &Analyzer{buckets: normalized}
}

// Analyze 根据关键词命中次数选择意图，没有命中或得分相同时返回 UNKNOWN。
func (a *Analyzer) Analyze(text string) Decision {
	decision := Decision{Intent: conversation.IntentUnknown, Scores: map[conversation.Intent]int{}}

	normalized := normalize(text)
	if normalized == " " {
		return decision
	}

	for intent, phrases := range a.buckets {
		for _, phrase := range phrases {
			if strings.Contains(normalized, phrase) {
				decision.Scores[intent]++
			}
		}
	}

	best, bestScore, tie := conversation.IntentUnknown, 0, false
	for intent, score := range decision.Scores {
		switch {
		case score > bestScore:
			best, bestScore, tie = intent, score, false
		case score == bestScore && score > 0:
			tie = true
		}
	}
	if bestScore > 0 && !tie {
		decision.Intent = best
	}
	return decision
}

// normalize lowercases and splits on anything that is not a letter or digit, so
// short tokens like "rd" only match whole words.
func normalize(text string) string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(tokens, " ") + " "
}
