package conversation

import (
	"strings"
	"testing"
	"time"
)

func TestNewSessionSeedsWelcomeLine(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	session := NewSession("abc", now)

	if session.Flow != IntentUnknown {
		t.Fatalf("expected UNKNOWN flow, got %s", session.Flow)
	}
	if !strings.HasPrefix(session.Transcript, "System: Hello! I'm your banking assistant.") {
		t.Fatalf("unexpected transcript: %q", session.Transcript)
	}
	if !strings.HasSuffix(session.Transcript, "\n") {
		t.Fatal("transcript line should be newline terminated")
	}
	if !session.CreatedAt.Equal(now) || !session.LastUpdated.Equal(now) {
		t.Fatal("timestamps should both be set at creation")
	}
}

func TestAppendUserKeepsOrder(t *testing.T) {
	session := NewSession("abc", time.Now())
	session.AppendUser("hi")
	session.AppendUser("send money")

	lines := strings.Split(strings.TrimSuffix(session.Transcript, "\n"), "\n")
	last := lines[len(lines)-2:]
	if last[0] != "User: hi" || last[1] != "User: send money" {
		t.Fatalf("unexpected transcript tail: %v", last)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	session := NewSession("abc", now.Add(-2*time.Hour))

	if !session.Expired(now, time.Hour) {
		t.Fatal("expected session idle for 2h to be expired with 1h ttl")
	}
	if session.Expired(now, 0) {
		t.Fatal("zero ttl disables expiry")
	}
}

func TestParseIntent(t *testing.T) {
	cases := map[string]struct {
		want Intent
		ok   bool
	}{
		"FUNDS_TRANSFER":   {IntentFundsTransfer, true},
		" funds_deposit ":  {IntentFundsDeposit, true},
		"UNKNOWN":          {IntentUnknown, true},
		"FUNDS_WITHDRAWAL": {IntentUnknown, false},
		"":                 {IntentUnknown, false},
	}

	for raw, tc := range cases {
		got, ok := ParseIntent(raw)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseIntent(%q) = %s,%v want %s,%v", raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolved(t *testing.T) {
	if IntentUnknown.Resolved() {
		t.Fatal("UNKNOWN must not be resolved")
	}
	if !IntentFundsTransfer.Resolved() || !IntentFundsDeposit.Resolved() {
		t.Fatal("concrete intents must be resolved")
	}
}
