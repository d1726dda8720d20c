package conversation

import "strings"

// Intent is the classified purpose of a user's message.
type Intent string

const (
	IntentUnknown       Intent = "UNKNOWN"
	IntentFundsTransfer Intent = "FUNDS_TRANSFER"
	IntentFundsDeposit  Intent = "FUNDS_DEPOSIT"
)

// ParseIntent normalizes a raw label. Anything outside the three known values is rejected.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(strings.ToUpper(strings.TrimSpace(raw))) {
	case IntentUnknown:
		return IntentUnknown, true
	case IntentFundsTransfer:
		return IntentFundsTransfer, true
	case IntentFundsDeposit:
		return IntentFundsDeposit, true
	default:
		return IntentUnknown, false
	}
}

// Resolved is true once the intent names a concrete hand-off flow.
func (i Intent) Resolved() bool {
	return i == IntentFundsTransfer || i == IntentFundsDeposit
}

func (i Intent) String() string {
	if i == "" {
		return string(IntentUnknown)
	}
	return string(i)
}
