package enums

import "fmt"

// AccountState tracks the sale lifecycle of a unique game account.
// Sold is terminal: no transition leaves it.
type AccountState string

const (
	AccountStateAvailable AccountState = "available"
	AccountStateReserved  AccountState = "reserved"
	AccountStateSold      AccountState = "sold"
)

var validAccountStates = []AccountState{
	AccountStateAvailable,
	AccountStateReserved,
	AccountStateSold,
}

// String implements fmt.Stringer.
func (a AccountState) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountState.
func (a AccountState) IsValid() bool {
	for _, candidate := range validAccountStates {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountState converts raw input into an AccountState.
func ParseAccountState(value string) (AccountState, error) {
	for _, candidate := range validAccountStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account state %q", value)
}
