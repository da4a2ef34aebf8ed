package ledger

import "fmt"

// Validation reasons reported to callers so the UI can pick a precise message.
const (
	ReasonEmptyName      = "name must not be empty"
	ReasonNegativeAmount = "amount must not be negative"
	ReasonNegativeGoal   = "goal must not be negative"
	ReasonNonPositive    = "amount must be greater than zero"
	ReasonUnknownType    = "unknown transaction type"
	ReasonZeroDate       = "date must be set"
)

// ValidationError reports user input that violates a precondition. It is
// always recoverable: the caller re-prompts with the reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation referencing a wallet or transaction id
// that does not exist in the given collection, typically a stale reference.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// OverdraftError is advisory, not a hard failure: a withdrawal would drive
// the balance negative and the caller has not confirmed it. The wallet is
// left untouched; retry with TxInput.AllowOverdraft to proceed.
type OverdraftError struct {
	Balance int64
	Amount  int64
}

func (e *OverdraftError) Error() string {
	return fmt.Sprintf("withdrawal of %d exceeds balance %d", e.Amount, e.Balance)
}

// Shortfall returns how far below zero the balance would land.
func (e *OverdraftError) Shortfall() int64 {
	return e.Amount - e.Balance
}
