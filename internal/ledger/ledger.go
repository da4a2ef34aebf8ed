// Package ledger implements the wallet recompute engine: pure, deterministic
// bookkeeping over wallets and their transactions. The engine performs no
// I/O; durable storage is the store package's concern and callers decide
// when to persist the values returned here.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TxType distinguishes deposits from withdrawals. The type carries the sign;
// transaction amounts are always positive.
type TxType string

const (
	// TypeDeposit increases the wallet balance.
	TypeDeposit TxType = "deposit"
	// TypeWithdrawal decreases the wallet balance.
	TypeWithdrawal TxType = "withdrawal"
)

// Valid reports whether t is one of the two known transaction types.
func (t TxType) Valid() bool {
	return t == TypeDeposit || t == TypeWithdrawal
}

// Signed applies the type's sign to a positive amount.
func (t TxType) Signed(amount int64) int64 {
	if t == TypeWithdrawal {
		return -amount
	}
	return amount
}

// Label returns the human-readable name used in exports.
func (t TxType) Label() string {
	if t == TypeWithdrawal {
		return "Withdrawal"
	}
	return "Deposit"
}

// Transaction is a single deposit or withdrawal event. Balance is derived:
// it is the wallet's running balance immediately after this transaction in
// chronological order, rewritten by every recompute and never trusted as
// input.
type Transaction struct {
	ID      string    `json:"id"`
	Type    TxType    `json:"type"`
	Amount  int64     `json:"amount"`
	Note    string    `json:"note,omitempty"`
	Date    time.Time `json:"date"`
	Balance int64     `json:"balance"`
}

// Wallet is a named running balance with an optional savings goal. Amounts
// are minor currency units. Transactions are kept sorted by Date ascending;
// Amount always equals InitialAmount plus the signed sum of transactions.
type Wallet struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	InitialAmount int64         `json:"initial_amount"`
	Goal          int64         `json:"goal"`
	Amount        int64         `json:"amount"`
	Transactions  []Transaction `json:"transactions"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewWallet validates the inputs and builds a wallet with no transactions
// and Amount equal to the initial amount.
func NewWallet(name string, initialAmount, goal int64) (Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Wallet{}, &ValidationError{Field: "name", Reason: ReasonEmptyName}
	}
	if initialAmount < 0 {
		return Wallet{}, &ValidationError{Field: "initial_amount", Reason: ReasonNegativeAmount}
	}
	if goal < 0 {
		return Wallet{}, &ValidationError{Field: "goal", Reason: ReasonNegativeGoal}
	}

	return Wallet{
		ID:            uuid.NewString(),
		Name:          name,
		InitialAmount: initialAmount,
		Goal:          goal,
		Amount:        initialAmount,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// TxInput captures a new deposit or withdrawal. A zero Date means "now".
// AllowOverdraft is the caller's explicit confirmation for withdrawals that
// would drive the balance negative; without it such withdrawals are refused
// with an OverdraftError and the wallet is left unchanged.
type TxInput struct {
	Type           TxType
	Amount         int64
	Note           string
	Date           time.Time
	AllowOverdraft bool
}

// Apply records a transaction against the wallet and returns it with its
// balance snapshot filled in. Appending at the chronological tail updates
// the balance incrementally; a backdated entry triggers a full recompute so
// every snapshot after the insertion point stays correct.
func (w *Wallet) Apply(in TxInput) (Transaction, error) {
	if !in.Type.Valid() {
		return Transaction{}, &ValidationError{Field: "type", Reason: ReasonUnknownType}
	}
	if in.Amount <= 0 {
		return Transaction{}, &ValidationError{Field: "amount", Reason: ReasonNonPositive}
	}

	if in.Type == TypeWithdrawal && !in.AllowOverdraft && w.Amount-in.Amount < 0 {
		return Transaction{}, &OverdraftError{Balance: w.Amount, Amount: in.Amount}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx := Transaction{
		ID:     uuid.NewString(),
		Type:   in.Type,
		Amount: in.Amount,
		Note:   strings.TrimSpace(in.Note),
		Date:   date,
	}

	backdated := len(w.Transactions) > 0 && date.Before(w.Transactions[len(w.Transactions)-1].Date)
	w.Transactions = append(w.Transactions, tx)

	if backdated {
		w.Recompute()
		out, _ := w.transaction(tx.ID)
		return *out, nil
	}

	w.Amount += in.Type.Signed(in.Amount)
	w.Transactions[len(w.Transactions)-1].Balance = w.Amount
	return w.Transactions[len(w.Transactions)-1], nil
}

// TxEdit replaces a transaction's mutable fields. Every field is applied;
// the id stays fixed.
type TxEdit struct {
	Type   TxType
	Amount int64
	Note   string
	Date   time.Time
}

// EditTransaction rewrites the identified transaction and recomputes all
// balances. Edits apply even when they drive the balance negative: unlike
// Apply there is no overdraft confirmation, matching the historical
// behavior of the app this engine was extracted from.
func (w *Wallet) EditTransaction(id string, in TxEdit) error {
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Reason: ReasonUnknownType}
	}
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: ReasonNonPositive}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: ReasonZeroDate}
	}

	tx, err := w.transaction(id)
	if err != nil {
		return err
	}

	tx.Type = in.Type
	tx.Amount = in.Amount
	tx.Note = strings.TrimSpace(in.Note)
	tx.Date = in.Date

	w.Recompute()
	return nil
}

// DeleteTransaction removes the identified transaction and recomputes.
func (w *Wallet) DeleteTransaction(id string) error {
	for i := range w.Transactions {
		if w.Transactions[i].ID == id {
			w.Transactions = append(w.Transactions[:i], w.Transactions[i+1:]...)
			w.Recompute()
			return nil
		}
	}
	return &NotFoundError{Kind: "transaction", ID: id}
}

// Rename updates the wallet's display name.
func (w *Wallet) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Reason: ReasonEmptyName}
	}
	w.Name = name
	return nil
}

// SetGoal updates the savings goal. Zero means no goal is tracked.
func (w *Wallet) SetGoal(goal int64) error {
	if goal < 0 {
		return &ValidationError{Field: "goal", Reason: ReasonNegativeGoal}
	}
	w.Goal = goal
	return nil
}

// Recompute re-derives every balance snapshot and the wallet amount from
// scratch: transactions are stable-sorted by date ascending (same-date
// entries keep their insertion order) and the running total starts at the
// initial amount. Idempotent, and the only place derived state is computed
// from scratch; every other mutation either calls it or performs an
// incremental update consistent with it.
func (w *Wallet) Recompute() {
	sort.SliceStable(w.Transactions, func(i, j int) bool {
		return w.Transactions[i].Date.Before(w.Transactions[j].Date)
	})

	balance := w.InitialAmount
	for i := range w.Transactions {
		balance += w.Transactions[i].Type.Signed(w.Transactions[i].Amount)
		w.Transactions[i].Balance = balance
	}
	w.Amount = balance
}

// Clone returns a deep copy; mutating the copy leaves the original intact.
func (w Wallet) Clone() Wallet {
	out := w
	out.Transactions = append([]Transaction(nil), w.Transactions...)
	return out
}

// CloneWallets deep-copies a wallet set.
func CloneWallets(ws []Wallet) []Wallet {
	out := make([]Wallet, len(ws))
	for i := range ws {
		out[i] = ws[i].Clone()
	}
	return out
}

// DeleteWallet removes the wallet and all its transactions from the set.
// Irreversible; the caller is expected to have confirmed with the user.
func DeleteWallet(wallets []Wallet, id string) ([]Wallet, error) {
	for i := range wallets {
		if wallets[i].ID == id {
			return append(wallets[:i], wallets[i+1:]...), nil
		}
	}
	return wallets, &NotFoundError{Kind: "wallet", ID: id}
}

// FindWallet locates a wallet by id within a set.
func FindWallet(wallets []Wallet, id string) (*Wallet, error) {
	for i := range wallets {
		if wallets[i].ID == id {
			return &wallets[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "wallet", ID: id}
}

func (w *Wallet) transaction(id string) (*Transaction, error) {
	for i := range w.Transactions {
		if w.Transactions[i].ID == id {
			return &w.Transactions[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "transaction", ID: id}
}
