package ledger

// Order selects the chronological direction of a history projection.
type Order string

const (
	// OrderAsc is oldest first, the order balances are computed in.
	OrderAsc Order = "asc"
	// OrderDesc is newest first, the usual display and export order.
	OrderDesc Order = "desc"
)

// History returns a copy of the wallet's transactions in the requested
// order, optionally restricted to the given types. It is a pure read
// projection; the wallet is not modified.
func (w *Wallet) History(order Order, types ...TxType) []Transaction {
	out := make([]Transaction, 0, len(w.Transactions))
	for _, tx := range w.Transactions {
		if len(types) > 0 && !containsType(types, tx.Type) {
			continue
		}
		out = append(out, tx)
	}

	if order == OrderDesc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func containsType(types []TxType, t TxType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// Summary aggregates a wallet's transaction totals.
type Summary struct {
	Deposits    int64 `json:"deposits"`
	Withdrawals int64 `json:"withdrawals"`
	Count       int   `json:"count"`
}

// Summarize totals deposits and withdrawals across all transactions.
func (w *Wallet) Summarize() Summary {
	var s Summary
	for _, tx := range w.Transactions {
		switch tx.Type {
		case TypeDeposit:
			s.Deposits += tx.Amount
		case TypeWithdrawal:
			s.Withdrawals += tx.Amount
		}
		s.Count++
	}
	return s
}

// GoalProgress describes how close a wallet is to its savings goal.
type GoalProgress struct {
	Tracked   bool    `json:"tracked"`
	Reached   bool    `json:"reached"`
	Remaining int64   `json:"remaining"`
	Percent   float64 `json:"percent"`
}

// Progress reports goal progress. Wallets with a zero goal are untracked.
// Percent is capped at 100 and floored at 0 for overdrawn wallets.
func (w *Wallet) Progress() GoalProgress {
	if w.Goal <= 0 {
		return GoalProgress{}
	}

	p := GoalProgress{Tracked: true}
	if w.Amount >= w.Goal {
		p.Reached = true
		p.Percent = 100
		return p
	}

	p.Remaining = w.Goal - w.Amount
	if w.Amount > 0 {
		p.Percent = float64(w.Amount) / float64(w.Goal) * 100
	}
	return p
}
