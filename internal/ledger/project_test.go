package ledger

import "testing"

func seededWallet(t *testing.T) Wallet {
	t.Helper()
	w := mustWallet(t, "Trip", 0, 10_000)
	mustApply(t, &w, TxInput{Type: TypeDeposit, Amount: 4_000, Date: t1})
	mustApply(t, &w, TxInput{Type: TypeWithdrawal, Amount: 1_000, Date: t2})
	mustApply(t, &w, TxInput{Type: TypeDeposit, Amount: 2_500, Date: t3})
	return w
}

func TestHistoryOrders(t *testing.T) {
	w := seededWallet(t)

	asc := w.History(OrderAsc)
	if len(asc) != 3 || !asc[0].Date.Equal(t1) || !asc[2].Date.Equal(t3) {
		t.Fatalf("unexpected ascending history: %+v", asc)
	}

	desc := w.History(OrderDesc)
	if !desc[0].Date.Equal(t3) || !desc[2].Date.Equal(t1) {
		t.Fatalf("unexpected descending history: %+v", desc)
	}

	// Projections are copies; mutating them must not touch the wallet.
	desc[0].Amount = 999
	if w.Transactions[2].Amount == 999 {
		t.Fatal("history must not alias wallet transactions")
	}
}

func TestHistoryTypeFilter(t *testing.T) {
	w := seededWallet(t)

	deposits := w.History(OrderDesc, TypeDeposit)
	if len(deposits) != 2 {
		t.Fatalf("expected 2 deposits, got %d", len(deposits))
	}
	for _, tx := range deposits {
		if tx.Type != TypeDeposit {
			t.Fatalf("unexpected type %s in deposit filter", tx.Type)
		}
	}

	withdrawals := w.History(OrderAsc, TypeWithdrawal)
	if len(withdrawals) != 1 || withdrawals[0].Amount != 1_000 {
		t.Fatalf("unexpected withdrawal filter result: %+v", withdrawals)
	}
}

func TestSummarize(t *testing.T) {
	w := seededWallet(t)
	s := w.Summarize()
	if s.Deposits != 6_500 || s.Withdrawals != 1_000 || s.Count != 3 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestProgress(t *testing.T) {
	w := seededWallet(t)

	p := w.Progress()
	if !p.Tracked || p.Reached {
		t.Fatalf("unexpected progress: %+v", p)
	}
	if p.Remaining != 4_500 || p.Percent != 55 {
		t.Fatalf("expected remaining 4500 at 55%%, got %+v", p)
	}

	mustApply(t, &w, TxInput{Type: TypeDeposit, Amount: 5_000})
	p = w.Progress()
	if !p.Reached || p.Remaining != 0 || p.Percent != 100 {
		t.Fatalf("expected goal reached, got %+v", p)
	}

	untracked := mustWallet(t, "NoGoal", 100, 0)
	if p := untracked.Progress(); p.Tracked {
		t.Fatalf("zero goal must be untracked, got %+v", p)
	}
}
