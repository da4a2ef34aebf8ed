// Package export renders wallet history as CSV. It is a pure formatting
// layer over the ledger's history projection; nothing here mutates wallet
// state.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbook/pocketbook/internal/ledger"
)

// header is the fixed column set; downstream tooling depends on this order.
var header = []string{"Date", "Type", "Amount", "Note", "Balance"}

// Write renders the wallet's transactions newest first. A UTF-8 BOM is
// emitted so spreadsheet applications detect the encoding.
func Write(w io.Writer, wallet ledger.Wallet) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range wallet.History(ledger.OrderDesc) {
		record := []string{
			tx.Date.UTC().Format(time.RFC3339),
			tx.Type.Label(),
			strconv.FormatInt(tx.Amount, 10),
			tx.Note,
			strconv.FormatInt(tx.Balance, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename builds a download name from the wallet name and export date,
// with anything unsafe for a filename replaced by underscores.
func Filename(wallet ledger.Wallet, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, wallet.Name)

	return fmt.Sprintf("%s-transactions-%s.csv", safe, now.Format("2006-01-02"))
}
