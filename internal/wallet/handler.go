package wallet

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pocketbook/pocketbook/internal/export"
	"github.com/pocketbook/pocketbook/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name          string `json:"name"`
	InitialAmount int64  `json:"initial_amount"`
	Goal          int64  `json:"goal"`
}

type updateRequest struct {
	Name string `json:"name"`
	Goal int64  `json:"goal"`
}

type txRequest struct {
	Type           string `json:"type"`
	Amount         int64  `json:"amount"`
	Note           string `json:"note"`
	Date           string `json:"date"`
	AllowOverdraft bool   `json:"allow_overdraft"`
}

type walletResponse struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	InitialAmount    int64               `json:"initial_amount"`
	Goal             int64               `json:"goal"`
	Amount           int64               `json:"amount"`
	CreatedAt        time.Time           `json:"created_at"`
	TransactionCount int                 `json:"transaction_count"`
	Progress         ledger.GoalProgress `json:"progress"`
}

func toWalletResponse(w ledger.Wallet) walletResponse {
	return walletResponse{
		ID:               w.ID,
		Name:             w.Name,
		InitialAmount:    w.InitialAmount,
		Goal:             w.Goal,
		Amount:           w.Amount,
		CreatedAt:        w.CreatedAt,
		TransactionCount: len(w.Transactions),
		Progress:         w.Progress(),
	}
}

// List returns every wallet for the account.
func (h *Handler) List(c *fiber.Ctx) error {
	wallets, err := h.service.List(c.UserContext(), c.Params("accountID"))
	if err != nil {
		return asHTTPError(err)
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toWalletResponse(w))
	}
	return c.JSON(out)
}

// Create provisions a wallet.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Create(c.UserContext(), c.Params("accountID"), CreateInput{
		Name:          req.Name,
		InitialAmount: req.InitialAmount,
		Goal:          req.Goal,
	})
	if err != nil {
		return asHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(toWalletResponse(w))
}

// Get returns a single wallet.
func (h *Handler) Get(c *fiber.Ctx) error {
	w, err := h.service.Get(c.UserContext(), c.Params("accountID"), c.Params("walletID"))
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(toWalletResponse(w))
}

// Update renames a wallet and adjusts its goal.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Update(c.UserContext(), c.Params("accountID"), c.Params("walletID"), UpdateInput{
		Name: req.Name,
		Goal: req.Goal,
	})
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(toWalletResponse(w))
}

// Delete removes a wallet and all of its transactions.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("accountID"), c.Params("walletID")); err != nil {
		return asHTTPError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ApplyTransaction records a deposit or withdrawal. An unconfirmed
// overdraft answers 409 with the detail the client needs to re-submit with
// allow_overdraft set.
func (h *Handler) ApplyTransaction(c *fiber.Ctx) error {
	var req txRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	in := ledger.TxInput{
		Type:           ledger.TxType(req.Type),
		Amount:         req.Amount,
		Note:           req.Note,
		AllowOverdraft: req.AllowOverdraft,
	}
	if req.Date != "" {
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "date must be RFC 3339")
		}
		in.Date = date
	}

	w, tx, err := h.service.Apply(c.UserContext(), c.Params("accountID"), c.Params("walletID"), in)
	var oerr *ledger.OverdraftError
	if errors.As(err, &oerr) {
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"error":     "overdraft confirmation required",
			"balance":   oerr.Balance,
			"amount":    oerr.Amount,
			"shortfall": oerr.Shortfall(),
		})
	}
	if err != nil {
		return asHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"wallet":      toWalletResponse(w),
		"transaction": tx,
	})
}

// ListTransactions returns a wallet's history. Query params: order
// (asc|desc, default desc) and type (deposit|withdrawal, default both).
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	order := ledger.OrderDesc
	if c.Query("order") == string(ledger.OrderAsc) {
		order = ledger.OrderAsc
	}

	var types []ledger.TxType
	if v := c.Query("type"); v != "" {
		t := ledger.TxType(v)
		if !t.Valid() {
			return fiber.NewError(http.StatusBadRequest, "type must be deposit or withdrawal")
		}
		types = append(types, t)
	}

	txs, err := h.service.History(c.UserContext(), c.Params("accountID"), c.Params("walletID"), order, types...)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(txs)
}

// EditTransaction rewrites a transaction's mutable fields.
func (h *Handler) EditTransaction(c *fiber.Ctx) error {
	var req txRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "date must be RFC 3339")
	}

	w, err := h.service.EditTransaction(c.UserContext(), c.Params("accountID"), c.Params("walletID"), c.Params("txID"), ledger.TxEdit{
		Type:   ledger.TxType(req.Type),
		Amount: req.Amount,
		Note:   req.Note,
		Date:   date,
	})
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(toWalletResponse(w))
}

// DeleteTransaction removes a transaction.
func (h *Handler) DeleteTransaction(c *fiber.Ctx) error {
	w, err := h.service.DeleteTransaction(c.UserContext(), c.Params("accountID"), c.Params("walletID"), c.Params("txID"))
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(toWalletResponse(w))
}

// Summary returns deposit/withdrawal totals for a wallet.
func (h *Handler) Summary(c *fiber.Ctx) error {
	s, err := h.service.Summary(c.UserContext(), c.Params("accountID"), c.Params("walletID"))
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(s)
}

// ExportCSV streams a wallet's history as a CSV download, newest first.
func (h *Handler) ExportCSV(c *fiber.Ctx) error {
	w, err := h.service.Get(c.UserContext(), c.Params("accountID"), c.Params("walletID"))
	if err != nil {
		return asHTTPError(err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, w); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename(w, time.Now())+`"`)
	return c.Send(buf.Bytes())
}

// Backup returns a JSON snapshot of the account's full wallet set.
func (h *Handler) Backup(c *fiber.Ctx) error {
	snap, err := h.service.Backup(c.UserContext(), c.Params("accountID"))
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(snap)
}

// Restore replaces the account's wallet set from a snapshot.
func (h *Handler) Restore(c *fiber.Ctx) error {
	var snap Snapshot
	if err := c.BodyParser(&snap); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Restore(c.UserContext(), c.Params("accountID"), snap); err != nil {
		return asHTTPError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// asHTTPError maps engine and persistence errors onto HTTP statuses. No
// error is swallowed: anything unrecognized surfaces as a 500.
func asHTTPError(err error) error {
	var verr *ledger.ValidationError
	var nerr *ledger.NotFoundError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(http.StatusBadRequest, verr.Error())
	case errors.As(err, &nerr):
		return fiber.NewError(http.StatusNotFound, nerr.Error())
	case errors.Is(err, ErrSaveFailed):
		return fiber.NewError(http.StatusServiceUnavailable, "save failed, latest change is not durable")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
