package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pocketbook/pocketbook/internal/wallet"
)

// RegisterWalletRoutes wires the wallet and transaction endpoints. Every
// route is scoped to an account: a device identity in local mode, an
// authenticated user id in remote mode.
func RegisterWalletRoutes(router fiber.Router, h *wallet.Handler) {
	account := router.Group("/accounts/:accountID")

	account.Get("/wallets", h.List)
	account.Post("/wallets", h.Create)
	account.Get("/wallets/:walletID", h.Get)
	account.Put("/wallets/:walletID", h.Update)
	account.Delete("/wallets/:walletID", h.Delete)

	account.Post("/wallets/:walletID/transactions", h.ApplyTransaction)
	account.Get("/wallets/:walletID/transactions", h.ListTransactions)
	account.Put("/wallets/:walletID/transactions/:txID", h.EditTransaction)
	account.Delete("/wallets/:walletID/transactions/:txID", h.DeleteTransaction)

	account.Get("/wallets/:walletID/summary", h.Summary)
	account.Get("/wallets/:walletID/export.csv", h.ExportCSV)

	account.Get("/backup", h.Backup)
	account.Post("/restore", h.Restore)
}
