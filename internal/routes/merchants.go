package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/middleware"
	"github.com/karobar-pay/karobar_pay/internal/payments"
	"github.com/karobar-pay/karobar_pay/internal/payout"
	"github.com/karobar-pay/karobar_pay/internal/wallet"
)

// RegisterMerchantRoutes wires the merchant-scoped endpoints.
func RegisterMerchantRoutes(r fiber.Router, ids *identity.Handler, wallets *wallet.Handler, payouts *payout.Handler, pays *payments.Handler) {
	group := r.Group("/merchants", middleware.RequireMerchant())

	group.Get("/me", ids.Me)
	group.Get("/me/wallet", wallets.Me)

	group.Post("/payout-requests", payouts.Create)
	group.Get("/payout-requests", payouts.List)
	group.Post("/me/payout-requests/:id/cancel", payouts.Cancel)

	group.Get("/payments", pays.List)
}
