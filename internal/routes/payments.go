package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/payments"
)

// RegisterPaymentRoutes wires the payment status inquiry endpoint.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	group := r.Group("/payments")
	group.Post("/status-inquiry", h.StatusInquiry)
}
