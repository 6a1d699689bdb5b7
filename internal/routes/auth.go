package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/auth"
)

// RegisterAuthRoutes wires the admin and merchant signin endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/admin/signin", rateLimiter, h.AdminSignin)
		group.Post("/merchant/signin", rateLimiter, h.MerchantSignin)
	} else {
		group.Post("/admin/signin", h.AdminSignin)
		group.Post("/merchant/signin", h.MerchantSignin)
	}
}
