package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/middleware"
)

// RegisterAdminRoutes wires the back-office endpoints. Merchant
// approval lives here: a merchant stays pending until an administrator
// flips the verification status.
func RegisterAdminRoutes(r fiber.Router, ids *identity.Handler) {
	group := r.Group("/admins", middleware.RequireAdmin())

	group.Patch("/merchants/:id/verification", ids.UpdateVerification)
}
