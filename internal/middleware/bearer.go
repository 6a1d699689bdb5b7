package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/auth"
	"github.com/karobar-pay/karobar_pay/internal/identity"
)

// Locals keys populated by BearerAuth.
const (
	LocalSubject = "subject"
	LocalKind    = "kind"
)

// BearerAuth validates the Authorization bearer token and stores the
// verified subject and principal kind on the request context.
func BearerAuth(tokens *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(LocalSubject, claims.Subject)
		c.Locals(LocalKind, claims.Kind)
		return c.Next()
	}
}

// RequireMerchant rejects requests whose token does not belong to a
// merchant. Use after BearerAuth.
func RequireMerchant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, _ := c.Locals(LocalKind).(identity.Kind)
		if kind != identity.KindMerchant {
			return fiber.NewError(http.StatusForbidden, "merchant access required")
		}
		return c.Next()
	}
}

// RequireAdmin rejects requests whose token does not belong to an
// administrator. Use after BearerAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, _ := c.Locals(LocalKind).(identity.Kind)
		if kind != identity.KindAdmin {
			return fiber.NewError(http.StatusForbidden, "administrator access required")
		}
		return c.Next()
	}
}
