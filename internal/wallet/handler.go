package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the merchant wallet endpoint.
type Handler struct {
	repo Repository
}

// NewHandler constructs the wallet handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Me returns the authenticated merchant's wallet snapshot.
func (h *Handler) Me(c *fiber.Ctx) error {
	merchantID, _ := c.Locals("subject").(string)
	if merchantID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing subject")
	}

	details, err := h.repo.Get(c.UserContext(), merchantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		return err
	}

	return c.Status(http.StatusOK).JSON(details)
}
