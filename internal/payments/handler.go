package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/payout"
)

// Handler exposes payment list and status inquiry endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs the payments handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns one page of the merchant's incoming payments.
func (h *Handler) List(c *fiber.Ctx) error {
	merchantID, _ := c.Locals("subject").(string)
	if merchantID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing subject")
	}

	status := payout.Status(c.Query("status"))
	if status != "" && !status.Known() {
		return fiber.NewError(http.StatusBadRequest, "unknown status filter")
	}

	page, err := h.svc.List(c.UserContext(), merchantID, c.QueryInt("page", 1), c.QueryInt("limit", 20), status)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(page)
}

type inquiryRequest struct {
	TransactionRef string `json:"transaction_ref"`
	Provider       string `json:"provider"`
}

// StatusInquiry re-checks one transaction against the provider.
func (h *Handler) StatusInquiry(c *fiber.Ctx) error {
	var req inquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.TransactionRef == "" {
		return fiber.NewError(http.StatusBadRequest, "transaction_ref is required")
	}

	result, err := h.svc.StatusInquiry(c.UserContext(), req.TransactionRef, req.Provider)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "Transaction not found.")
		}
		return err
	}

	return c.Status(http.StatusOK).JSON(result)
}
