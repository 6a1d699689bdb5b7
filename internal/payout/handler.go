package payout

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/wallet"
)

// Handler exposes the payout request endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs the payout handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Amount         int64  `json:"amount"`
	BankAccountID  string `json:"bank_account_id"`
	TransactionPIN string `json:"transaction_pin"`
	Description    string `json:"description"`
}

type cancelRequest struct {
	TransactionPIN string `json:"transaction_pin"`
}

// Create records a new payout request for the authenticated merchant.
func (h *Handler) Create(c *fiber.Ctx) error {
	merchantID, _ := c.Locals("subject").(string)
	if merchantID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing subject")
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.Create(c.UserContext(), CreateInput{
		MerchantID:     merchantID,
		Amount:         req.Amount,
		BankAccountID:  req.BankAccountID,
		Description:    req.Description,
		TransactionPIN: req.TransactionPIN,
	})
	if err != nil {
		return mapPayoutError(err)
	}

	return c.Status(http.StatusCreated).JSON(p)
}

// Cancel cancels a pending payout owned by the authenticated merchant.
// The transaction PIN must be re-supplied.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	merchantID, _ := c.Locals("subject").(string)
	if merchantID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing subject")
	}

	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.Cancel(c.UserContext(), merchantID, c.Params("id"), req.TransactionPIN)
	if err != nil {
		return mapPayoutError(err)
	}

	return c.Status(http.StatusOK).JSON(p)
}

// List returns one page of the merchant's payout history.
func (h *Handler) List(c *fiber.Ctx) error {
	merchantID, _ := c.Locals("subject").(string)
	if merchantID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing subject")
	}

	status := Status(c.Query("status"))
	if status != "" && !status.Known() {
		return fiber.NewError(http.StatusBadRequest, "unknown status filter")
	}

	page, err := h.svc.List(c.UserContext(), merchantID, c.QueryInt("page", 1), c.QueryInt("limit", 20), status)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(page)
}

func mapPayoutError(err error) error {
	switch {
	case errors.Is(err, identity.ErrInvalidPIN):
		return fiber.NewError(http.StatusUnauthorized, "Invalid transaction PIN.")
	case errors.Is(err, wallet.ErrInsufficientBalance):
		return fiber.NewError(http.StatusUnprocessableEntity, "Insufficient available balance for this payout.")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Payout request not found.")
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, "Only pending payout requests can be cancelled.")
	default:
		return err
	}
}
