package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes merchant profile and back-office verification
// endpoints.
type Handler struct {
	repo Repository
	svc  *Service
}

// NewHandler constructs the identity handler.
func NewHandler(repo Repository, svc *Service) *Handler {
	return &Handler{repo: repo, svc: svc}
}

// Me returns the authenticated merchant's full profile, including the
// bank and contact details the signin payload omits.
func (h *Handler) Me(c *fiber.Ctx) error {
	merchantID, _ := c.Locals("subject").(string)
	if merchantID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing subject")
	}

	rec, err := h.repo.FindMerchantByID(c.UserContext(), merchantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "merchant not found")
		}
		return err
	}

	return c.Status(http.StatusOK).JSON(rec.Merchant)
}

type verificationUpdateRequest struct {
	Status VerificationStatus `json:"status"`
}

// UpdateVerification sets a merchant's approval state and returns the
// updated profile. Routing restricts it to administrators.
func (h *Handler) UpdateVerification(c *fiber.Ctx) error {
	merchantID := c.Params("id")
	if merchantID == "" {
		return fiber.NewError(http.StatusBadRequest, "merchant id is required")
	}

	var req verificationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if !req.Status.Valid() {
		return fiber.NewError(http.StatusBadRequest, "unknown verification status")
	}

	if err := h.svc.SetMerchantVerification(c.UserContext(), merchantID, req.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "merchant not found")
		}
		return err
	}

	rec, err := h.repo.FindMerchantByID(c.UserContext(), merchantID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(rec.Merchant)
}
