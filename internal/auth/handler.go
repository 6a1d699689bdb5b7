package auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/identity"
)

// Handler exposes the signin endpoints.
type Handler struct {
	ids *identity.Service
	svc *Service
}

// NewHandler constructs the auth handler.
func NewHandler(ids *identity.Service, svc *Service) *Handler {
	return &Handler{ids: ids, svc: svc}
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	Identity     json.RawMessage `json:"identity"`
}

// MerchantSignin validates merchant credentials and returns a token
// pair with a lean identity payload. Bank and contact details are left
// to the profile endpoint.
func (h *Handler) MerchantSignin(c *fiber.Ctx) error {
	var req signinRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password are required")
	}

	rec, err := h.ids.AuthenticateMerchant(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}

	pair, err := h.svc.Issue(identity.KindMerchant, rec.MerchantID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "token issuance failed")
	}

	lean := rec.Merchant
	lean.Phone = ""
	lean.BankAccount = identity.BankAccount{}
	payload, err := json.Marshal(lean)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "encode identity failed")
	}

	return c.Status(http.StatusOK).JSON(signinResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		Identity:     payload,
	})
}

// AdminSignin validates administrator credentials and returns a token
// pair with the admin identity payload.
func (h *Handler) AdminSignin(c *fiber.Ctx) error {
	var req signinRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password are required")
	}

	rec, err := h.ids.AuthenticateAdmin(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}

	pair, err := h.svc.Issue(identity.KindAdmin, strconv.FormatInt(rec.ID, 10))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "token issuance failed")
	}

	payload, err := json.Marshal(rec.Admin)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "encode identity failed")
	}

	return c.Status(http.StatusOK).JSON(signinResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		Identity:     payload,
	})
}
