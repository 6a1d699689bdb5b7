package auth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/karobar-pay/karobar_pay/internal/auth"
	"github.com/karobar-pay/karobar_pay/internal/config"
	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/middleware"
)

type backOffice struct {
	app *fiber.App
	ids *identity.Service
}

func newBackOffice(t *testing.T) *backOffice {
	t.Helper()

	cfg := config.Platform{
		AppName:     "KarobarPay",
		AppEnv:      "development",
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
	}

	repo := identity.NewMemoryRepository()
	ids := identity.NewService(repo)
	tokens := auth.NewService(cfg)
	authHandler := auth.NewHandler(ids, tokens)
	identityHandler := identity.NewHandler(repo, ids)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/auth/admin/signin", authHandler.AdminSignin)
	api.Post("/auth/merchant/signin", authHandler.MerchantSignin)

	protected := api.Group("", middleware.BearerAuth(tokens))
	merchants := protected.Group("/merchants", middleware.RequireMerchant())
	merchants.Get("/me", identityHandler.Me)
	admins := protected.Group("/admins", middleware.RequireAdmin())
	admins.Patch("/merchants/:id/verification", identityHandler.UpdateVerification)

	return &backOffice{app: app, ids: ids}
}

func (b *backOffice) seedAdmin(t *testing.T) identity.AdminRecord {
	t.Helper()
	rec, err := b.ids.EnsureAdmin(context.Background(), identity.EnsureAdminInput{
		Email:       "ops@karobar.pk",
		Password:    "sturdy-pass",
		DisplayName: "Ops",
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return rec
}

func (b *backOffice) seedMerchant(t *testing.T) identity.MerchantRecord {
	t.Helper()
	rec, err := b.ids.RegisterMerchant(context.Background(), identity.RegisterMerchantInput{
		Email:          "shop@karobar.pk",
		Password:       "merchant-pass",
		TransactionPIN: "1234",
		FirstName:      "Sana",
		LastName:       "Iqbal",
		BusinessName:   "Iqbal Traders",
	})
	if err != nil {
		t.Fatalf("seed merchant: %v", err)
	}
	return rec
}

func (b *backOffice) request(t *testing.T, method, path, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := b.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, payload
}

func (b *backOffice) signin(t *testing.T, path, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	status, payload := b.request(t, fiber.MethodPost, path, "", body)
	if status != fiber.StatusOK {
		t.Fatalf("signin %s returned %d: %s", path, status, payload)
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("decode signin response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("signin response missing access token")
	}
	return resp.AccessToken
}

func TestAdminSigninSucceedsForProvisionedAdmin(t *testing.T) {
	b := newBackOffice(t)
	b.seedAdmin(t)

	b.signin(t, "/api/v1/auth/admin/signin", "ops@karobar.pk", "sturdy-pass")
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	b := newBackOffice(t)
	first := b.seedAdmin(t)
	second := b.seedAdmin(t)

	if first.ID != second.ID {
		t.Fatalf("second EnsureAdmin created a new record: %d vs %d", first.ID, second.ID)
	}
}

func TestAdminApprovalFlipsMerchantVerification(t *testing.T) {
	b := newBackOffice(t)
	b.seedAdmin(t)
	merchant := b.seedMerchant(t)

	adminToken := b.signin(t, "/api/v1/auth/admin/signin", "ops@karobar.pk", "sturdy-pass")
	merchantToken := b.signin(t, "/api/v1/auth/merchant/signin", "shop@karobar.pk", "merchant-pass")

	mePath := "/api/v1/merchants/me"
	status, payload := b.request(t, fiber.MethodGet, mePath, merchantToken, "")
	if status != fiber.StatusOK {
		t.Fatalf("merchants/me returned %d: %s", status, payload)
	}
	var profile identity.Merchant
	if err := json.Unmarshal(payload, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.VerificationStatus != identity.VerificationPending {
		t.Fatalf("fresh merchant is %q, want pending", profile.VerificationStatus)
	}

	approvePath := "/api/v1/admins/merchants/" + merchant.MerchantID + "/verification"
	status, payload = b.request(t, fiber.MethodPatch, approvePath, adminToken, `{"status":"verified"}`)
	if status != fiber.StatusOK {
		t.Fatalf("approval returned %d: %s", status, payload)
	}

	status, payload = b.request(t, fiber.MethodGet, mePath, merchantToken, "")
	if status != fiber.StatusOK {
		t.Fatalf("merchants/me after approval returned %d: %s", status, payload)
	}
	if err := json.Unmarshal(payload, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.VerificationStatus != identity.VerificationVerified {
		t.Fatalf("merchant is %q after approval, want verified", profile.VerificationStatus)
	}
}

func TestApprovalRejectsNonAdminsAndBadInput(t *testing.T) {
	b := newBackOffice(t)
	b.seedAdmin(t)
	merchant := b.seedMerchant(t)

	adminToken := b.signin(t, "/api/v1/auth/admin/signin", "ops@karobar.pk", "sturdy-pass")
	merchantToken := b.signin(t, "/api/v1/auth/merchant/signin", "shop@karobar.pk", "merchant-pass")

	approvePath := "/api/v1/admins/merchants/" + merchant.MerchantID + "/verification"

	if status, _ := b.request(t, fiber.MethodPatch, approvePath, merchantToken, `{"status":"verified"}`); status != fiber.StatusForbidden {
		t.Fatalf("merchant token on admin route returned %d, want 403", status)
	}
	if status, _ := b.request(t, fiber.MethodGet, "/api/v1/merchants/me", adminToken, ""); status != fiber.StatusForbidden {
		t.Fatalf("admin token on merchant route returned %d, want 403", status)
	}
	if status, _ := b.request(t, fiber.MethodPatch, approvePath, adminToken, `{"status":"approved"}`); status != fiber.StatusBadRequest {
		t.Fatalf("unknown status returned %d, want 400", status)
	}
	unknownPath := "/api/v1/admins/merchants/no-such-merchant/verification"
	if status, _ := b.request(t, fiber.MethodPatch, unknownPath, adminToken, `{"status":"verified"}`); status != fiber.StatusNotFound {
		t.Fatalf("unknown merchant returned %d, want 404", status)
	}
}
