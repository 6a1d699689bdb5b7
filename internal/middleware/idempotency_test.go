package middleware

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/karobar-pay/karobar_pay/internal/logging"
)

// payoutApp mounts the idempotency layer behind a stand-in for bearer
// auth that reads the subject from a test header, over a payout-style
// creation route that counts handler executions.
func payoutApp(t *testing.T) (*fiber.App, *int, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	created := 0
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if subject := c.Get("X-Test-Subject"); subject != "" {
			c.Locals(LocalSubject, subject)
		}
		return c.Next()
	})
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/payout-requests", func(c *fiber.Ctx) error {
		created++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": fmt.Sprintf("po-%d", created)})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &created, cleanup
}

func createPayout(t *testing.T, app *fiber.App, subject, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/payout-requests", strings.NewReader(`{"amount":5000}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if subject != "" {
		req.Header.Set("X-Test-Subject", subject)
	}
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, created, cleanup := payoutApp(t)
	defer cleanup()

	status, _ := createPayout(t, app, "merchant-a", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d without key, got %d", fiber.StatusBadRequest, status)
	}
	if *created != 0 {
		t.Fatalf("handler ran %d times without a key", *created)
	}
}

func TestIdempotencyReplaysWithoutReexecuting(t *testing.T) {
	app, created, cleanup := payoutApp(t)
	defer cleanup()

	status, first := createPayout(t, app, "merchant-a", "retry-1")
	if status != fiber.StatusCreated {
		t.Fatalf("first submit status %d", status)
	}

	status, second := createPayout(t, app, "merchant-a", "retry-1")
	if status != fiber.StatusCreated {
		t.Fatalf("replay status %d", status)
	}
	if second != first {
		t.Fatalf("replay body %s differs from original %s", second, first)
	}
	if *created != 1 {
		t.Fatalf("handler executed %d times, want 1", *created)
	}
}

func TestIdempotencyKeysScopedPerSubject(t *testing.T) {
	app, created, cleanup := payoutApp(t)
	defer cleanup()

	status, bodyA := createPayout(t, app, "merchant-a", "shared-key")
	if status != fiber.StatusCreated {
		t.Fatalf("merchant-a submit status %d", status)
	}

	// Same key, different principal: must execute, not replay
	// merchant-a's payout.
	status, bodyB := createPayout(t, app, "merchant-b", "shared-key")
	if status != fiber.StatusCreated {
		t.Fatalf("merchant-b submit status %d", status)
	}
	if bodyA == bodyB {
		t.Fatalf("merchant-b replayed merchant-a's response: %s", bodyB)
	}
	if *created != 2 {
		t.Fatalf("handler executed %d times, want 2", *created)
	}

	// Each subject still replays its own response.
	if _, replayed := createPayout(t, app, "merchant-b", "shared-key"); replayed != bodyB {
		t.Fatalf("merchant-b replay %s differs from original %s", replayed, bodyB)
	}
	if *created != 2 {
		t.Fatalf("handler executed %d times after replay, want 2", *created)
	}
}

func TestIdempotencySkipsReads(t *testing.T) {
	app, _, cleanup := payoutApp(t)
	defer cleanup()

	app.Get("/payout-requests", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/payout-requests", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected GET to bypass idempotency, got %d", resp.StatusCode)
	}
}
