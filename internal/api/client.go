package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/payments"
	"github.com/karobar-pay/karobar_pay/internal/payout"
	"github.com/karobar-pay/karobar_pay/internal/wallet"
)

// Error is an HTTP-level failure from the platform. Transport failures
// are returned as plain wrapped errors instead, which is how callers
// tell the network class apart.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("platform api: status %d: %s", e.Status, e.Message)
}

// UserMessage returns the server-supplied message suitable for direct
// display.
func (e *Error) UserMessage() string {
	return e.Message
}

// Client is a typed HTTP client for the platform API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a platform API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SignInResponse is the platform's answer to a signin request. The
// identity payload stays raw so the session layer can decide the
// variant exactly once.
type SignInResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	Identity     json.RawMessage `json:"identity"`
}

// SignIn submits credentials against the admin or merchant signin
// endpoint depending on the kind hint.
func (c *Client) SignIn(ctx context.Context, kind identity.Kind, email, password string) (SignInResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp SignInResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/auth/%s/signin", kind), "", nil, body, &resp)
	return resp, err
}

// MerchantProfile fetches the authenticated merchant's full profile.
func (c *Client) MerchantProfile(ctx context.Context, token string) (identity.Merchant, error) {
	var m identity.Merchant
	err := c.do(ctx, http.MethodGet, "/api/v1/merchants/me", token, nil, nil, &m)
	return m, err
}

// WalletDetails fetches the authenticated merchant's wallet snapshot.
func (c *Client) WalletDetails(ctx context.Context, token string) (wallet.Details, error) {
	var d wallet.Details
	err := c.do(ctx, http.MethodGet, "/api/v1/merchants/me/wallet", token, nil, nil, &d)
	return d, err
}

// CreatePayoutRequest submits a payout instruction. A fresh
// idempotency key guards against duplicate submissions on retried
// connections.
func (c *Client) CreatePayoutRequest(ctx context.Context, token string, req payout.SubmitRequest) (payout.Payout, error) {
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	var p payout.Payout
	err := c.do(ctx, http.MethodPost, "/api/v1/merchants/payout-requests", token, headers, req, &p)
	return p, err
}

// CancelPayoutRequest cancels a pending payout with a re-entered PIN.
func (c *Client) CancelPayoutRequest(ctx context.Context, token, payoutID, transactionPIN string) (payout.Payout, error) {
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	body := map[string]string{"transaction_pin": transactionPIN}
	var p payout.Payout
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/merchants/me/payout-requests/%s/cancel", payoutID), token, headers, body, &p)
	return p, err
}

// ListPayoutRequests fetches one page of payout history.
func (c *Client) ListPayoutRequests(ctx context.Context, token string, page, limit int, status payout.Status) (payout.Page, error) {
	var result payout.Page
	err := c.do(ctx, http.MethodGet, "/api/v1/merchants/payout-requests"+listQuery(page, limit, string(status)), token, nil, nil, &result)
	return result, err
}

// ListPayments fetches one page of incoming payments.
func (c *Client) ListPayments(ctx context.Context, token string, page, limit int, status payout.Status) (payments.Page, error) {
	var result payments.Page
	err := c.do(ctx, http.MethodGet, "/api/v1/merchants/payments"+listQuery(page, limit, string(status)), token, nil, nil, &result)
	return result, err
}

// StatusInquiry re-checks a single transaction against the payment
// provider.
func (c *Client) StatusInquiry(ctx context.Context, token, transactionRef, provider string) (payments.InquiryResult, error) {
	body := map[string]string{"transaction_ref": transactionRef, "provider": provider}
	var result payments.InquiryResult
	err := c.do(ctx, http.MethodPost, "/api/v1/payments/status-inquiry", token, nil, body, &result)
	return result, err
}

func listQuery(page, limit int, status string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if status != "" {
		q.Set("status", status)
	}
	return "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path, token string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call platform: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &msg); err == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
