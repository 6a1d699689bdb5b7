package payout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/karobar-pay/karobar_pay/internal/cache"
)

type stubWorkflowClient struct {
	mu         sync.Mutex
	createResp Payout
	createErr  error
	createFn   func() (Payout, error)
	cancelResp Payout
	cancelErr  error
	listResp   Page
	listErr    error

	createCalls int
	cancelCalls int
	lastPIN     string
}

func (s *stubWorkflowClient) CreatePayoutRequest(_ context.Context, _ string, _ SubmitRequest) (Payout, error) {
	s.mu.Lock()
	s.createCalls++
	s.mu.Unlock()
	if s.createFn != nil {
		return s.createFn()
	}
	return s.createResp, s.createErr
}

func (s *stubWorkflowClient) CancelPayoutRequest(_ context.Context, _, _, pin string) (Payout, error) {
	s.mu.Lock()
	s.cancelCalls++
	s.lastPIN = pin
	s.mu.Unlock()
	return s.cancelResp, s.cancelErr
}

func (s *stubWorkflowClient) ListPayoutRequests(_ context.Context, _ string, page, limit int, _ Status) (Page, error) {
	return s.listResp, s.listErr
}

type remoteErr struct{ msg string }

func (e remoteErr) Error() string       { return e.msg }
func (e remoteErr) UserMessage() string { return e.msg }

func validRequest() SubmitRequest {
	return SubmitRequest{Amount: 5_000, BankAccountID: "acct-1", TransactionPIN: "1234"}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		bounds Bounds
		amount int64
		want   string
	}{
		{"zero amount", Bounds{Min: 500, Max: 1_000_000}, 0, "Amount is required."},
		{"below min", Bounds{Min: 500, Max: 1_000_000}, 499, "Minimum payout amount is 500."},
		{"at min", Bounds{Min: 500, Max: 1_000_000}, 500, ""},
		{"at max", Bounds{Min: 500, Max: 1_000_000}, 1_000_000, ""},
		{"above max", Bounds{Min: 500, Max: 1_000_000}, 1_000_001, "Maximum payout amount is 1000000."},
		{"tighter min", Bounds{Min: 1_000, Max: 100_000}, 999, "Minimum payout amount is 1000."},
		{"tighter max", Bounds{Min: 1_000, Max: 100_000}, 100_001, "Maximum payout amount is 100000."},
		{"tighter ok", Bounds{Min: 1_000, Max: 100_000}, 50_000, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			req.Amount = tc.amount
			errs := Validate(req, tc.bounds)
			if tc.want == "" {
				if msg, ok := errs["amount"]; ok {
					t.Fatalf("unexpected amount error %q", msg)
				}
				return
			}
			if errs["amount"] != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, errs["amount"])
			}
		})
	}
}

func TestValidateBankAccountAndPIN(t *testing.T) {
	bounds := Bounds{Min: 500, Max: 1_000_000}

	req := validRequest()
	req.BankAccountID = ""
	if errs := Validate(req, bounds); errs["bank_account_id"] != "Select a bank account." {
		t.Fatalf("expected bank account error, got %v", errs)
	}

	for _, pin := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		req := validRequest()
		req.TransactionPIN = pin
		if errs := Validate(req, bounds); errs["transaction_pin"] != "Transaction PIN must be exactly 4 digits." {
			t.Fatalf("pin %q: expected PIN error, got %v", pin, errs)
		}
	}

	if errs := Validate(validRequest(), bounds); len(errs) != 0 {
		t.Fatalf("expected valid request, got %v", errs)
	}
}

func TestSubmitValidationNeverReachesNetwork(t *testing.T) {
	client := &stubWorkflowClient{}
	w := NewWorkflow(client, cache.NewMemoryCache(), Bounds{Min: 500, Max: 1_000_000}, Callbacks{})

	req := validRequest()
	req.Amount = 100
	result := w.Submit(context.Background(), "tok", req)

	if result.Success {
		t.Fatal("expected validation failure")
	}
	if len(result.FieldErrors) == 0 {
		t.Fatal("expected field errors")
	}
	if client.createCalls != 0 {
		t.Fatal("invalid request must not hit the network")
	}
	if w.InFlight() {
		t.Fatal("in-flight flag must be cleared after validation failure")
	}
}

func TestSubmitSuccessInvalidatesSnapshots(t *testing.T) {
	snapshots := cache.NewMemoryCache()
	ctx := context.Background()
	_ = snapshots.Set(ctx, cache.KeyMerchantProfile, []byte("profile"), time.Minute)
	_ = snapshots.Set(ctx, cache.KeyWalletDetails, []byte("wallet"), time.Minute)

	var notified Payout
	client := &stubWorkflowClient{createResp: Payout{ID: "p-1", Status: StatusPending, Amount: 5_000}}
	w := NewWorkflow(client, snapshots, Bounds{Min: 500, Max: 1_000_000}, Callbacks{
		OnSuccess: func(p Payout) { notified = p },
	})

	result := w.Submit(ctx, "tok", validRequest())
	if !result.Success || result.Payout.ID != "p-1" {
		t.Fatalf("expected success, got %+v", result)
	}
	if notified.ID != "p-1" {
		t.Fatal("expected success callback")
	}
	if w.InFlight() {
		t.Fatal("in-flight flag must be cleared after success")
	}

	if _, hit, _ := snapshots.Get(ctx, cache.KeyMerchantProfile); hit {
		t.Fatal("profile snapshot must be invalidated")
	}
	if _, hit, _ := snapshots.Get(ctx, cache.KeyWalletDetails); hit {
		t.Fatal("wallet snapshot must be invalidated")
	}
}

func TestSubmitRemoteFailurePrefersServerMessage(t *testing.T) {
	var errMsg string
	client := &stubWorkflowClient{createErr: remoteErr{msg: "Insufficient available balance for this payout."}}
	w := NewWorkflow(client, cache.NewMemoryCache(), Bounds{Min: 500, Max: 1_000_000}, Callbacks{
		OnError: func(msg string) { errMsg = msg },
	})

	result := w.Submit(context.Background(), "tok", validRequest())
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "Insufficient available balance for this payout." {
		t.Fatalf("expected server message, got %q", result.Message)
	}
	if errMsg != result.Message {
		t.Fatalf("expected error callback with same message, got %q", errMsg)
	}
	if w.InFlight() {
		t.Fatal("in-flight flag must be cleared after remote failure")
	}
}

func TestSubmitRemoteFailureWithoutMessageUsesGeneric(t *testing.T) {
	client := &stubWorkflowClient{createErr: errors.New("connection reset")}
	w := NewWorkflow(client, cache.NewMemoryCache(), Bounds{Min: 500, Max: 1_000_000}, Callbacks{})

	result := w.Submit(context.Background(), "tok", validRequest())
	if result.Message != genericSubmitError {
		t.Fatalf("expected generic message, got %q", result.Message)
	}
}

func TestSubmitRejectsConcurrentAttempt(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	client := &stubWorkflowClient{createFn: func() (Payout, error) {
		close(started)
		<-release
		return Payout{ID: "p-1", Status: StatusPending}, nil
	}}
	w := NewWorkflow(client, cache.NewMemoryCache(), Bounds{Min: 500, Max: 1_000_000}, Callbacks{})

	done := make(chan Result, 1)
	go func() { done <- w.Submit(context.Background(), "tok", validRequest()) }()
	<-started

	second := w.Submit(context.Background(), "tok", validRequest())
	if second.Success || second.Message == "" {
		t.Fatalf("expected duplicate submit rejection, got %+v", second)
	}

	close(release)
	first := <-done
	if !first.Success {
		t.Fatalf("expected first submit to succeed, got %+v", first)
	}
	if client.createCalls != 1 {
		t.Fatalf("expected one network call, got %d", client.createCalls)
	}
}

func TestCancelRequiresFreshPIN(t *testing.T) {
	client := &stubWorkflowClient{cancelResp: Payout{ID: "p-1", Status: StatusCancelled}}
	w := NewWorkflow(client, cache.NewMemoryCache(), Bounds{Min: 500, Max: 1_000_000}, Callbacks{})

	// The PIN from the submit step is gone; an empty PIN fails locally.
	result := w.Cancel(context.Background(), "tok", "p-1", "")
	if result.Success {
		t.Fatal("expected local PIN rejection")
	}
	if result.FieldErrors["transaction_pin"] == "" {
		t.Fatalf("expected PIN field error, got %+v", result)
	}
	if client.cancelCalls != 0 {
		t.Fatal("missing PIN must not hit the network")
	}

	result = w.Cancel(context.Background(), "tok", "p-1", "4321")
	if !result.Success {
		t.Fatalf("expected cancellation, got %+v", result)
	}
	if client.lastPIN != "4321" {
		t.Fatalf("expected re-entered PIN forwarded, got %q", client.lastPIN)
	}
}

func TestCancelInvalidatesPayoutDetail(t *testing.T) {
	snapshots := cache.NewMemoryCache()
	ctx := context.Background()
	_ = snapshots.Set(ctx, cache.PayoutDetailKey("p-1"), []byte("detail"), time.Minute)

	client := &stubWorkflowClient{cancelResp: Payout{ID: "p-1", Status: StatusCancelled}}
	w := NewWorkflow(client, snapshots, Bounds{Min: 500, Max: 1_000_000}, Callbacks{})

	if result := w.Cancel(ctx, "tok", "p-1", "1234"); !result.Success {
		t.Fatalf("cancel failed: %+v", result)
	}
	if _, hit, _ := snapshots.Get(ctx, cache.PayoutDetailKey("p-1")); hit {
		t.Fatal("payout detail snapshot must be invalidated")
	}
}

func TestHistoryFetchesFresh(t *testing.T) {
	client := &stubWorkflowClient{listResp: Page{Page: 2, Limit: 10, Total: 12, Items: []Payout{{ID: "p-1"}}}}
	w := NewWorkflow(client, cache.NewMemoryCache(), Bounds{Min: 500, Max: 1_000_000}, Callbacks{})

	page, err := w.History(context.Background(), "tok", 2, 10, StatusPending)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.Page != 2 || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}
