package payout

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/karobar-pay/karobar_pay/internal/cache"
)

// SubmitRequest is the console-side payout instruction validated
// before it ever reaches the platform.
type SubmitRequest struct {
	Amount         int64  `json:"amount"`
	BankAccountID  string `json:"bank_account_id"`
	TransactionPIN string `json:"transaction_pin"`
	Description    string `json:"description,omitempty"`
}

// Bounds parameterizes the amount validation. Different screens ship
// different limits, so the bounds belong to the workflow instance, not
// a global constant.
type Bounds struct {
	Min int64
	Max int64
}

var pinPattern = regexp.MustCompile(`^\d{4}$`)

const (
	fieldAmount      = "amount"
	fieldBankAccount = "bank_account_id"
	fieldPIN         = "transaction_pin"

	genericSubmitError = "Unable to submit the payout request. Please try again."
	genericCancelError = "Unable to cancel the payout request. Please try again."
)

// Validate checks a payout instruction against the given bounds and
// returns field-keyed errors. An empty map means the request is valid.
// Validation errors never reach the network.
func Validate(req SubmitRequest, bounds Bounds) map[string]string {
	errs := make(map[string]string)

	switch {
	case req.Amount <= 0:
		errs[fieldAmount] = "Amount is required."
	case req.Amount < bounds.Min:
		errs[fieldAmount] = fmt.Sprintf("Minimum payout amount is %d.", bounds.Min)
	case req.Amount > bounds.Max:
		errs[fieldAmount] = fmt.Sprintf("Maximum payout amount is %d.", bounds.Max)
	}

	if req.BankAccountID == "" {
		errs[fieldBankAccount] = "Select a bank account."
	}

	if !pinPattern.MatchString(req.TransactionPIN) {
		errs[fieldPIN] = "Transaction PIN must be exactly 4 digits."
	}

	return errs
}

// Client is the slice of the platform API the workflow consumes.
type Client interface {
	CreatePayoutRequest(ctx context.Context, token string, req SubmitRequest) (Payout, error)
	CancelPayoutRequest(ctx context.Context, token, payoutID, transactionPIN string) (Payout, error)
	ListPayoutRequests(ctx context.Context, token string, page, limit int, status Status) (Page, error)
}

// Result is the outcome of a submit or cancel attempt. Exactly one of
// the failure fields is populated on failure: FieldErrors for local
// validation, Message for remote errors.
type Result struct {
	Success     bool
	Payout      Payout
	FieldErrors map[string]string
	Message     string
}

// Callbacks are invoked on the corresponding Submit/Cancel outcomes.
// Either may be nil.
type Callbacks struct {
	OnSuccess func(Payout)
	OnError   func(message string)
}

// Workflow drives the payout request lifecycle from the console:
// local validation, submission, cancellation, and the cache
// invalidation that forces the surrounding screens to refetch.
type Workflow struct {
	client    Client
	snapshots cache.Cache
	bounds    Bounds
	callbacks Callbacks

	mu       sync.Mutex
	inFlight bool
}

// NewWorkflow constructs a payout workflow with the given amount
// bounds.
func NewWorkflow(client Client, snapshots cache.Cache, bounds Bounds, callbacks Callbacks) *Workflow {
	return &Workflow{client: client, snapshots: snapshots, bounds: bounds, callbacks: callbacks}
}

// InFlight reports whether a submission is currently outstanding.
func (w *Workflow) InFlight() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

// Submit validates and submits a payout request. The in-flight flag is
// cleared on every exit path; leaving it set would wedge the submit
// control forever.
func (w *Workflow) Submit(ctx context.Context, token string, req SubmitRequest) Result {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return Result{Message: "A payout request is already being submitted."}
	}
	w.inFlight = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	if errs := Validate(req, w.bounds); len(errs) > 0 {
		return Result{FieldErrors: errs}
	}

	created, err := w.client.CreatePayoutRequest(ctx, token, req)
	if err != nil {
		msg := remoteMessage(err, genericSubmitError)
		if w.callbacks.OnError != nil {
			w.callbacks.OnError(msg)
		}
		return Result{Message: msg}
	}

	// Balance moved; the profile and wallet snapshots are stale now.
	_ = w.snapshots.Invalidate(ctx, cache.KeyMerchantProfile, cache.KeyWalletDetails)

	if w.callbacks.OnSuccess != nil {
		w.callbacks.OnSuccess(created)
	}
	return Result{Success: true, Payout: created}
}

// Cancel cancels a pending payout. The PIN is re-entered for
// cancellation; it is never carried over from the creation step, so an
// absent PIN is rejected locally even right after a successful submit.
func (w *Workflow) Cancel(ctx context.Context, token, payoutID, transactionPIN string) Result {
	if !pinPattern.MatchString(transactionPIN) {
		return Result{FieldErrors: map[string]string{fieldPIN: "Transaction PIN must be exactly 4 digits."}}
	}

	cancelled, err := w.client.CancelPayoutRequest(ctx, token, payoutID, transactionPIN)
	if err != nil {
		msg := remoteMessage(err, genericCancelError)
		if w.callbacks.OnError != nil {
			w.callbacks.OnError(msg)
		}
		return Result{Message: msg}
	}

	_ = w.snapshots.Invalidate(ctx, cache.KeyMerchantProfile, cache.KeyWalletDetails, cache.PayoutDetailKey(payoutID))

	if w.callbacks.OnSuccess != nil {
		w.callbacks.OnSuccess(cancelled)
	}
	return Result{Success: true, Payout: cancelled}
}

// History fetches one page of payout history. Every call is a fresh
// fetch; changing the page, limit, or status filter must never serve
// results for the previous parameters.
func (w *Workflow) History(ctx context.Context, token string, page, limit int, status Status) (Page, error) {
	return w.client.ListPayoutRequests(ctx, token, page, limit, status)
}

// remoteMessage prefers a server-supplied user message and falls back
// to the given generic one.
func remoteMessage(err error, fallback string) string {
	type userMessenger interface {
		UserMessage() string
	}
	if um, ok := err.(userMessenger); ok && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}
