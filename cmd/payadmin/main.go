// Command payadmin is the operator console for the KarobarPay merchant
// platform. It hosts the session, verification guard, and payout
// workflow against the platform API.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/karobar-pay/karobar_pay/internal/api"
	"github.com/karobar-pay/karobar_pay/internal/cache"
	"github.com/karobar-pay/karobar_pay/internal/config"
	"github.com/karobar-pay/karobar_pay/internal/guard"
	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/infra"
	"github.com/karobar-pay/karobar_pay/internal/inquiry"
	"github.com/karobar-pay/karobar_pay/internal/logging"
	"github.com/karobar-pay/karobar_pay/internal/nav"
	"github.com/karobar-pay/karobar_pay/internal/notification"
	"github.com/karobar-pay/karobar_pay/internal/payout"
	"github.com/karobar-pay/karobar_pay/internal/pinpad"
	"github.com/karobar-pay/karobar_pay/internal/session"
)

const usage = `Usage: payadmin <command> [flags]

Commands:
  login     sign in as admin or merchant
  logout    clear the current session
  whoami    show the current identity
  wallet    show the merchant wallet
  payout    submit a payout request
  cancel    cancel a pending payout request
  history   list payout requests
  payments  list incoming payments
  inquire   re-check a transaction status
`

type console struct {
	cfg      config.Console
	client   *api.Client
	manager  *session.Manager
	workflow *payout.Workflow
	inquiry  *inquiry.Flow
	nav      *nav.Recorder
	notifier notification.Notifier
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConsole()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, "payadmin")
	ctx := context.Background()

	var storage session.Storage
	var snapshots cache.Cache
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		storage = session.NewRedisStorage(rdb)
		snapshots = cache.NewRedisCache(rdb)
	} else {
		logger.Warn("running without redis, session will not survive restarts")
		storage = session.NewMemoryStorage()
		snapshots = cache.NewMemoryCache()
	}

	client := api.NewClient(cfg.APIBaseURL)
	navigator := nav.NewRecorder()
	notifier := notification.NewLoggerNotifier(logger)

	manager := session.NewManager(client, storage, navigator, logger, cfg.SessionTTL)
	manager.Rehydrate(ctx)

	workflow := payout.NewWorkflow(client, snapshots, payout.Bounds{
		Min: cfg.PayoutMinAmount,
		Max: cfg.PayoutMaxAmount,
	}, payout.Callbacks{
		OnSuccess: func(p payout.Payout) {
			_ = notifier.Send(ctx, notification.Message{
				Kind:        notification.KindPayoutSubmitted,
				Destination: p.MerchantID,
				Body:        fmt.Sprintf("Payout %s is %s", p.ID, p.Status),
			})
		},
		OnError: func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		},
	})

	cli := &console{
		cfg:      cfg,
		client:   client,
		manager:  manager,
		workflow: workflow,
		inquiry:  inquiry.NewFlow(client, snapshots, notifier),
		nav:      navigator,
		notifier: notifier,
	}

	if err := cli.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *console) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.login(ctx, args)
	case "logout":
		c.manager.Logout(ctx)
		fmt.Println("Signed out.")
		return nil
	case "whoami":
		return c.whoami(ctx)
	case "wallet":
		return c.wallet(ctx)
	case "payout":
		return c.payout(ctx, args)
	case "cancel":
		return c.cancel(ctx, args)
	case "history":
		return c.history(ctx, args)
	case "payments":
		return c.payments(ctx, args)
	case "inquire":
		return c.inquire(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *console) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	kind := fs.String("as", "merchant", "account kind: merchant or admin")
	remember := fs.Bool("remember", true, "persist the session")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	k := identity.Kind(*kind)
	if k != identity.KindAdmin && k != identity.KindMerchant {
		return fmt.Errorf("-as must be merchant or admin")
	}

	password, err := readSecret("Password: ")
	if err != nil {
		return err
	}

	result, err := c.manager.Login(ctx, session.LoginInput{
		Email:    *email,
		Password: password,
		Kind:     k,
		Remember: *remember,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Signed in. Next screen: %s\n", result.Redirect)
	return nil
}

func (c *console) whoami(_ context.Context) error {
	sess := c.manager.Current()
	if !sess.Active() {
		fmt.Println("Not signed in.")
		return nil
	}
	encoded, err := sess.Identity.Encode()
	if err != nil {
		return err
	}
	var pretty map[string]any
	if err := json.Unmarshal(encoded, &pretty); err != nil {
		return err
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Printf("%s (%s)\n%s\n", sess.Identity.Kind, sess.ExpiresAt.Format("2006-01-02 15:04"), out)
	return nil
}

func (c *console) wallet(ctx context.Context) error {
	sess, err := c.requireMerchant()
	if err != nil {
		return err
	}
	details, err := c.client.WalletDetails(ctx, sess.AccessToken)
	if err != nil {
		return err
	}
	fmt.Printf("Available: %d %s\nPending:   %d %s\nEarnings:  %d %s\n",
		details.Available, details.Currency,
		details.Pending, details.Currency,
		details.TotalEarnings, details.Currency)
	return nil
}

func (c *console) payout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("payout", flag.ExitOnError)
	amount := fs.Int64("amount", 0, "payout amount in whole PKR")
	account := fs.String("account", "", "bank account id")
	description := fs.String("description", "", "optional description")
	fs.Parse(args)

	sess, err := c.requireMerchant()
	if err != nil {
		return err
	}

	pin, err := readPIN()
	if err != nil {
		return err
	}

	result := c.workflow.Submit(ctx, sess.AccessToken, payout.SubmitRequest{
		Amount:         *amount,
		BankAccountID:  *account,
		TransactionPIN: pin,
		Description:    *description,
	})
	return printResult(result)
}

func (c *console) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.String("id", "", "payout request id")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	sess, err := c.requireMerchant()
	if err != nil {
		return err
	}

	// Cancellation re-authorizes: the PIN is entered again here, never
	// reused from the submit step.
	pin, err := readPIN()
	if err != nil {
		return err
	}

	result := c.workflow.Cancel(ctx, sess.AccessToken, *id, pin)
	return printResult(result)
}

func (c *console) history(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	status := fs.String("status", "", "optional status filter")
	fs.Parse(args)

	sess, err := c.requireMerchant()
	if err != nil {
		return err
	}

	result, err := c.workflow.History(ctx, sess.AccessToken, *page, *limit, payout.Status(*status))
	if err != nil {
		return err
	}

	fmt.Printf("Payout requests (page %d of %d total)\n", result.Page, result.Total)
	for _, p := range result.Items {
		fmt.Printf("  %s  %8d %s  %-10s  %s\n", p.ID, p.Amount, p.Currency, p.Status, p.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (c *console) payments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("payments", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	status := fs.String("status", "", "optional status filter")
	fs.Parse(args)

	sess, err := c.requireMerchant()
	if err != nil {
		return err
	}

	result, err := c.client.ListPayments(ctx, sess.AccessToken, *page, *limit, payout.Status(*status))
	if err != nil {
		return err
	}

	fmt.Printf("Payments (page %d of %d total)\n", result.Page, result.Total)
	for _, p := range result.Items {
		fmt.Printf("  %s  %s  %8d %s  %-10s\n", p.TransactionRef, p.Provider, p.Amount, p.Currency, p.Status)
	}
	return nil
}

func (c *console) inquire(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inquire", flag.ExitOnError)
	ref := fs.String("ref", "", "transaction reference")
	provider := fs.String("provider", "", "payment provider")
	fs.Parse(args)

	sess, err := c.requireMerchant()
	if err != nil {
		return err
	}

	result, err := c.inquiry.Check(ctx, sess.AccessToken, *ref, *provider)
	if err != nil {
		return err
	}

	fmt.Printf("%s via %s: %s (%d %s, fee %d)\n",
		result.TransactionRef, result.Provider, result.Status, result.Amount, result.Currency, result.Fee)
	if result.FailureReason != "" {
		fmt.Printf("Failure reason: %s\n", result.FailureReason)
	}
	return nil
}

// requireMerchant gates merchant commands behind the verification
// guard, mirroring how protected screens decide before rendering.
func (c *console) requireMerchant() (session.Session, error) {
	sess := c.manager.Current()
	decision := guard.Decide(sess.Identity, sess.Loading, c.nav.Current())
	if !decision.Allow {
		if decision.Redirect == nav.RouteLogin || !sess.Active() {
			return session.Session{}, fmt.Errorf("sign in first: payadmin login -email <email>")
		}
		return session.Session{}, fmt.Errorf("this account is not verified yet; check %s", nav.RouteAccountStatus)
	}
	if !sess.Identity.IsMerchant() {
		return session.Session{}, fmt.Errorf("a merchant session is required for this command")
	}
	return sess, nil
}

func printResult(result payout.Result) error {
	if result.Success {
		fmt.Printf("Payout %s: %s (%d %s)\n", result.Payout.ID, result.Payout.Status, result.Payout.Amount, result.Payout.Currency)
		return nil
	}
	if len(result.FieldErrors) > 0 {
		for field, msg := range result.FieldErrors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
		}
		return fmt.Errorf("payout request rejected")
	}
	return fmt.Errorf("%s", result.Message)
}

// readPIN collects the transaction PIN one digit at a time through the
// entry state machine, so the console enforces the same slot semantics
// as the on-screen pad.
func readPIN() (string, error) {
	line, err := readSecret("Transaction PIN: ")
	if err != nil {
		return "", err
	}
	return pinFromLine(line)
}

// pinFromLine feeds the entered line through the pad. Input longer
// than the four slots is rejected outright rather than truncated, so
// a mistyped entry never submits a PIN the operator did not intend.
func pinFromLine(line string) (string, error) {
	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) > pinpad.Slots {
		return "", fmt.Errorf("transaction PIN must be exactly 4 digits")
	}

	var code string
	pad := pinpad.New(func(c string) { code = c }, nil)
	slot := 0
	for _, ch := range trimmed {
		pad.OnDigit(slot, ch)
		slot++
	}
	if code == "" {
		return "", fmt.Errorf("transaction PIN must be exactly 4 digits")
	}
	return code, nil
}

func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
