package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/karobar-pay/karobar_pay/internal/api"
	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/nav"
)

// Session is the in-memory view of the current operator session.
// Loading is true from process start until Rehydrate resolves, so
// guards can hold back protected content in the meantime.
type Session struct {
	Identity    identity.Identity
	AccessToken string
	// ExpiresAt zero means absent; an absent or past expiry makes the
	// session expired regardless of the other fields.
	ExpiresAt time.Time
	Loading   bool
}

// Active reports whether a usable identity is signed in.
func (s Session) Active() bool {
	return s.AccessToken != "" && (s.Identity.IsAdmin() || s.Identity.IsMerchant())
}

// Expired reports whether the session has passed its deadline.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.IsZero() || !s.ExpiresAt.After(now)
}

// PlatformClient is the slice of the platform API the session layer
// consumes.
type PlatformClient interface {
	SignIn(ctx context.Context, kind identity.Kind, email, password string) (api.SignInResponse, error)
	MerchantProfile(ctx context.Context, token string) (identity.Merchant, error)
}

// Manager owns the session: it is the only writer of the in-memory
// state and of the durable session keys. Readers get copies through
// Current.
type Manager struct {
	client  PlatformClient
	storage Storage
	sched   *Scheduler
	nav     nav.Navigator
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time

	mu         sync.Mutex
	session    Session
	profileSeq uint64
}

// NewManager constructs a session manager. The session starts empty
// and loading; call Rehydrate once at startup to resolve it.
func NewManager(client PlatformClient, storage Storage, navigator nav.Navigator, logger *slog.Logger, ttl time.Duration) *Manager {
	return &Manager{
		client:  client,
		storage: storage,
		sched:   NewScheduler(),
		nav:     navigator,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
		session: Session{Loading: true},
	}
}

// Current returns a copy of the session for readers.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// LoginInput carries submitted credentials plus the variant hint and
// navigation context.
type LoginInput struct {
	Email     string
	Password  string
	Kind      identity.Kind
	Remember  bool
	ReturnURL string
}

// LoginResult reports the signed-in identity and the computed redirect
// target.
type LoginResult struct {
	Identity identity.Identity
	Redirect string
}

// Login submits credentials, captures the token and identity, enriches
// merchant identities from the profile endpoint, persists the session
// when the remember preference is set, arms the expiry timer, and
// redirects. On failure the session state is untouched and the error
// is classified for display.
func (m *Manager) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	resp, err := m.client.SignIn(ctx, input.Kind, input.Email, input.Password)
	if err != nil {
		return LoginResult{}, classifyLoginError(err)
	}

	id, err := identity.Parse(resp.Identity)
	if err != nil {
		return LoginResult{}, &LoginError{Message: MsgServerFault, cause: err}
	}

	// Signin responses omit fields only the profile endpoint returns
	// (phone, bank details), so merchants get one enrichment fetch.
	// A failed fetch falls back to the signin snapshot.
	if id.IsMerchant() {
		if fresh, err := m.client.MerchantProfile(ctx, resp.AccessToken); err == nil {
			merged := identity.MergeMerchant(*id.Merchant, fresh)
			id.Merchant = &merged
		} else {
			m.logger.Warn("merchant profile enrichment failed", "error", err)
		}
	}

	expiresAt := m.now().Add(m.ttl)

	if input.Remember {
		encoded, err := id.Encode()
		if err != nil {
			return LoginResult{}, &LoginError{Message: MsgServerFault, cause: err}
		}
		snap := Snapshot{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			IdentityJSON: encoded,
			ExpiresAt:    expiresAt.UnixMilli(),
		}
		// Persist before arming: a crash between the two still leaves
		// a recoverable expiry for the next rehydration.
		if err := m.storage.Save(ctx, snap); err != nil {
			return LoginResult{}, &LoginError{Message: MsgServerFault, cause: err}
		}
	}

	m.mu.Lock()
	m.profileSeq++
	m.session = Session{Identity: id, AccessToken: resp.AccessToken, ExpiresAt: expiresAt}
	m.mu.Unlock()

	m.sched.Arm(expiresAt, m.expire)

	target := redirectTarget(id, input.ReturnURL)
	m.nav.Redirect(target)
	return LoginResult{Identity: id, Redirect: target}, nil
}

// redirectTarget computes the post-login destination. An explicit
// non-root return URL overrides the identity-based default.
func redirectTarget(id identity.Identity, returnURL string) string {
	if returnURL != "" && returnURL != nav.RouteRoot {
		return returnURL
	}
	switch {
	case id.IsMerchant() && id.Verified():
		return nav.RouteMerchantProfile
	case id.IsMerchant():
		return nav.RouteAccountStatus
	default:
		return nav.RouteAdminHome
	}
}

// Logout tears the session down: durable storage cleared and the timer
// cancelled before the redirect, so back-navigation cannot observe
// stale state. Calling it again is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if !m.session.Active() && !m.session.Loading && !m.sched.Armed() {
		m.mu.Unlock()
		return
	}
	m.session = Session{}
	m.mu.Unlock()

	if err := m.storage.Clear(ctx); err != nil {
		m.logger.Warn("clear session storage", "error", err)
	}
	m.sched.Cancel()
	m.nav.Redirect(nav.RouteLogin)
}

// expire is the scheduler callback.
func (m *Manager) expire() {
	m.logger.Info("session expired, forcing logout")
	m.Logout(context.Background())
}

// Rehydrate resolves the session from durable storage at process
// start. An expired snapshot tears down exactly like Logout; an
// unreadable identity clears storage and leaves the session empty.
// The expiry timer is armed from the persisted deadline; only Login
// resets the window.
func (m *Manager) Rehydrate(ctx context.Context) {
	snap, err := m.storage.Load(ctx)
	if err != nil {
		m.logger.Warn("load session storage", "error", err)
		m.setEmpty()
		return
	}

	if snap.Empty() {
		m.setEmpty()
		return
	}

	if snap.ExpiresAt == 0 || !time.UnixMilli(snap.ExpiresAt).After(m.now()) {
		if err := m.storage.Clear(ctx); err != nil {
			m.logger.Warn("clear session storage", "error", err)
		}
		m.sched.Cancel()
		m.setEmpty()
		m.nav.Redirect(nav.RouteLogin)
		return
	}

	id, err := identity.Parse(snap.IdentityJSON)
	if err != nil {
		m.logger.Warn("stored identity unreadable, discarding session", "error", err)
		if err := m.storage.Clear(ctx); err != nil {
			m.logger.Warn("clear session storage", "error", err)
		}
		m.setEmpty()
		return
	}

	// Pick up verification-status changes made server-side since the
	// last visit; fall back silently to the stored snapshot.
	if id.IsMerchant() {
		if fresh, err := m.client.MerchantProfile(ctx, snap.AccessToken); err == nil {
			merged := identity.MergeMerchant(*id.Merchant, fresh)
			id.Merchant = &merged
		} else {
			m.logger.Warn("merchant profile refresh failed, using stored snapshot", "error", err)
		}
	}

	expiresAt := time.UnixMilli(snap.ExpiresAt)

	m.mu.Lock()
	m.profileSeq++
	m.session = Session{Identity: id, AccessToken: snap.AccessToken, ExpiresAt: expiresAt}
	m.mu.Unlock()

	m.sched.Arm(expiresAt, m.expire)
}

// RefreshMerchantProfile re-fetches the merchant profile on demand,
// merges it over the current identity, and persists the merge. The
// second return is false when the current identity is not a merchant,
// the token is absent, or a newer refresh completed first. Older
// completions never overwrite fresher data.
func (m *Manager) RefreshMerchantProfile(ctx context.Context) (identity.Identity, bool, error) {
	m.mu.Lock()
	if !m.session.Identity.IsMerchant() || m.session.AccessToken == "" {
		m.mu.Unlock()
		return identity.Identity{}, false, nil
	}
	token := m.session.AccessToken
	snapshot := *m.session.Identity.Merchant
	m.profileSeq++
	seq := m.profileSeq
	m.mu.Unlock()

	fresh, err := m.client.MerchantProfile(ctx, token)
	if err != nil {
		return identity.Identity{}, false, err
	}

	merged := identity.MergeMerchant(snapshot, fresh)
	id := identity.Identity{Kind: identity.KindMerchant, Merchant: &merged}

	m.mu.Lock()
	if seq != m.profileSeq || !m.session.Identity.IsMerchant() {
		current := m.session.Identity
		m.mu.Unlock()
		return current, false, nil
	}
	m.session.Identity = id
	m.mu.Unlock()

	if snap, err := m.storage.Load(ctx); err == nil && !snap.Empty() {
		if encoded, err := id.Encode(); err == nil {
			snap.IdentityJSON = encoded
			if err := m.storage.Save(ctx, snap); err != nil {
				m.logger.Warn("persist refreshed profile", "error", err)
			}
		}
	}

	return id, true, nil
}

func (m *Manager) setEmpty() {
	m.mu.Lock()
	m.session = Session{}
	m.mu.Unlock()
}
