package nav

import (
	"log/slog"
	"sync"
)

// Application routes referenced by the session and guard layers.
const (
	RouteRoot            = "/"
	RouteLogin           = "/login"
	RouteAdminHome       = "/dashboard"
	RouteMerchantProfile = "/merchant/profile"
	RouteAccountStatus   = "/merchant/account-status"
)

// Navigator abstracts the surrounding shell's navigation so the
// session core can issue redirects without knowing how screens mount.
type Navigator interface {
	Redirect(route string)
}

// Recorder captures redirects for tests and for console output.
type Recorder struct {
	mu     sync.Mutex
	routes []string
}

// NewRecorder constructs an empty redirect recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Redirect appends the route to the recorded history.
func (r *Recorder) Redirect(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Routes returns a copy of the recorded redirect history.
func (r *Recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.routes))
	copy(out, r.routes)
	return out
}

// Current returns the most recent redirect target, or the root route
// when none has been issued.
func (r *Recorder) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return RouteRoot
	}
	return r.routes[len(r.routes)-1]
}

// LoggerNavigator writes redirects to the structured logger.
type LoggerNavigator struct {
	logger *slog.Logger
}

// NewLoggerNavigator constructs a logging navigator.
func NewLoggerNavigator(logger *slog.Logger) *LoggerNavigator {
	return &LoggerNavigator{logger: logger}
}

// Redirect logs the navigation target.
func (n *LoggerNavigator) Redirect(route string) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Info("navigate", "route", route)
}
