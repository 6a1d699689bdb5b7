package guard

import (
	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/nav"
)

// Decision is the outcome of a verification check. Allow renders the
// protected content; otherwise the fallback renders and Redirect, when
// non-empty, names the single navigation to issue.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide gates protected content on the current identity. While the
// session is still loading it always denies, so protected content
// never flashes before the identity resolves. An unverified merchant
// is sent to the account-status route unless already there, which
// keeps the redirect from looping.
func Decide(id identity.Identity, loading bool, route string) Decision {
	if loading {
		return Decision{}
	}

	if id.IsMerchant() && !id.Verified() {
		if route != nav.RouteAccountStatus {
			return Decision{Redirect: nav.RouteAccountStatus}
		}
		return Decision{}
	}

	if id.IsAdmin() || id.Verified() {
		return Decision{Allow: true}
	}

	// No identity at all: back to login, once.
	if route != nav.RouteLogin {
		return Decision{Redirect: nav.RouteLogin}
	}
	return Decision{}
}

// ShowChrome is the coarser check applied at the navigation-chrome
// boundary. An unverified merchant sees no navigation, header, or
// floating controls at all, so gated features cannot be discovered
// through the shell.
func ShowChrome(id identity.Identity, loading bool) bool {
	if loading {
		return false
	}
	if id.IsMerchant() && !id.Verified() {
		return false
	}
	return id.IsAdmin() || id.Verified()
}
