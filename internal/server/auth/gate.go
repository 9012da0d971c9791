package auth

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
)

// Decision is the verdict of the access gate for one request.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToApp
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToApp:
		return "redirect_to_app"
	}
	return "unknown"
}

// Verifier is the part of TokenService the gate needs.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// Gate decides, per request and without caching, whether a path may be
// served for the presented token.
type Gate struct {
	verifier  Verifier
	loginPath string
	appPath   string
}

// NewGate builds a gate with loginPath as the public entry route and appPath
// as the protected prefix. The prefix must be a non-root absolute path and
// must not cover loginPath, or anonymous visitors would loop on redirects.
func NewGate(v Verifier, loginPath, appPath string) (*Gate, error) {
	g := &Gate{
		verifier:  v,
		loginPath: loginPath,
		appPath:   strings.TrimSuffix(appPath, "/"),
	}

	if !strings.HasPrefix(g.appPath, "/") {
		return nil, fmt.Errorf("%w: app path %q must be an absolute path other than /", common.ErrConfiguration, appPath)
	}
	if !strings.HasPrefix(loginPath, "/") {
		return nil, fmt.Errorf("%w: login path %q must be an absolute path", common.ErrConfiguration, loginPath)
	}
	if g.isProtected(loginPath) {
		return nil, fmt.Errorf("%w: login path %q is inside app path %q", common.ErrConfiguration, loginPath, appPath)
	}

	return g, nil
}

func (g *Gate) LoginPath() string { return g.loginPath }
func (g *Gate) AppPath() string   { return g.appPath }

// Decide verifies token (an empty token is unauthenticated) and applies:
// authenticated on the entry route goes to the app, unauthenticated under
// the protected prefix goes to the entry route, anything else is allowed.
func (g *Gate) Decide(path, token string) Decision {
	authenticated := false
	if token != "" {
		if _, err := g.verifier.Verify(token); err == nil {
			authenticated = true
		}
	}

	switch {
	case path == g.loginPath && authenticated:
		return RedirectToApp
	case g.isProtected(path) && !authenticated:
		return RedirectToLogin
	default:
		return Allow
	}
}

// isProtected matches the prefix on a path segment boundary.
func (g *Gate) isProtected(path string) bool {
	if !strings.HasPrefix(path, g.appPath) {
		return false
	}
	rest := path[len(g.appPath):]
	return rest == "" || strings.HasPrefix(rest, "/")
}
