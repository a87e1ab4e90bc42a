package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/services/auth"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

const principalContextKey = "staybook.principal"

// principal is the request-scoped view of the authenticated account. Role
// checks parse the wanted role first, so a typo in a route guard can never
// accidentally match.
type principal struct {
	ID        string
	Email     string
	Name      string
	Roles     []string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p principal) HasRole(role string) bool {
	want, err := domainuser.ParseRole(role)
	if err != nil {
		return false
	}
	for _, held := range p.Roles {
		if held == string(want) {
			return true
		}
	}
	return false
}

// AuthMiddleware resolves the bearer token into a principal. It never blocks
// a request itself: anonymous and bad-token requests pass through without a
// principal, and requireRole decides per route what that means.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	defer c.Next()
	if m.Service == nil {
		return
	}
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token resolution failed", "error", err)
		}
		return
	}
	account := resolved.User
	setPrincipal(c, principal{
		ID:        string(account.ID),
		Email:     account.Email,
		Name:      account.Name,
		Roles:     account.Roles.Strings(),
		Token:     token,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	})
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireRole aborts with 401 when no principal was resolved and 403 when the
// principal lacks the role. An empty role only requires authentication.
func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "auth_required", "authentication required")
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		respondError(c, http.StatusForbidden, "insufficient_role", "insufficient permissions")
		return principal{}, false
	}
	return p, true
}

// bearerToken pulls the credential out of an Authorization header. The
// scheme comparison is case-insensitive per RFC 7235.
func bearerToken(header string) (string, bool) {
	const scheme = "bearer "
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}
