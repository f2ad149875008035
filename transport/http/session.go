package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chainmall/authgate/core"
)

// Cookie names for the session triad
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	CookieIDToken      = "idToken"
)

// SessionManager carries the session triad to the client as HTTP-only
// cookies and answers the local "is authenticated" question. It holds no
// per-session state; the tokens themselves are the session.
type SessionManager struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSessionManager creates a session manager. secure should be true in
// production so cookies only travel over HTTPS.
func NewSessionManager(secure bool) *SessionManager {
	return &SessionManager{
		secure:     secure,
		accessTTL:  time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

// Issue sets the triad as HTTP-only, SameSite=Lax cookies scoped to "/".
// The access and identity cookies live as long as the access token; the
// refresh cookie gets the long expiry.
func (m *SessionManager) Issue(c *gin.Context, tokens *core.SessionTokens) {
	accessTTL := m.accessTTL
	if tokens.ExpiresIn > 0 {
		accessTTL = time.Duration(tokens.ExpiresIn) * time.Second
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieAccessToken, tokens.AccessToken, int(accessTTL.Seconds()), "/", "", m.secure, true)
	c.SetCookie(CookieIDToken, tokens.IDToken, int(accessTTL.Seconds()), "/", "", m.secure, true)
	c.SetCookie(CookieRefreshToken, tokens.RefreshToken, int(m.refreshTTL.Seconds()), "/", "", m.secure, true)
}

// Clear expires the whole triad. Idempotent: expiring cookies the client
// never held is harmless.
func (m *SessionManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieAccessToken, "", -1, "/", "", m.secure, true)
	c.SetCookie(CookieIDToken, "", -1, "/", "", m.secure, true)
	c.SetCookie(CookieRefreshToken, "", -1, "/", "", m.secure, true)
}

// IsAuthenticated reports whether the request carries an access-token
// cookie that still parses as a live token
func (m *SessionManager) IsAuthenticated(c *gin.Context) bool {
	token, err := c.Cookie(CookieAccessToken)
	if err != nil || token == "" {
		return false
	}
	return tokenAlive(token)
}

// Subject reads the sub claim out of the access-token cookie, or ""
func (m *SessionManager) Subject(c *gin.Context) string {
	token, err := c.Cookie(CookieAccessToken)
	if err != nil {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

// tokenAlive checks the token's expiry claim locally, without contacting
// the directory. The signature is not validated here: only the directory
// holds the verification keys, and every protected operation revalidates
// the token upstream when it consumes it.
func tokenAlive(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return true
	}
	return exp.After(time.Now())
}
