package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chainmall/authgate/core"
	"github.com/chainmall/authgate/service"
)

// AuthHandlers contains the HTTP handlers for both authentication paths
type AuthHandlers struct {
	auth     *service.AuthService
	sessions *SessionManager
	logger   zerolog.Logger
}

func NewAuthHandlers(auth *service.AuthService, sessions *SessionManager, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		auth:     auth,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRequest is the payload for directory sign-up
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// LoginRequest is the payload for password authentication
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest triggers an out-of-band reset code
type ForgotPasswordRequest struct {
	Username string `json:"username" binding:"required"`
}

// ConfirmForgotRequest completes a password reset
type ConfirmForgotRequest struct {
	Username    string `json:"username" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ConfirmOTPRequest confirms a registration
type ConfirmOTPRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// ResendOTPRequest re-sends the registration code
type ResendOTPRequest struct {
	Username string `json:"username" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke. Optional: when the
// body is empty the refresh-token cookie is used instead.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// VerifyRequest is a signed wallet challenge
type VerifyRequest struct {
	Address   string `json:"address" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// TokenResponse returns the session triad alongside the cookies
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int32  `json:"expires_in"`
}

// DeliveryResponse describes where a one-time code was sent
type DeliveryResponse struct {
	Destination string `json:"destination"`
	Medium      string `json:"medium"`
}

// Register handles directory sign-up
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	registration, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "User registered. Please verify your account with the delivered code.",
		"confirmed": registration.UserConfirmed,
		"delivery":  deliveryResponse(registration.Delivery),
	})
}

// Login handles password authentication and issues the session cookies
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	tokens, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sessions.Issue(c, tokens)
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// ForgotPassword triggers the reset flow
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	delivery, err := h.auth.ForgotPassword(c.Request.Context(), req.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Verification code sent",
		"delivery": deliveryResponse(delivery),
	})
}

// ConfirmForgot completes the reset flow
func (h *AuthHandlers) ConfirmForgot(c *gin.Context) {
	var req ConfirmForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.auth.ConfirmForgotPassword(c.Request.Context(), req.Username, req.Code, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// ConfirmOTP confirms a registration with a one-time code
func (h *AuthHandlers) ConfirmOTP(c *gin.Context) {
	var req ConfirmOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.auth.ConfirmSignUp(c.Request.Context(), req.Username, req.Code); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account confirmed. You can sign in now."})
}

// ResendOTP re-sends the registration code
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	delivery, err := h.auth.ResendConfirmationCode(c.Request.Context(), req.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "A new verification code was sent",
		"delivery": deliveryResponse(delivery),
	})
}

// Logout revokes the refresh token upstream and clears the local session.
// Cookie clearing happens regardless of the upstream outcome and before
// the response is written.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken, _ = c.Cookie(CookieRefreshToken)
	}

	h.auth.Logout(c.Request.Context(), refreshToken, h.sessions.Subject(c))
	h.sessions.Clear(c)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// CheckMe reports whether the presented credential is locally live
func (h *AuthHandlers) CheckMe(c *gin.Context) {
	token := c.GetString(ctxKeyAccessToken)
	c.JSON(http.StatusOK, gin.H{"authenticated": tokenAlive(token)})
}

// SignMessage issues a wallet challenge
func (h *AuthHandlers) SignMessage(c *gin.Context) {
	challenge, err := h.auth.IssueChallenge(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue challenge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   challenge.Message,
		"nonce":     challenge.Nonce,
		"timestamp": challenge.IssuedAt.UnixMilli(),
	})
}

// Verify checks a signed wallet challenge
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	verified, err := h.auth.VerifyWallet(c.Request.Context(), req.Address, req.Message, req.Signature)
	if err != nil {
		h.logger.Error().Err(err).Msg("challenge store failure during verification")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Verification temporarily unavailable"})
		return
	}

	if !verified {
		c.JSON(http.StatusUnauthorized, gin.H{"verified": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// User returns the directory profile for the presented access token
func (h *AuthHandlers) User(c *gin.Context) {
	profile, err := h.auth.Profile(c.Request.Context(), c.GetString(ctxKeyAccessToken))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":   profile.Username,
		"attributes": profile.Attributes,
	})
}

// respondError maps the core taxonomy onto HTTP statuses. Upstream
// exception detail never reaches the client.
func (h *AuthHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, core.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing access token"})
	case errors.Is(err, core.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrUpstreamUnavailable):
		h.logger.Error().Err(err).Msg("identity directory unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Identity service unavailable"})
	case errors.Is(err, core.ErrConfiguration):
		h.logger.Error().Err(err).Msg("broker misconfigured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfigured"})
	default:
		h.logger.Error().Err(err).Msg("unexpected failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func deliveryResponse(delivery *core.CodeDelivery) *DeliveryResponse {
	if delivery == nil {
		return nil
	}
	return &DeliveryResponse{
		Destination: delivery.Destination,
		Medium:      delivery.Medium,
	}
}
