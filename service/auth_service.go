package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chainmall/authgate/core"
	"github.com/chainmall/authgate/ports"
)

// MessagePrefix is the fixed prompt a wallet is asked to sign. Issue and
// verify share it verbatim; a signer sees exactly what they authorize.
const MessagePrefix = "Sign this message to authenticate: "

const nonceBytes = 16

// AuthService is the authentication broker: it issues wallet challenges,
// verifies signed challenges, and drives the credential flows against the
// identity directory.
type AuthService struct {
	directory ports.Directory
	verifier  ports.Verifier
	nonces    ports.NonceStore
	events    ports.EventPublisher
	logger    zerolog.Logger

	challengeTTL time.Duration
}

func NewAuthService(
	directory ports.Directory,
	verifier ports.Verifier,
	nonces ports.NonceStore,
	events ports.EventPublisher,
	logger zerolog.Logger,
	challengeTTL time.Duration,
) *AuthService {
	if challengeTTL <= 0 {
		challengeTTL = 5 * time.Minute
	}
	return &AuthService{
		directory:    directory,
		verifier:     verifier,
		nonces:       nonces,
		events:       events,
		logger:       logger,
		challengeTTL: challengeTTL,
	}
}

// IssueChallenge creates a single-use wallet challenge. The nonce is
// recorded in the store so verification can consume it exactly once.
func (s *AuthService) IssueChallenge(ctx context.Context) (*core.Challenge, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	now := time.Now()
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Nonce:     nonce,
		Message:   fmt.Sprintf("%s%s-%d", MessagePrefix, nonce, now.UnixMilli()),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err := s.nonces.Save(ctx, nonce, s.challengeTTL); err != nil {
		return nil, fmt.Errorf("failed to record challenge: %w", err)
	}

	return challenge, nil
}

// VerifyWallet checks a signed challenge. The embedded nonce is consumed
// before signature recovery, so a captured (message, signature) pair
// cannot be replayed. A negative verdict is a normal outcome; the error
// is non-nil only when the nonce store itself fails.
func (s *AuthService) VerifyWallet(ctx context.Context, address, message, signature string) (bool, error) {
	nonce, ok := nonceFromMessage(message)
	if !ok {
		return false, nil
	}

	live, err := s.nonces.Consume(ctx, nonce)
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	if !live {
		s.logger.Debug().Str("address", address).Msg("challenge nonce unknown or already used")
		return false, nil
	}

	if !s.verifier.Verify(address, message, signature) {
		return false, nil
	}

	s.notifyLogin(ctx, core.Principal{Subject: strings.ToLower(address), Method: core.AuthMethodWallet})
	return true, nil
}

// Register signs a credential up with the identity directory
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*core.Registration, error) {
	return s.directory.SignUp(ctx, username, password, email)
}

// Login exchanges a username and password for the session triad
func (s *AuthService) Login(ctx context.Context, username, password string) (*core.SessionTokens, error) {
	tokens, err := s.directory.InitiateAuth(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.notifyLogin(ctx, core.Principal{Subject: username, Method: core.AuthMethodPassword})
	return tokens, nil
}

// ForgotPassword triggers an out-of-band reset code
func (s *AuthService) ForgotPassword(ctx context.Context, username string) (*core.CodeDelivery, error) {
	return s.directory.ForgotPassword(ctx, username)
}

// ConfirmForgotPassword completes a password reset
func (s *AuthService) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	return s.directory.ConfirmForgotPassword(ctx, username, code, newPassword)
}

// ConfirmSignUp confirms a registration with a one-time code
func (s *AuthService) ConfirmSignUp(ctx context.Context, username, code string) error {
	return s.directory.ConfirmSignUp(ctx, username, code)
}

// ResendConfirmationCode re-sends the registration code
func (s *AuthService) ResendConfirmationCode(ctx context.Context, username string) (*core.CodeDelivery, error) {
	return s.directory.ResendConfirmationCode(ctx, username)
}

// Logout revokes the refresh token upstream, best-effort. An unreachable
// directory never blocks logout; the caller clears the local session
// regardless of the upstream outcome. subject may be empty when the
// session carried no readable identity.
func (s *AuthService) Logout(ctx context.Context, refreshToken, subject string) {
	if refreshToken != "" {
		if err := s.directory.RevokeToken(ctx, refreshToken); err != nil {
			s.logger.Warn().Err(err).Msg("upstream token revoke failed, clearing session anyway")
		}
	}

	if s.events != nil {
		if err := s.events.PublishLogout(ctx, subject); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish logout event")
		}
	}
}

// Profile resolves an access token into the user's profile
func (s *AuthService) Profile(ctx context.Context, accessToken string) (*core.Profile, error) {
	return s.directory.GetUser(ctx, accessToken)
}

func (s *AuthService) notifyLogin(ctx context.Context, principal core.Principal) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLogin(ctx, principal); err != nil {
		s.logger.Warn().Err(err).Str("method", string(principal.Method)).Msg("failed to publish login event")
	}
}

// nonceFromMessage extracts the nonce from a challenge message. The
// message must carry the exact issued format: prefix, nonce, a dash and
// the issuance timestamp in milliseconds.
func nonceFromMessage(message string) (string, bool) {
	rest, ok := strings.CutPrefix(message, MessagePrefix)
	if !ok {
		return "", false
	}

	nonce, stamp, ok := strings.Cut(rest, "-")
	if !ok || len(nonce) != nonceBytes*2 {
		return "", false
	}
	if _, err := hex.DecodeString(nonce); err != nil {
		return "", false
	}
	if _, err := strconv.ParseInt(stamp, 10, 64); err != nil {
		return "", false
	}

	return nonce, true
}
