package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainmall/authgate/adapters/store"
	"github.com/chainmall/authgate/adapters/verifier"
	"github.com/chainmall/authgate/core"
	"github.com/chainmall/authgate/ports"
)

type fakeDirectory struct {
	tokens    *core.SessionTokens
	loginErr  error
	revokeErr error
	revoked   []string
}

func (f *fakeDirectory) SignUp(ctx context.Context, username, password, email string) (*core.Registration, error) {
	return &core.Registration{}, nil
}

func (f *fakeDirectory) InitiateAuth(ctx context.Context, username, password string) (*core.SessionTokens, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.tokens, nil
}

func (f *fakeDirectory) ForgotPassword(ctx context.Context, username string) (*core.CodeDelivery, error) {
	return &core.CodeDelivery{}, nil
}

func (f *fakeDirectory) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	return nil
}

func (f *fakeDirectory) ConfirmSignUp(ctx context.Context, username, code string) error {
	return nil
}

func (f *fakeDirectory) ResendConfirmationCode(ctx context.Context, username string) (*core.CodeDelivery, error) {
	return &core.CodeDelivery{}, nil
}

func (f *fakeDirectory) RevokeToken(ctx context.Context, refreshToken string) error {
	f.revoked = append(f.revoked, refreshToken)
	return f.revokeErr
}

func (f *fakeDirectory) GetUser(ctx context.Context, accessToken string) (*core.Profile, error) {
	return &core.Profile{Username: "alice"}, nil
}

type fakeEvents struct {
	logins  []core.Principal
	logouts []string
}

func (f *fakeEvents) PublishLogin(ctx context.Context, principal core.Principal) error {
	f.logins = append(f.logins, principal)
	return nil
}

func (f *fakeEvents) PublishLogout(ctx context.Context, subject string) error {
	f.logouts = append(f.logouts, subject)
	return nil
}

func newTestService(dir *fakeDirectory, events *fakeEvents) *AuthService {
	// A nil *fakeEvents must become a nil interface, not a typed nil,
	// so the service's events == nil check still applies.
	var publisher ports.EventPublisher
	if events != nil {
		publisher = events
	}
	return NewAuthService(dir, verifier.NewPersonalSign(), store.NewMemoryStore(), publisher, zerolog.Nop(), time.Minute)
}

func TestIssueChallenge(t *testing.T) {
	svc := newTestService(&fakeDirectory{}, nil)
	ctx := context.Background()

	challenge, err := svc.IssueChallenge(ctx)
	require.NoError(t, err)

	assert.Len(t, challenge.Nonce, 32)
	assert.NotEmpty(t, challenge.ID)
	assert.True(t, strings.HasPrefix(challenge.Message, MessagePrefix))
	assert.Contains(t, challenge.Message, challenge.Nonce)
	assert.True(t, challenge.ExpiresAt.After(challenge.IssuedAt))

	other, err := svc.IssueChallenge(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, challenge.Nonce, other.Nonce)
}

func TestVerifyWallet(t *testing.T) {
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	sign := func(message string) string {
		sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
		require.NoError(t, err)
		return hexutil.Encode(sig)
	}

	t.Run("signed challenge verifies once", func(t *testing.T) {
		events := &fakeEvents{}
		svc := newTestService(&fakeDirectory{}, events)

		challenge, err := svc.IssueChallenge(ctx)
		require.NoError(t, err)

		verified, err := svc.VerifyWallet(ctx, address, challenge.Message, sign(challenge.Message))
		require.NoError(t, err)
		assert.True(t, verified)

		require.Len(t, events.logins, 1)
		assert.Equal(t, core.AuthMethodWallet, events.logins[0].Method)
		assert.Equal(t, strings.ToLower(address), events.logins[0].Subject)
	})

	t.Run("replay is rejected", func(t *testing.T) {
		svc := newTestService(&fakeDirectory{}, nil)

		challenge, err := svc.IssueChallenge(ctx)
		require.NoError(t, err)
		signature := sign(challenge.Message)

		verified, err := svc.VerifyWallet(ctx, address, challenge.Message, signature)
		require.NoError(t, err)
		require.True(t, verified)

		verified, err = svc.VerifyWallet(ctx, address, challenge.Message, signature)
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("wrong signer consumes the nonce", func(t *testing.T) {
		svc := newTestService(&fakeDirectory{}, nil)

		challenge, err := svc.IssueChallenge(ctx)
		require.NoError(t, err)

		otherKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		otherSig, err := crypto.Sign(accounts.TextHash([]byte(challenge.Message)), otherKey)
		require.NoError(t, err)

		verified, err := svc.VerifyWallet(ctx, address, challenge.Message, hexutil.Encode(otherSig))
		require.NoError(t, err)
		require.False(t, verified)

		// A failed attempt burns the challenge; a later genuine
		// signature over the same message cannot succeed.
		verified, err = svc.VerifyWallet(ctx, address, challenge.Message, sign(challenge.Message))
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("message the broker never issued", func(t *testing.T) {
		svc := newTestService(&fakeDirectory{}, nil)

		forged := MessagePrefix + "00000000000000000000000000000000-1756400000000"
		verified, err := svc.VerifyWallet(ctx, address, forged, sign(forged))
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("message without the issued format", func(t *testing.T) {
		svc := newTestService(&fakeDirectory{}, nil)

		for _, message := range []string{
			"free-form text",
			MessagePrefix + "tooshort-123",
			MessagePrefix + "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz-123",
			MessagePrefix + "4f3edf983ac636a65a842ce7c78d9aa7-notatime",
		} {
			verified, err := svc.VerifyWallet(ctx, address, message, sign(message))
			require.NoError(t, err)
			assert.False(t, verified, message)
		}
	})
}

func TestLogin(t *testing.T) {
	events := &fakeEvents{}
	dir := &fakeDirectory{tokens: &core.SessionTokens{AccessToken: "a", RefreshToken: "r", IDToken: "i"}}
	svc := newTestService(dir, events)

	tokens, err := svc.Login(context.Background(), "alice", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.AccessToken)

	require.Len(t, events.logins, 1)
	assert.Equal(t, core.Principal{Subject: "alice", Method: core.AuthMethodPassword}, events.logins[0])
}

func TestLoginFailurePublishesNothing(t *testing.T) {
	events := &fakeEvents{}
	svc := newTestService(&fakeDirectory{loginErr: core.ErrInvalidCredentials}, events)

	_, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	assert.Empty(t, events.logins)
}

func TestLogout(t *testing.T) {
	t.Run("revokes upstream and publishes", func(t *testing.T) {
		events := &fakeEvents{}
		dir := &fakeDirectory{}
		svc := newTestService(dir, events)

		svc.Logout(context.Background(), "refresh-token", "alice")

		assert.Equal(t, []string{"refresh-token"}, dir.revoked)
		assert.Equal(t, []string{"alice"}, events.logouts)
	})

	t.Run("upstream failure does not block logout", func(t *testing.T) {
		dir := &fakeDirectory{revokeErr: core.ErrUpstreamUnavailable}
		svc := newTestService(dir, nil)

		// Must return normally; the caller clears cookies regardless
		svc.Logout(context.Background(), "refresh-token", "alice")
		assert.Equal(t, []string{"refresh-token"}, dir.revoked)
	})

	t.Run("no refresh token skips the upstream call", func(t *testing.T) {
		dir := &fakeDirectory{}
		svc := newTestService(dir, nil)

		svc.Logout(context.Background(), "", "")
		assert.Empty(t, dir.revoked)
	})
}
