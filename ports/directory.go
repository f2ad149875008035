package ports

import (
	"context"

	"github.com/chainmall/authgate/core"
)

// Directory wraps the external identity directory. Implementations attach
// the per-request secret hash to every username-keyed call and translate
// upstream failures into the core error taxonomy before returning.
type Directory interface {
	// SignUp registers a new credential
	SignUp(ctx context.Context, username, password, email string) (*core.Registration, error)

	// InitiateAuth exchanges a username and password for the session triad
	InitiateAuth(ctx context.Context, username, password string) (*core.SessionTokens, error)

	// ForgotPassword triggers an out-of-band reset code
	ForgotPassword(ctx context.Context, username string) (*core.CodeDelivery, error)

	// ConfirmForgotPassword completes a reset with the delivered code
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error

	// ConfirmSignUp confirms a registration with the delivered code
	ConfirmSignUp(ctx context.Context, username, code string) error

	// ResendConfirmationCode re-sends the registration code
	ResendConfirmationCode(ctx context.Context, username string) (*core.CodeDelivery, error)

	// RevokeToken invalidates a refresh token upstream
	RevokeToken(ctx context.Context, refreshToken string) error

	// GetUser resolves an access token into the user's profile
	GetUser(ctx context.Context, accessToken string) (*core.Profile, error)
}
