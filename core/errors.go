package core

import "errors"

var (
	// ErrConfiguration means a required secret or setting is absent
	ErrConfiguration = errors.New("missing required configuration")

	// ErrInvalidCredentials is the generic authentication rejection.
	// The message is intentionally non-specific so callers cannot tell
	// a wrong password from an unconfirmed or unknown account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation means a request was malformed or rejected on input
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable means the identity directory could not be reached
	ErrUpstreamUnavailable = errors.New("identity directory unavailable")

	// ErrVerificationFailed means a wallet signature did not match
	ErrVerificationFailed = errors.New("signature verification failed")

	// ErrUnauthenticated means a required credential is missing or rejected
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrChallengeExpired means a challenge nonce is unknown, expired or
	// already consumed
	ErrChallengeExpired = errors.New("challenge expired or already used")
)
