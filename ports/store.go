package ports

import (
	"context"
	"time"
)

// NonceStore tracks outstanding challenge nonces so each one is consumed
// by exactly one verification
type NonceStore interface {
	// Save records a freshly issued nonce for the challenge's lifetime
	Save(ctx context.Context, nonce string, ttl time.Duration) error

	// Consume atomically takes a nonce out of the store. It returns false
	// when the nonce is unknown, expired or already consumed.
	Consume(ctx context.Context, nonce string) (bool, error)
}
