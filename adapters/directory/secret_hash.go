package directory

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/chainmall/authgate/core"
)

// HashComputer derives the keyed hash the identity directory requires on
// every username-keyed call. The output must match byte-for-byte what the
// directory computes on its side, or the call is rejected upstream.
type HashComputer struct {
	clientID     string
	clientSecret string
}

// NewHashComputer validates the pre-provisioned secrets once, at
// construction, so a missing secret surfaces as a configuration failure
// instead of a per-request rejection.
func NewHashComputer(clientID, clientSecret string) (*HashComputer, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id", core.ErrConfiguration)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: client secret", core.ErrConfiguration)
	}
	return &HashComputer{clientID: clientID, clientSecret: clientSecret}, nil
}

// Compute returns base64(HMAC-SHA256(clientSecret, username || clientID)).
// Deterministic and free of shared mutable state, so it is safe to call
// from concurrent requests. The result must never be logged.
func (h *HashComputer) Compute(username string) string {
	mac := hmac.New(sha256.New, []byte(h.clientSecret))
	mac.Write([]byte(username + h.clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
