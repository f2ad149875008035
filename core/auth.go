package core

import "time"

// Challenge is a single-use message a wallet signs to prove key ownership
type Challenge struct {
	ID        string    // Unique identifier for the challenge
	Nonce     string    // Random nonce embedded in the message
	Message   string    // Human-readable text the wallet signs
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
}

// SessionTokens is the triad issued by the identity directory on login
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresIn    int32 // Access token lifetime in seconds
}

// CodeDelivery describes where the directory sent a one-time code
type CodeDelivery struct {
	Destination string // Masked email address or phone number
	Medium      string // "EMAIL" or "SMS"
}

// Registration is the directory's answer to a sign-up request
type Registration struct {
	UserConfirmed bool
	Delivery      *CodeDelivery
}

// Profile is the flattened directory view of an authenticated user
type Profile struct {
	Username   string
	Attributes map[string]string
}

// Principal is the subject recovered after a successful verification:
// the directory-confirmed username or the recovered wallet address.
type Principal struct {
	Subject string
	Method  AuthMethod
}

// AuthMethod distinguishes the two authentication paths
type AuthMethod string

const (
	AuthMethodPassword AuthMethod = "password"
	AuthMethodWallet   AuthMethod = "wallet"
)
