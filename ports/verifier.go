package ports

// Verifier checks that a signature over a message was produced by the
// claimed address. Verification failure is an expected outcome, so
// implementations report it as false rather than an error.
type Verifier interface {
	Verify(address, message, signature string) bool
}
