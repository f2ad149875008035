package verifier

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalSignVerify(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	message := "Sign this message to authenticate: 4f3edf983ac636a65a842ce7c78d9aa7-1756400000000"

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	signature := hexutil.Encode(sig)

	v := NewPersonalSign()

	t.Run("genuine signature", func(t *testing.T) {
		assert.True(t, v.Verify(address, message, signature))
	})

	t.Run("address comparison is case-insensitive", func(t *testing.T) {
		assert.True(t, v.Verify(strings.ToLower(address), message, signature))
		assert.True(t, v.Verify(strings.ToUpper(address[:2])+address[2:], message, signature))
	})

	t.Run("wallet-style recovery id", func(t *testing.T) {
		walletSig := make([]byte, len(sig))
		copy(walletSig, sig)
		walletSig[crypto.RecoveryIDOffset] += 27

		assert.True(t, v.Verify(address, message, hexutil.Encode(walletSig)))
	})

	t.Run("signature from a different key", func(t *testing.T) {
		otherKey, err := crypto.GenerateKey()
		require.NoError(t, err)

		otherSig, err := crypto.Sign(accounts.TextHash([]byte(message)), otherKey)
		require.NoError(t, err)

		assert.False(t, v.Verify(address, message, hexutil.Encode(otherSig)))
	})

	t.Run("tampered message", func(t *testing.T) {
		assert.False(t, v.Verify(address, message+" extra", signature))
	})

	t.Run("malformed signatures", func(t *testing.T) {
		assert.False(t, v.Verify(address, message, "not-hex"))
		assert.False(t, v.Verify(address, message, "0x1234"))
		assert.False(t, v.Verify(address, message, ""))
	})

	t.Run("invalid recovery id", func(t *testing.T) {
		badSig := make([]byte, len(sig))
		copy(badSig, sig)
		badSig[crypto.RecoveryIDOffset] = 9

		assert.False(t, v.Verify(address, message, hexutil.Encode(badSig)))
	})

	t.Run("invalid address", func(t *testing.T) {
		assert.False(t, v.Verify("alice", message, signature))
		assert.False(t, v.Verify("", message, signature))
	})
}
