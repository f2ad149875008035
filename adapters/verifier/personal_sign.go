package verifier

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainmall/authgate/ports"
)

// PersonalSign verifies signatures produced with the standard
// personal-message scheme (EIP-191, the `personal_sign` RPC): the signer
// address is recovered from the prefixed message hash and compared
// case-insensitively to the claimed one. No network or storage access.
type PersonalSign struct{}

func NewPersonalSign() ports.Verifier {
	return PersonalSign{}
}

// Verify reports whether signature over message was produced by address.
// Malformed input and recovery failures are ordinary negative outcomes,
// never errors.
func (PersonalSign) Verify(address, message, signature string) bool {
	if !common.IsHexAddress(address) {
		return false
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}

	// Wallets encode the recovery id as 27/28, libsecp256k1 wants 0/1
	recovery := make([]byte, crypto.SignatureLength)
	copy(recovery, sig)
	if recovery[crypto.RecoveryIDOffset] >= 27 {
		recovery[crypto.RecoveryIDOffset] -= 27
	}
	if recovery[crypto.RecoveryIDOffset] > 1 {
		return false
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), recovery)
	if err != nil {
		return false
	}

	recovered := crypto.PubkeyToAddress(*pub)
	return strings.EqualFold(recovered.Hex(), address)
}
