package bridge

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// signChallenge signs message with key using the same EIP-191 personal_sign
// prefix auth.VerifyEIP191Signature expects, returning a 0x-hex signature.
func signChallenge(key string, message string) (string, error) {
	privKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return "", err
	}
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := crypto.Keccak256Hash([]byte(prefixed))
	sig, err := crypto.Sign(hash.Bytes(), privKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%x", sig), nil
}
