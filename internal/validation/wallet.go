// Package validation holds input validation shared by services and handlers.
package validation

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidWallet = errors.New("invalid wallet address")

// NormalizeWallet validates a wallet address and returns its canonical
// lower-cased form. All storage and lookups use the normalized form so
// the same wallet never maps to two users.
func NormalizeWallet(wallet string) (string, error) {
	wallet = strings.TrimSpace(wallet)
	if !common.IsHexAddress(wallet) {
		return "", ErrInvalidWallet
	}
	return strings.ToLower(common.HexToAddress(wallet).Hex()), nil
}
