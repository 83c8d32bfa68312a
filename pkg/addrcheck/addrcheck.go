// Package addrcheck validates exchange-supplied deposit addresses before a
// wallet spends funds to them. Swaps are irreversible, so a malformed
// address from a remote service must be caught before MakeSpend.
package addrcheck

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// evmCodes are currencies whose addresses are EVM hex addresses.
var evmCodes = map[string]bool{
	"ETH":   true,
	"ETC":   true,
	"BNB":   true,
	"MATIC": true,
	"AVAX":  true,
	"USDT":  true,
	"USDC":  true,
	"DAI":   true,
}

// Validate checks that address is plausible for the given currency code.
// Codes without a chain-specific rule only get a non-empty check.
func Validate(currencyCode, address string) error {
	if address == "" {
		return fmt.Errorf("%s: empty address", currencyCode)
	}
	switch {
	case evmCodes[currencyCode]:
		if !common.IsHexAddress(address) {
			return fmt.Errorf("%s: %q is not a valid EVM address", currencyCode, address)
		}
	case currencyCode == "SOL":
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("%s: %q is not a valid Solana address: %w", currencyCode, address, err)
		}
	}
	return nil
}
