package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Offline is a Wallet backed by a fixed address set instead of a live node.
// It performs exact denomination math and returns unsigned transaction
// records, which makes it useful for the CLI and for exercising adapters in
// tests. The host framework substitutes its own wallets in production.
type Offline struct {
	currencyCode string
	walletID     string
	decimals     int32
	addresses    AddressSet
}

// NewOffline creates an offline wallet for a currency with the given number
// of decimal places in its denomination.
func NewOffline(currencyCode, walletID string, decimals int32, addresses AddressSet) *Offline {
	return &Offline{
		currencyCode: currencyCode,
		walletID:     walletID,
		decimals:     decimals,
		addresses:    addresses,
	}
}

// CurrencyCode returns the wallet's currency code.
func (w *Offline) CurrencyCode() string { return w.currencyCode }

// ID returns the wallet's identifier.
func (w *Offline) ID() string { return w.walletID }

// ReceiveAddress returns the configured address set.
func (w *Offline) ReceiveAddress(ctx context.Context) (AddressSet, error) {
	if w.addresses.PublicAddress == "" {
		return AddressSet{}, fmt.Errorf("wallet %s has no receive address configured", w.currencyCode)
	}
	return w.addresses, nil
}

// NativeToDenomination converts a native amount to the denominated form.
func (w *Offline) NativeToDenomination(nativeAmount string) (string, error) {
	return NativeToDenom(nativeAmount, w.decimals)
}

// DenominationToNative converts a denominated amount to native units.
func (w *Offline) DenominationToNative(amount string) (string, error) {
	return DenomToNative(amount, w.decimals)
}

// MakeSpend builds an unsigned transaction record. Offline wallets hold no
// keys, so the record carries Signed=false and the host must sign it before
// broadcast.
func (w *Offline) MakeSpend(ctx context.Context, spend SpendInfo) (*Transaction, error) {
	if spend.TargetAddress == "" {
		return nil, fmt.Errorf("spend target address is empty")
	}
	if _, err := NativeToDenom(spend.NativeAmount, w.decimals); err != nil {
		return nil, fmt.Errorf("spend amount: %w", err)
	}
	return &Transaction{
		TxID:         uuid.NewString(),
		CurrencyCode: w.currencyCode,
		NativeAmount: spend.NativeAmount,
		Date:         time.Now(),
		Metadata:     spend.Metadata,
		Signed:       false,
	}, nil
}
