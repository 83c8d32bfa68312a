package wallet

import (
	"context"
	"time"
)

// FeeOption selects the fee priority for a funding transaction.
type FeeOption string

const (
	FeeStandard FeeOption = "standard"
	FeeHigh     FeeOption = "high"
)

// AddressSet holds the address formats a wallet can receive on. Not every
// currency has a legacy or segwit form; empty fields mean the format does
// not exist for that wallet.
type AddressSet struct {
	PublicAddress string
	LegacyAddress string
	SegwitAddress string
}

// SwapMetadata tags a funding transaction with the swap it pays for, so the
// host wallet can track the order and attribute the payout.
type SwapMetadata struct {
	PluginID           string
	OrderID            string
	OrderURI           string
	IsEstimate         bool
	PayoutAddress      string
	PayoutCurrencyCode string
	PayoutNativeAmount string
	PayoutWalletID     string
	RefundAddress      string
}

// SpendInfo describes the funding transaction an adapter asks a wallet to build.
type SpendInfo struct {
	TargetAddress string
	NativeAmount  string
	FeeOption     FeeOption
	Metadata      SwapMetadata
}

// Transaction is the record a wallet returns for a built funding transaction.
// The adapters treat it as opaque and pass it through to the caller.
type Transaction struct {
	TxID         string
	CurrencyCode string
	NativeAmount string
	Date         time.Time
	Metadata     SwapMetadata
	Signed       bool
}

// Wallet is the per-currency capability the host injects into an adapter.
// Implementations convert between native integer units and the human
// denomination, hand out receive addresses, and build funding transactions.
type Wallet interface {
	// CurrencyCode returns the wallet's currency code, e.g. "BTC".
	CurrencyCode() string

	// ID returns the host's identifier for this wallet.
	ID() string

	// ReceiveAddress returns the wallet's current receive addresses.
	ReceiveAddress(ctx context.Context) (AddressSet, error)

	// NativeToDenomination converts a native integer amount (smallest unit)
	// to the human denomination, e.g. 100000000 satoshi -> "1".
	NativeToDenomination(nativeAmount string) (string, error)

	// DenominationToNative converts a denominated amount to the native
	// integer unit, e.g. "1.5" BTC -> 150000000 satoshi.
	DenominationToNative(amount string) (string, error)

	// MakeSpend builds (and, if the wallet can, signs) a funding transaction.
	MakeSpend(ctx context.Context, spend SpendInfo) (*Transaction, error)
}
