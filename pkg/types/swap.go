package types

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"swaprail/pkg/wallet"
)

// Direction says which side of the swap a requested amount applies to.
type Direction string

const (
	QuoteForFrom Direction = "from" // amount is what the user spends
	QuoteForTo   Direction = "to"   // amount is what the user receives
)

// SwapRequest is the host's request for a swap quote. NativeAmount is an
// integer string in the smallest unit of the wallet selected by QuoteFor.
type SwapRequest struct {
	FromWallet       wallet.Wallet
	ToWallet         wallet.Wallet
	FromCurrencyCode string
	ToCurrencyCode   string
	NativeAmount     string
	QuoteFor         Direction
}

// Validate checks the request is internally consistent before any network
// call is made.
func (r *SwapRequest) Validate() error {
	if r.FromWallet == nil || r.ToWallet == nil {
		return fmt.Errorf("swap request requires both wallets")
	}
	if r.FromCurrencyCode == "" || r.ToCurrencyCode == "" {
		return fmt.Errorf("swap request requires both currency codes")
	}
	if r.QuoteFor != QuoteForFrom && r.QuoteFor != QuoteForTo {
		return fmt.Errorf("quoteFor must be %q or %q, got %q", QuoteForFrom, QuoteForTo, r.QuoteFor)
	}
	amt, err := decimal.NewFromString(r.NativeAmount)
	if err != nil {
		return fmt.Errorf("invalid native amount %q: %w", r.NativeAmount, err)
	}
	if amt.IsNegative() {
		return fmt.Errorf("native amount must not be negative, got %q", r.NativeAmount)
	}
	return nil
}

// AmountWallet returns the wallet whose denomination the requested native
// amount is expressed in.
func (r *SwapRequest) AmountWallet() wallet.Wallet {
	if r.QuoteFor == QuoteForTo {
		return r.ToWallet
	}
	return r.FromWallet
}

// Quote is the normalized result of a swap request. Amounts are native
// integer units of the respective wallets.
type Quote struct {
	FromNativeAmount   string
	ToNativeAmount     string
	FundingTx          *wallet.Transaction
	DestinationAddress string
	PluginID           string
	OrderID            string
	IsEstimate         bool
	Expiration         time.Time
}

// CurrencyPair is one candidate pair for a rate plugin. Fiat codes carry the
// "iso:" prefix, e.g. "iso:USD"; crypto codes are bare, e.g. "BTC".
type CurrencyPair struct {
	FromCurrency string
	ToCurrency   string
}

// FiatPrefix marks the fiat side of a currency pair.
const FiatPrefix = "iso:"

// IsFiat reports whether a currency code is fiat-tagged.
func IsFiat(code string) bool {
	return strings.HasPrefix(code, FiatPrefix)
}

// FiatISO strips the fiat prefix, returning the bare ISO 4217 code.
func FiatISO(code string) string {
	return strings.TrimPrefix(code, FiatPrefix)
}

// Rate is one resolved exchange rate, in from→to direction.
type Rate struct {
	FromCurrency string
	ToCurrency   string
	Rate         float64
}

// SwapInfo is the static identity a plugin reports to the host.
type SwapInfo struct {
	PluginID     string
	DisplayName  string
	SupportEmail string
}

// SwapPlugin translates swap requests into one exchange's REST API.
type SwapPlugin interface {
	Info() SwapInfo
	FetchSwapQuote(ctx context.Context, req SwapRequest) (*Quote, error)
}

// RatePlugin prices currency pairs from one source. FetchRates never fails:
// pairs the source cannot price are omitted from the result.
type RatePlugin interface {
	Info() SwapInfo
	FetchRates(ctx context.Context, pairs []CurrencyPair) []Rate
}
