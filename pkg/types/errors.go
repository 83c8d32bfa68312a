package types

import "fmt"

// BelowLimitError reports a requested amount under the exchange's minimum.
// NativeMin is the minimum converted to the request wallet's native units.
type BelowLimitError struct {
	CurrencyCode string
	NativeMin    string
}

func (e *BelowLimitError) Error() string {
	return fmt.Sprintf("amount below the exchange minimum of %s %s (native)", e.NativeMin, e.CurrencyCode)
}

// AboveLimitError reports a requested amount over the exchange's maximum.
// NativeMax is the maximum converted to the request wallet's native units.
type AboveLimitError struct {
	CurrencyCode string
	NativeMax    string
}

func (e *AboveLimitError) Error() string {
	return fmt.Sprintf("amount above the exchange maximum of %s %s (native)", e.NativeMax, e.CurrencyCode)
}

// UnsupportedPairError reports a currency pair the exchange does not trade.
type UnsupportedPairError struct {
	FromCurrency string
	ToCurrency   string
}

func (e *UnsupportedPairError) Error() string {
	return fmt.Sprintf("currency pair %s -> %s is not supported", e.FromCurrency, e.ToCurrency)
}

// PermissionDeniedError reports that the exchange refuses service to this
// account or region.
type PermissionDeniedError struct {
	PluginID string
	Reason   string
}

func (e *PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: permission denied", e.PluginID)
	}
	return fmt.Sprintf("%s: permission denied: %s", e.PluginID, e.Reason)
}

// ExchangeError is the catch-all for transport failures and exchange error
// payloads that do not map to a more specific condition.
type ExchangeError struct {
	PluginID   string
	StatusCode int
	Code       string
	Message    string
}

func (e *ExchangeError) Error() string {
	msg := fmt.Sprintf("%s: exchange error", e.PluginID)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}
