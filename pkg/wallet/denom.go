package wallet

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeToDenom converts a native integer amount to its denominated form
// given the currency's decimal places. The conversion is a pure decimal
// shift, so it is exact.
func NativeToDenom(nativeAmount string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(nativeAmount)
	if err != nil {
		return "", fmt.Errorf("invalid native amount %q: %w", nativeAmount, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("negative native amount %q", nativeAmount)
	}
	return d.Shift(-decimals).String(), nil
}

// DenomToNative converts a denominated amount to the native integer unit.
// Fractions below the smallest unit are truncated.
func DenomToNative(amount string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("negative amount %q", amount)
	}
	return d.Shift(decimals).Truncate(0).String(), nil
}
