package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeDenomRoundTrip(t *testing.T) {
	cases := []struct {
		native   string
		decimals int32
	}{
		{"100000000", 8},
		{"1", 8},
		{"0", 8},
		{"123456789012345678", 18},
		{"99000000", 6},
	}

	for _, tc := range cases {
		denom, err := NativeToDenom(tc.native, tc.decimals)
		require.NoError(t, err, "native %s", tc.native)

		back, err := DenomToNative(denom, tc.decimals)
		require.NoError(t, err, "denom %s", denom)
		assert.Equal(t, tc.native, back, "round trip of %s with %d decimals", tc.native, tc.decimals)
	}
}

func TestNativeToDenom(t *testing.T) {
	denom, err := NativeToDenom("100000000", 8)
	require.NoError(t, err)
	assert.Equal(t, "1", denom)

	denom, err = NativeToDenom("150000000", 8)
	require.NoError(t, err)
	assert.Equal(t, "1.5", denom)

	_, err = NativeToDenom("-1", 8)
	assert.Error(t, err)

	_, err = NativeToDenom("not-a-number", 8)
	assert.Error(t, err)
}

func TestDenomToNativeTruncates(t *testing.T) {
	// Fractions below the smallest unit are dropped, not rounded up.
	native, err := DenomToNative("0.000000019", 8)
	require.NoError(t, err)
	assert.Equal(t, "1", native)
}

func TestOfflineWallet(t *testing.T) {
	w := NewOffline("BTC", "wallet-1", 8, AddressSet{
		PublicAddress: "bc1qexample",
		LegacyAddress: "1LegacyExample",
	})

	assert.Equal(t, "BTC", w.CurrencyCode())
	assert.Equal(t, "wallet-1", w.ID())

	addrs, err := w.ReceiveAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bc1qexample", addrs.PublicAddress)
	assert.Equal(t, "1LegacyExample", addrs.LegacyAddress)

	denom, err := w.NativeToDenomination("250000000")
	require.NoError(t, err)
	assert.Equal(t, "2.5", denom)

	native, err := w.DenominationToNative("2.5")
	require.NoError(t, err)
	assert.Equal(t, "250000000", native)
}

func TestOfflineWalletMakeSpend(t *testing.T) {
	w := NewOffline("BTC", "wallet-1", 8, AddressSet{PublicAddress: "bc1qexample"})

	tx, err := w.MakeSpend(context.Background(), SpendInfo{
		TargetAddress: "bc1qdeposit",
		NativeAmount:  "100000000",
		FeeOption:     FeeHigh,
		Metadata:      SwapMetadata{PluginID: "test", OrderID: "ord-1"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.TxID)
	assert.Equal(t, "BTC", tx.CurrencyCode)
	assert.Equal(t, "100000000", tx.NativeAmount)
	assert.Equal(t, "ord-1", tx.Metadata.OrderID)
	assert.False(t, tx.Signed)

	_, err = w.MakeSpend(context.Background(), SpendInfo{NativeAmount: "1"})
	assert.Error(t, err, "empty target address must be rejected")

	_, err = w.MakeSpend(context.Background(), SpendInfo{TargetAddress: "bc1qdeposit", NativeAmount: "oops"})
	assert.Error(t, err, "unparseable amount must be rejected")
}

func TestOfflineWalletNoAddress(t *testing.T) {
	w := NewOffline("BTC", "wallet-1", 8, AddressSet{})
	_, err := w.ReceiveAddress(context.Background())
	assert.Error(t, err)
}
