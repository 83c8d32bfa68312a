// Package sideshift implements the SideShift fixed-rate swap adapter.
package sideshift

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"swaprail/pkg/addrcheck"
	"swaprail/pkg/fetch"
	"swaprail/pkg/types"
	"swaprail/pkg/wallet"
)

const pluginID = "sideshift"

// codeTranscription maps wallet currency codes to SideShift method ids where
// the lowercase form is not enough.
var codeTranscription = map[string]string{
	"USDT": "usdtErc20",
	"USDC": "usdcErc20",
}

// methodID converts a wallet currency code to SideShift's method identifier.
func methodID(currencyCode string) string {
	if id, ok := codeTranscription[currencyCode]; ok {
		return id
	}
	return strings.ToLower(currencyCode)
}

// Options configures the SideShift plugin.
type Options struct {
	AffiliateID string
	BaseURL     string
	Fetcher     fetch.Fetcher
	Logger      zerolog.Logger
}

// Plugin is the SideShift swap adapter.
type Plugin struct {
	affiliateID string
	baseURL     string
	fetcher     fetch.Fetcher
	log         zerolog.Logger
}

// New creates a SideShift plugin.
func New(opts Options) *Plugin {
	return &Plugin{
		affiliateID: opts.AffiliateID,
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		fetcher:     opts.Fetcher,
		log:         opts.Logger.With().Str("plugin", pluginID).Logger(),
	}
}

// Info returns the plugin's static identity.
func (p *Plugin) Info() types.SwapInfo {
	return types.SwapInfo{
		PluginID:     pluginID,
		DisplayName:  "SideShift.ai",
		SupportEmail: "help@sideshift.ai",
	}
}

// FetchSwapQuote requests a fixed-rate quote and order from SideShift and
// builds the funding transaction on the source wallet.
func (p *Plugin) FetchSwapQuote(ctx context.Context, req types.SwapRequest) (*types.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	perms, err := p.fetchPermissions(ctx)
	if err != nil {
		return nil, err
	}
	if !perms.CreateOrder || !perms.CreateQuote {
		return nil, &types.PermissionDeniedError{PluginID: pluginID, Reason: "order creation is not available in your region"}
	}

	var fromAddr, toAddr wallet.AddressSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromAddr, err = req.FromWallet.ReceiveAddress(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		toAddr, err = req.ToWallet.ReceiveAddress(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch receive addresses: %w", err)
	}

	depositMethod := methodID(req.FromCurrencyCode)
	settleMethod := methodID(req.ToCurrencyCode)

	pair, err := p.fetchPair(ctx, depositMethod, settleMethod)
	if err != nil {
		return nil, err
	}
	if pair.Error != nil {
		return nil, &types.UnsupportedPairError{
			FromCurrency: req.FromCurrencyCode,
			ToCurrency:   req.ToCurrencyCode,
		}
	}

	depositAmount, err := p.depositAmount(req, pair)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("depositMethod", depositMethod).
		Str("settleMethod", settleMethod).
		Str("depositAmount", depositAmount).
		Msg("requesting fixed quote")

	quote, err := p.postQuote(ctx, quoteRequest{
		DepositMethod: depositMethod,
		SettleMethod:  settleMethod,
		DepositAmount: depositAmount,
		AffiliateID:   p.affiliateID,
	})
	if err != nil {
		return nil, err
	}
	if quote.Error != nil {
		return nil, p.quoteError(quote.Error, req, pair)
	}

	order, err := p.postOrder(ctx, orderRequest{
		Type:          "fixed",
		QuoteID:       quote.ID,
		AffiliateID:   p.affiliateID,
		SettleAddress: toAddr.PublicAddress,
		RefundAddress: fromAddr.PublicAddress,
	})
	if err != nil {
		return nil, err
	}

	fromNative, err := req.FromWallet.DenominationToNative(firstNonEmpty(order.DepositAmount, quote.DepositAmount))
	if err != nil {
		return nil, fmt.Errorf("convert deposit amount: %w", err)
	}
	toNative, err := req.ToWallet.DenominationToNative(firstNonEmpty(order.SettleAmount, quote.SettleAmount))
	if err != nil {
		return nil, fmt.Errorf("convert settle amount: %w", err)
	}

	if err := addrcheck.Validate(req.FromCurrencyCode, order.DepositAddress.Address); err != nil {
		return nil, fmt.Errorf("exchange deposit address: %w", err)
	}

	tx, err := req.FromWallet.MakeSpend(ctx, wallet.SpendInfo{
		TargetAddress: order.DepositAddress.Address,
		NativeAmount:  fromNative,
		FeeOption:     wallet.FeeStandard,
		Metadata: wallet.SwapMetadata{
			PluginID:           pluginID,
			OrderID:            order.ID,
			PayoutAddress:      toAddr.PublicAddress,
			PayoutCurrencyCode: req.ToCurrencyCode,
			PayoutNativeAmount: toNative,
			PayoutWalletID:     req.ToWallet.ID(),
			RefundAddress:      fromAddr.PublicAddress,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build funding transaction: %w", err)
	}

	expiration, err := time.Parse(time.RFC3339, order.ExpiresAtISO)
	if err != nil {
		return nil, fmt.Errorf("parse order expiration %q: %w", order.ExpiresAtISO, err)
	}

	return &types.Quote{
		FromNativeAmount:   fromNative,
		ToNativeAmount:     toNative,
		FundingTx:          tx,
		DestinationAddress: order.DepositAddress.Address,
		PluginID:           pluginID,
		OrderID:            order.ID,
		IsEstimate:         false,
		Expiration:         expiration,
	}, nil
}

// depositAmount converts the requested native amount into the deposit-side
// denomination SideShift quotes in. Destination-side requests are converted
// through the pair rate, rounded to 8 decimal places.
func (p *Plugin) depositAmount(req types.SwapRequest, pair *pairReply) (string, error) {
	denomAmount, err := req.AmountWallet().NativeToDenomination(req.NativeAmount)
	if err != nil {
		return "", fmt.Errorf("convert request amount: %w", err)
	}
	amount, err := decimal.NewFromString(denomAmount)
	if err != nil {
		return "", fmt.Errorf("invalid denominated amount %q: %w", denomAmount, err)
	}

	if req.QuoteFor == types.QuoteForTo {
		rate, err := decimal.NewFromString(pair.Rate)
		if err != nil {
			return "", fmt.Errorf("invalid pair rate %q: %w", pair.Rate, err)
		}
		if rate.IsZero() {
			return "", &types.UnsupportedPairError{FromCurrency: req.FromCurrencyCode, ToCurrency: req.ToCurrencyCode}
		}
		amount = amount.Div(rate).Round(8)
	}

	return amount.StringFixed(8), nil
}

// quoteError translates SideShift's quote error payload into a typed error,
// converting the pair limits to the source wallet's native units.
func (p *Plugin) quoteError(apiErr *apiError, req types.SwapRequest, pair *pairReply) error {
	switch {
	case strings.Contains(apiErr.Message, "Amount too low"):
		nativeMin, err := req.FromWallet.DenominationToNative(pair.Min)
		if err != nil {
			return fmt.Errorf("convert pair minimum: %w", err)
		}
		return &types.BelowLimitError{CurrencyCode: req.FromCurrencyCode, NativeMin: nativeMin}
	case strings.Contains(apiErr.Message, "Amount too high"):
		nativeMax, err := req.FromWallet.DenominationToNative(pair.Max)
		if err != nil {
			return fmt.Errorf("convert pair maximum: %w", err)
		}
		return &types.AboveLimitError{CurrencyCode: req.FromCurrencyCode, NativeMax: nativeMax}
	default:
		return &types.ExchangeError{PluginID: pluginID, Message: apiErr.Message}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
