// Package coinswitch implements the CoinSwitch swap adapter. It tries a
// fixed-rate offer first and falls back to a floating-rate estimate when the
// fixed path fails.
package coinswitch

import (
	"context"
	"encoding/json"
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

const (
	pluginID = "coinswitch"

	orderTrackingURL = "https://coinswitch.co/app/exchange/transaction/"

	fixedQuoteTTL    = 5 * time.Minute
	estimateQuoteTTL = 15 * time.Minute
)

// legacyDenylist holds currencies whose legacy address format is
// non-standard; for these the default public address is used instead.
var legacyDenylist = map[string]bool{
	"DGB": true,
}

// Options configures the CoinSwitch plugin.
type Options struct {
	APIKey  string
	UserIP  string
	BaseURL string
	Fetcher fetch.Fetcher
	Logger  zerolog.Logger
}

// Plugin is the CoinSwitch swap adapter.
type Plugin struct {
	apiKey  string
	userIP  string
	baseURL string
	fetcher fetch.Fetcher
	log     zerolog.Logger
}

// New creates a CoinSwitch plugin.
func New(opts Options) *Plugin {
	return &Plugin{
		apiKey:  opts.APIKey,
		userIP:  opts.UserIP,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		fetcher: opts.Fetcher,
		log:     opts.Logger.With().Str("plugin", pluginID).Logger(),
	}
}

// Info returns the plugin's static identity.
func (p *Plugin) Info() types.SwapInfo {
	return types.SwapInfo{
		PluginID:     pluginID,
		DisplayName:  "CoinSwitch",
		SupportEmail: "support@coinswitch.co",
	}
}

// addresses holds the selected deposit-side and payout-side addresses for
// one request.
type addresses struct {
	refund string
	payout string
}

type estimateResult struct {
	quote *types.Quote
	err   error
}

// FetchSwapQuote tries a fixed-rate quote first. The floating-rate estimate
// is started concurrently so the fallback costs no extra latency; its result
// is only awaited when the fixed path fails.
func (p *Plugin) FetchSwapQuote(ctx context.Context, req types.SwapRequest) (*types.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	addrs, err := p.fetchAddresses(ctx, req)
	if err != nil {
		return nil, err
	}

	estCh := make(chan estimateResult, 1)
	go func() {
		quote, err := p.fetchEstimateQuote(ctx, req, addrs)
		estCh <- estimateResult{quote: quote, err: err}
	}()

	quote, err := p.fetchFixedQuote(ctx, req, addrs)
	if err == nil {
		return quote, nil
	}
	p.log.Debug().Err(err).Msg("fixed-rate quote failed, falling back to estimate")

	res := <-estCh
	if res.err != nil {
		return nil, res.err
	}
	return res.quote, nil
}

// fetchAddresses fetches both wallets' receive addresses concurrently and
// applies the legacy-address selection rule.
func (p *Plugin) fetchAddresses(ctx context.Context, req types.SwapRequest) (addresses, error) {
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
		return addresses{}, fmt.Errorf("fetch receive addresses: %w", err)
	}
	return addresses{
		refund: selectAddress(req.FromCurrencyCode, fromAddr),
		payout: selectAddress(req.ToCurrencyCode, toAddr),
	}, nil
}

// selectAddress prefers a wallet's legacy address, which CoinSwitch handles
// for every currency except those on the denylist.
func selectAddress(currencyCode string, addrs wallet.AddressSet) string {
	if addrs.LegacyAddress != "" && !legacyDenylist[currencyCode] {
		return addrs.LegacyAddress
	}
	return addrs.PublicAddress
}

// fetchFixedQuote runs the fixed-rate path: offer and deposit limits are
// requested concurrently, the amount is validated against the limits, and a
// fixed order is created.
func (p *Plugin) fetchFixedQuote(ctx context.Context, req types.SwapRequest, addrs addresses) (*types.Quote, error) {
	denomAmount, err := req.AmountWallet().NativeToDenomination(req.NativeAmount)
	if err != nil {
		return nil, fmt.Errorf("convert request amount: %w", err)
	}

	depositCoin := strings.ToLower(req.FromCurrencyCode)
	destinationCoin := strings.ToLower(req.ToCurrencyCode)

	offerReq := offerRequest{DepositCoin: depositCoin, DestinationCoin: destinationCoin}
	if req.QuoteFor == types.QuoteForTo {
		offerReq.DestinationCoinAmount = denomAmount
	} else {
		offerReq.DepositCoinAmount = denomAmount
	}

	var (
		offer  offerReply
		limits []pairLimits
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.call(gctx, "/fixed/offer", offerReq, &req, &offer)
	})
	g.Go(func() error {
		return p.call(gctx, "/fixed/pairs", pairsRequest{DepositCoin: depositCoin, DestinationCoin: destinationCoin}, &req, &limits)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(limits) == 0 {
		return nil, &types.UnsupportedPairError{FromCurrency: req.FromCurrencyCode, ToCurrency: req.ToCurrencyCode}
	}

	if err := p.validateLimits(req, offer.DepositCoinAmount.String(), limits[0].LimitMinDepositCoin.String(), limits[0].LimitMaxDepositCoin.String()); err != nil {
		return nil, err
	}

	var order orderReply
	err = p.call(ctx, "/fixed/order", fixedOrderRequest{
		OfferReferenceID:   offer.OfferReferenceID,
		DestinationAddress: coinAddress{Address: addrs.payout},
		RefundAddress:      coinAddress{Address: addrs.refund},
	}, &req, &order)
	if err != nil {
		return nil, err
	}

	return p.buildQuote(ctx, req, addrs, &order, false, time.Now().Add(fixedQuoteTTL))
}

// fetchEstimateQuote runs the floating-rate path: the pair's live rate and
// miner fee produce the expected destination amount, and a floating order is
// created.
func (p *Plugin) fetchEstimateQuote(ctx context.Context, req types.SwapRequest, addrs addresses) (*types.Quote, error) {
	denomAmount, err := req.AmountWallet().NativeToDenomination(req.NativeAmount)
	if err != nil {
		return nil, fmt.Errorf("convert request amount: %w", err)
	}
	amount, err := decimal.NewFromString(denomAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid denominated amount %q: %w", denomAmount, err)
	}

	depositCoin := strings.ToLower(req.FromCurrencyCode)
	destinationCoin := strings.ToLower(req.ToCurrencyCode)

	var rateData rateReply
	err = p.call(ctx, "/rate", pairsRequest{DepositCoin: depositCoin, DestinationCoin: destinationCoin}, &req, &rateData)
	if err != nil {
		return nil, err
	}

	rate, err := decimal.NewFromString(rateData.Rate.String())
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rateData.Rate, err)
	}
	if rate.IsZero() {
		return nil, &types.UnsupportedPairError{FromCurrency: req.FromCurrencyCode, ToCurrency: req.ToCurrencyCode}
	}
	minerFee, err := decimal.NewFromString(rateData.MinerFee.String())
	if err != nil {
		return nil, fmt.Errorf("invalid miner fee %q: %w", rateData.MinerFee, err)
	}

	// exchangeAmount = rate*deposit - minerFee when quoting the deposit
	// side; the inverse solves for the deposit when the destination side is
	// fixed.
	var depositAmount, destinationAmount decimal.Decimal
	if req.QuoteFor == types.QuoteForTo {
		destinationAmount = amount
		depositAmount = destinationAmount.Add(minerFee).Div(rate).Round(8)
	} else {
		depositAmount = amount
		destinationAmount = rate.Mul(depositAmount).Sub(minerFee)
	}
	if err := p.validateLimits(req, depositAmount.String(), rateData.LimitMinDepositCoin.String(), rateData.LimitMaxDepositCoin.String()); err != nil {
		return nil, err
	}
	if !destinationAmount.IsPositive() {
		return nil, fmt.Errorf("amount %s %s is not enough to cover the miner fee", denomAmount, req.FromCurrencyCode)
	}

	var order orderReply
	err = p.call(ctx, "/order", floatingOrderRequest{
		DepositCoin:        depositCoin,
		DestinationCoin:    destinationCoin,
		DepositCoinAmount:  depositAmount.String(),
		DestinationAddress: coinAddress{Address: addrs.payout},
		RefundAddress:      coinAddress{Address: addrs.refund},
	}, &req, &order)
	if err != nil {
		return nil, err
	}

	// Floating orders do not always echo the expected amounts back; fall
	// back to the locally computed values.
	if order.ExpectedDepositCoinAmount.String() == "" {
		order.ExpectedDepositCoinAmount = json.Number(depositAmount.String())
	}
	if order.ExpectedDestinationCoinAmount.String() == "" {
		order.ExpectedDestinationCoinAmount = json.Number(destinationAmount.String())
	}

	return p.buildQuote(ctx, req, addrs, &order, true, time.Now().Add(estimateQuoteTTL))
}

// buildQuote converts the order's expected amounts to native units, builds
// the funding transaction and packages the normalized quote.
func (p *Plugin) buildQuote(ctx context.Context, req types.SwapRequest, addrs addresses, order *orderReply, isEstimate bool, expiration time.Time) (*types.Quote, error) {
	if order.OrderID == "" || order.ExchangeAddress.Address == "" {
		return nil, &types.ExchangeError{PluginID: pluginID, Message: "order reply missing id or exchange address"}
	}

	fromNative, err := req.FromWallet.DenominationToNative(order.ExpectedDepositCoinAmount.String())
	if err != nil {
		return nil, fmt.Errorf("convert deposit amount: %w", err)
	}
	toNative, err := req.ToWallet.DenominationToNative(order.ExpectedDestinationCoinAmount.String())
	if err != nil {
		return nil, fmt.Errorf("convert destination amount: %w", err)
	}

	if err := addrcheck.Validate(req.FromCurrencyCode, order.ExchangeAddress.Address); err != nil {
		return nil, fmt.Errorf("exchange deposit address: %w", err)
	}

	feeOption := wallet.FeeStandard
	if req.FromCurrencyCode == "BTC" {
		feeOption = wallet.FeeHigh
	}

	tx, err := req.FromWallet.MakeSpend(ctx, wallet.SpendInfo{
		TargetAddress: order.ExchangeAddress.Address,
		NativeAmount:  fromNative,
		FeeOption:     feeOption,
		Metadata: wallet.SwapMetadata{
			PluginID:           pluginID,
			OrderID:            order.OrderID,
			OrderURI:           orderTrackingURL + order.OrderID,
			IsEstimate:         isEstimate,
			PayoutAddress:      addrs.payout,
			PayoutCurrencyCode: req.ToCurrencyCode,
			PayoutNativeAmount: toNative,
			PayoutWalletID:     req.ToWallet.ID(),
			RefundAddress:      addrs.refund,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build funding transaction: %w", err)
	}

	return &types.Quote{
		FromNativeAmount:   fromNative,
		ToNativeAmount:     toNative,
		FundingTx:          tx,
		DestinationAddress: order.ExchangeAddress.Address,
		PluginID:           pluginID,
		OrderID:            order.OrderID,
		IsEstimate:         isEstimate,
		Expiration:         expiration,
	}, nil
}

// validateLimits checks a deposit-side denominated amount against the pair's
// limits, converting the violated bound to the source wallet's native units.
func (p *Plugin) validateLimits(req types.SwapRequest, depositAmount, limitMin, limitMax string) error {
	amount, err := decimal.NewFromString(depositAmount)
	if err != nil {
		return fmt.Errorf("invalid deposit amount %q: %w", depositAmount, err)
	}

	if limitMin != "" {
		min, err := decimal.NewFromString(limitMin)
		if err != nil {
			return fmt.Errorf("invalid pair minimum %q: %w", limitMin, err)
		}
		if amount.LessThan(min) {
			nativeMin, err := req.FromWallet.DenominationToNative(limitMin)
			if err != nil {
				return fmt.Errorf("convert pair minimum: %w", err)
			}
			return &types.BelowLimitError{CurrencyCode: req.FromCurrencyCode, NativeMin: nativeMin}
		}
	}

	if limitMax != "" {
		max, err := decimal.NewFromString(limitMax)
		if err != nil {
			return fmt.Errorf("invalid pair maximum %q: %w", limitMax, err)
		}
		if max.IsPositive() && amount.GreaterThan(max) {
			nativeMax, err := req.FromWallet.DenominationToNative(limitMax)
			if err != nil {
				return fmt.Errorf("convert pair maximum: %w", err)
			}
			return &types.AboveLimitError{CurrencyCode: req.FromCurrencyCode, NativeMax: nativeMax}
		}
	}

	return nil
}
