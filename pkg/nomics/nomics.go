// Package nomics implements the Nomics fiat rate adapter. It prices mixed
// fiat/crypto pairs on a best-effort basis: pairs the service cannot or will
// not price are dropped from the result, never surfaced as errors.
package nomics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"swaprail/pkg/fetch"
	"swaprail/pkg/types"
)

const pluginID = "nomics"

// Options configures the Nomics plugin.
type Options struct {
	APIKey  string
	BaseURL string
	Fetcher fetch.Fetcher
	Logger  zerolog.Logger
}

// Plugin is the Nomics rate adapter.
type Plugin struct {
	apiKey  string
	baseURL string
	fetcher fetch.Fetcher
	log     zerolog.Logger
}

// New creates a Nomics plugin.
func New(opts Options) *Plugin {
	return &Plugin{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		fetcher: opts.Fetcher,
		log:     opts.Logger.With().Str("plugin", pluginID).Logger(),
	}
}

// Info returns the plugin's static identity.
func (p *Plugin) Info() types.SwapInfo {
	return types.SwapInfo{
		PluginID:     pluginID,
		DisplayName:  "Nomics",
		SupportEmail: "support@nomics.com",
	}
}

// tickerEntry is one element of the /currencies/ticker reply.
type tickerEntry struct {
	Price string `json:"price"`
}

// FetchRates prices the subset of pairs where exactly one side is
// fiat-tagged. Failed or rate-limited pairs are skipped; the host falls back
// to other rate sources for them.
func (p *Plugin) FetchRates(ctx context.Context, pairs []types.CurrencyPair) []types.Rate {
	rates := make([]types.Rate, 0, len(pairs))
	for _, pair := range pairs {
		rate, ok := p.fetchRate(ctx, pair)
		if !ok {
			continue
		}
		rates = append(rates, types.Rate{
			FromCurrency: pair.FromCurrency,
			ToCurrency:   pair.ToCurrency,
			Rate:         rate,
		})
	}
	return rates
}

// fetchRate resolves one pair. The crypto side is priced in the fiat side's
// ISO unit; when the fiat side is the FROM currency the price is inverted so
// the rate is always from→to.
func (p *Plugin) fetchRate(ctx context.Context, pair types.CurrencyPair) (float64, bool) {
	fromFiat := types.IsFiat(pair.FromCurrency)
	toFiat := types.IsFiat(pair.ToCurrency)
	if fromFiat == toFiat {
		// Only mixed fiat/crypto pairs are priced by this source.
		return 0, false
	}

	crypto := pair.FromCurrency
	fiat := pair.ToCurrency
	if fromFiat {
		crypto, fiat = pair.ToCurrency, pair.FromCurrency
	}

	query := url.Values{}
	query.Set("key", p.apiKey)
	query.Set("ids", crypto)
	query.Set("convert", types.FiatISO(fiat))
	u := fmt.Sprintf("%s/currencies/ticker?%s", p.baseURL, query.Encode())

	resp, err := fetch.Get(ctx, p.fetcher, u, nil)
	if err != nil {
		p.log.Warn().Err(err).Str("crypto", crypto).Str("fiat", fiat).Msg("rate query failed, skipping pair")
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		// Rate-limited: drop the pair silently, no retry.
		return 0, false
	}
	if resp.StatusCode != http.StatusOK {
		p.log.Warn().Int("status", resp.StatusCode).Str("crypto", crypto).Str("fiat", fiat).Msg("unexpected status, skipping pair")
		return 0, false
	}

	var ticker []tickerEntry
	if err := resp.JSON(&ticker); err != nil {
		p.log.Warn().Err(err).Str("crypto", crypto).Str("fiat", fiat).Msg("malformed rate reply, skipping pair")
		return 0, false
	}
	if len(ticker) == 0 || ticker[0].Price == "" {
		p.log.Warn().Str("crypto", crypto).Str("fiat", fiat).Msg("rate reply has no price, skipping pair")
		return 0, false
	}

	price, err := cast.ToFloat64E(ticker[0].Price)
	if err != nil || price <= 0 {
		p.log.Warn().Str("price", ticker[0].Price).Str("crypto", crypto).Str("fiat", fiat).Msg("unparseable price, skipping pair")
		return 0, false
	}

	if fromFiat {
		return 1 / price, true
	}
	return price, true
}
