package sideshift

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swaprail/pkg/fetch"
	"swaprail/pkg/types"
	"swaprail/pkg/wallet"
)

const testBaseURL = "https://sideshift.test/api/v1"

// stubFetcher records every outbound request and answers from a handler.
type stubFetcher struct {
	mu       sync.Mutex
	requests []fetch.Request
	handler  func(req fetch.Request) (*fetch.Response, error)
}

func (s *stubFetcher) Fetch(ctx context.Context, req fetch.Request) (*fetch.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.handler(req)
}

func (s *stubFetcher) requestTo(t *testing.T, method, pathSuffix string) fetch.Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.Method == method && strings.HasSuffix(req.URL, pathSuffix) {
			return req
		}
	}
	t.Fatalf("no recorded %s request ending in %s", method, pathSuffix)
	return fetch.Request{}
}

func jsonResponse(status int, body string) (*fetch.Response, error) {
	return &fetch.Response{StatusCode: status, Body: []byte(body)}, nil
}

// happyHandler answers the full fixed-quote flow for a BTC -> ETH swap with
// rate 0.05, min 0.001 and max 10.
func happyHandler(req fetch.Request) (*fetch.Response, error) {
	switch {
	case strings.Contains(req.URL, "/permissions"):
		return jsonResponse(http.StatusOK, `{"createOrder":true,"createQuote":true}`)
	case strings.Contains(req.URL, "/pairs/"):
		return jsonResponse(http.StatusOK, `{"rate":"0.05","min":"0.001","max":"10"}`)
	case strings.Contains(req.URL, "/quotes"):
		return jsonResponse(http.StatusOK, `{"id":"quote-1","rate":"0.05","depositAmount":"1","settleAmount":"0.05","expiresAtISO":"2030-01-02T15:04:05Z"}`)
	case strings.Contains(req.URL, "/orders"):
		return jsonResponse(http.StatusOK, `{
			"id":"order-1",
			"expiresAtISO":"2030-01-02T15:04:05Z",
			"depositAddress":{"address":"1ExchangeDeposit"},
			"settleAddress":{"address":"0x32Be343B94f860124dC4fEe278FDCBD38C102D88"},
			"depositAmount":"1",
			"settleAmount":"0.05"
		}`)
	}
	return jsonResponse(http.StatusNotFound, `{}`)
}

func newTestPlugin(f *stubFetcher) *Plugin {
	return New(Options{
		AffiliateID: "affiliate-1",
		BaseURL:     testBaseURL,
		Fetcher:     f,
		Logger:      zerolog.Nop(),
	})
}

func btcToEthRequest() types.SwapRequest {
	return types.SwapRequest{
		FromWallet: wallet.NewOffline("BTC", "btc-wallet", 8, wallet.AddressSet{
			PublicAddress: "bc1qrefund",
			LegacyAddress: "1LegacyRefund",
		}),
		ToWallet: wallet.NewOffline("ETH", "eth-wallet", 18, wallet.AddressSet{
			PublicAddress: "0x32Be343B94f860124dC4fEe278FDCBD38C102D88",
		}),
		FromCurrencyCode: "BTC",
		ToCurrencyCode:   "ETH",
		NativeAmount:     "100000000",
		QuoteFor:         types.QuoteForFrom,
	}
}

func TestFetchSwapQuoteEndToEnd(t *testing.T) {
	f := &stubFetcher{handler: happyHandler}
	p := newTestPlugin(f)

	quote, err := p.FetchSwapQuote(context.Background(), btcToEthRequest())
	require.NoError(t, err)

	// 1 BTC in, 0.05 ETH out, both in native units.
	assert.Equal(t, "100000000", quote.FromNativeAmount)
	assert.Equal(t, "50000000000000000", quote.ToNativeAmount)
	assert.Equal(t, "1ExchangeDeposit", quote.DestinationAddress)
	assert.Equal(t, "order-1", quote.OrderID)
	assert.Equal(t, pluginID, quote.PluginID)
	assert.False(t, quote.IsEstimate)

	wantExpiry, _ := time.Parse(time.RFC3339, "2030-01-02T15:04:05Z")
	assert.True(t, quote.Expiration.Equal(wantExpiry), "expiration must equal the order's expiresAtISO")

	// The posted quote request mirrors SideShift's wire shape.
	quoteReq := f.requestTo(t, http.MethodPost, "/quotes")
	var body map[string]string
	require.NoError(t, json.Unmarshal(quoteReq.Body, &body))
	assert.Equal(t, "btc", body["depositMethod"])
	assert.Equal(t, "eth", body["settleMethod"])
	assert.Equal(t, "1.00000000", body["depositAmount"])
	assert.Equal(t, "affiliate-1", body["affiliateId"])

	// Funding transaction tagged with the swap metadata.
	require.NotNil(t, quote.FundingTx)
	meta := quote.FundingTx.Metadata
	assert.Equal(t, "order-1", meta.OrderID)
	assert.Equal(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88", meta.PayoutAddress)
	assert.Equal(t, "ETH", meta.PayoutCurrencyCode)
	assert.Equal(t, "50000000000000000", meta.PayoutNativeAmount)
	assert.Equal(t, "eth-wallet", meta.PayoutWalletID)
	assert.Equal(t, "bc1qrefund", meta.RefundAddress)
}

func TestCurrencyTranscription(t *testing.T) {
	f := &stubFetcher{handler: func(req fetch.Request) (*fetch.Response, error) {
		if strings.Contains(req.URL, "/orders") {
			return jsonResponse(http.StatusOK, `{
				"id":"order-2",
				"expiresAtISO":"2030-01-02T15:04:05Z",
				"depositAddress":{"address":"0x32Be343B94f860124dC4fEe278FDCBD38C102D88"},
				"settleAddress":{"address":"bc1qpayout"},
				"depositAmount":"100",
				"settleAmount":"0.002"
			}`)
		}
		return happyHandler(req)
	}}
	p := newTestPlugin(f)

	req := types.SwapRequest{
		FromWallet:       wallet.NewOffline("USDT", "usdt-wallet", 6, wallet.AddressSet{PublicAddress: "0x32Be343B94f860124dC4fEe278FDCBD38C102D88"}),
		ToWallet:         wallet.NewOffline("BTC", "btc-wallet", 8, wallet.AddressSet{PublicAddress: "bc1qpayout"}),
		FromCurrencyCode: "USDT",
		ToCurrencyCode:   "BTC",
		NativeAmount:     "100000000",
		QuoteFor:         types.QuoteForFrom,
	}

	_, err := p.FetchSwapQuote(context.Background(), req)
	require.NoError(t, err)

	pairReq := f.requestTo(t, http.MethodGet, "/pairs/usdtErc20/btc")
	assert.Contains(t, pairReq.URL, "usdtErc20")

	quoteReq := f.requestTo(t, http.MethodPost, "/quotes")
	var body map[string]string
	require.NoError(t, json.Unmarshal(quoteReq.Body, &body))
	assert.Equal(t, "usdtErc20", body["depositMethod"], "USDT must be transcribed, not lowercased")
}

func TestQuoteForDestination(t *testing.T) {
	f := &stubFetcher{handler: happyHandler}
	p := newTestPlugin(f)

	req := btcToEthRequest()
	req.QuoteFor = types.QuoteForTo
	req.NativeAmount = "1000000000000000000" // 1 ETH

	_, err := p.FetchSwapQuote(context.Background(), req)
	require.NoError(t, err)

	// 1 ETH at rate 0.05 ETH/BTC needs 20 BTC on the deposit side.
	quoteReq := f.requestTo(t, http.MethodPost, "/quotes")
	var body map[string]string
	require.NoError(t, json.Unmarshal(quoteReq.Body, &body))
	assert.Equal(t, "20.00000000", body["depositAmount"])
}

func TestPermissionDenied(t *testing.T) {
	f := &stubFetcher{handler: func(req fetch.Request) (*fetch.Response, error) {
		if strings.Contains(req.URL, "/permissions") {
			return jsonResponse(http.StatusOK, `{"createOrder":false,"createQuote":true}`)
		}
		return happyHandler(req)
	}}
	p := newTestPlugin(f)

	_, err := p.FetchSwapQuote(context.Background(), btcToEthRequest())
	var denied *types.PermissionDeniedError
	require.True(t, errors.As(err, &denied), "got %v", err)
}

func TestUnsupportedPair(t *testing.T) {
	f := &stubFetcher{handler: func(req fetch.Request) (*fetch.Response, error) {
		if strings.Contains(req.URL, "/pairs/") {
			return jsonResponse(http.StatusOK, `{"error":{"message":"Invalid pair"}}`)
		}
		return happyHandler(req)
	}}
	p := newTestPlugin(f)

	_, err := p.FetchSwapQuote(context.Background(), btcToEthRequest())
	var pairErr *types.UnsupportedPairError
	require.True(t, errors.As(err, &pairErr), "got %v", err)
	assert.Equal(t, "BTC", pairErr.FromCurrency)
	assert.Equal(t, "ETH", pairErr.ToCurrency)
}

func TestBelowLimit(t *testing.T) {
	f := &stubFetcher{handler: func(req fetch.Request) (*fetch.Response, error) {
		if strings.Contains(req.URL, "/quotes") {
			return jsonResponse(http.StatusOK, `{"error":{"message":"Amount too low"}}`)
		}
		return happyHandler(req)
	}}
	p := newTestPlugin(f)

	_, err := p.FetchSwapQuote(context.Background(), btcToEthRequest())
	var below *types.BelowLimitError
	require.True(t, errors.As(err, &below), "got %v", err)
	// Pair minimum 0.001 BTC in native units.
	assert.Equal(t, "100000", below.NativeMin)
	assert.Equal(t, "BTC", below.CurrencyCode)
}

func TestAboveLimit(t *testing.T) {
	f := &stubFetcher{handler: func(req fetch.Request) (*fetch.Response, error) {
		if strings.Contains(req.URL, "/quotes") {
			return jsonResponse(http.StatusOK, `{"error":{"message":"Amount too high"}}`)
		}
		return happyHandler(req)
	}}
	p := newTestPlugin(f)

	_, err := p.FetchSwapQuote(context.Background(), btcToEthRequest())
	var above *types.AboveLimitError
	require.True(t, errors.As(err, &above), "got %v", err)
	// Pair maximum 10 BTC in native units.
	assert.Equal(t, "1000000000", above.NativeMax)
}

func TestOrderError(t *testing.T) {
	f := &stubFetcher{handler: func(req fetch.Request) (*fetch.Response, error) {
		if strings.Contains(req.URL, "/orders") {
			return jsonResponse(http.StatusOK, `{"error":{"message":"order failed"}}`)
		}
		return happyHandler(req)
	}}
	p := newTestPlugin(f)

	_, err := p.FetchSwapQuote(context.Background(), btcToEthRequest())
	var exch *types.ExchangeError
	require.True(t, errors.As(err, &exch), "got %v", err)
	assert.Contains(t, exch.Message, "order failed")
}

func TestMethodID(t *testing.T) {
	assert.Equal(t, "usdtErc20", methodID("USDT"))
	assert.Equal(t, "usdcErc20", methodID("USDC"))
	assert.Equal(t, "btc", methodID("BTC"))
	assert.Equal(t, "xmr", methodID("XMR"))
}
