package coinswitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"swaprail/pkg/fetch"
	"swaprail/pkg/types"
)

// envelope is CoinSwitch's response wrapper, common to every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// coinAddress is the address object CoinSwitch uses for destinations,
// refunds and its own exchange address.
type coinAddress struct {
	Address string `json:"address"`
	Tag     string `json:"tag,omitempty"`
}

type offerRequest struct {
	DepositCoin           string `json:"depositCoin"`
	DestinationCoin       string `json:"destinationCoin"`
	DepositCoinAmount     string `json:"depositCoinAmount,omitempty"`
	DestinationCoinAmount string `json:"destinationCoinAmount,omitempty"`
}

type offerReply struct {
	OfferReferenceID      string      `json:"offerReferenceId"`
	DepositCoinAmount     json.Number `json:"depositCoinAmount"`
	DestinationCoinAmount json.Number `json:"destinationCoinAmount"`
}

type pairsRequest struct {
	DepositCoin     string `json:"depositCoin"`
	DestinationCoin string `json:"destinationCoin"`
}

type pairLimits struct {
	DepositCoin         string      `json:"depositCoin"`
	DestinationCoin     string      `json:"destinationCoin"`
	LimitMinDepositCoin json.Number `json:"limitMinDepositCoin"`
	LimitMaxDepositCoin json.Number `json:"limitMaxDepositCoin"`
}

type rateReply struct {
	Rate                json.Number `json:"rate"`
	MinerFee            json.Number `json:"minerFee"`
	LimitMinDepositCoin json.Number `json:"limitMinDepositCoin"`
	LimitMaxDepositCoin json.Number `json:"limitMaxDepositCoin"`
}

type fixedOrderRequest struct {
	OfferReferenceID   string      `json:"offerReferenceId"`
	DestinationAddress coinAddress `json:"destinationAddress"`
	RefundAddress      coinAddress `json:"refundAddress"`
}

type floatingOrderRequest struct {
	DepositCoin        string      `json:"depositCoin"`
	DestinationCoin    string      `json:"destinationCoin"`
	DepositCoinAmount  string      `json:"depositCoinAmount"`
	DestinationAddress coinAddress `json:"destinationAddress"`
	RefundAddress      coinAddress `json:"refundAddress"`
}

type orderReply struct {
	OrderID                       string      `json:"orderId"`
	ExchangeAddress               coinAddress `json:"exchangeAddress"`
	ExpectedDepositCoinAmount     json.Number `json:"expectedDepositCoinAmount"`
	ExpectedDestinationCoinAmount json.Number `json:"expectedDestinationCoinAmount"`
}

// call posts body to path and decodes the data payload into out. Every reply
// is checked for the success flag; when swapReq is given, a missing data
// payload means the pair is not supported.
func (p *Plugin) call(ctx context.Context, path string, body any, swapReq *types.SwapRequest, out any) error {
	header := http.Header{}
	header.Set("x-api-key", p.apiKey)
	header.Set("x-user-ip", p.userIP)

	resp, err := fetch.PostJSON(ctx, p.fetcher, p.baseURL+path, header, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := resp.JSON(&env); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !env.Success {
		return &types.ExchangeError{
			PluginID:   pluginID,
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Msg,
		}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		if swapReq != nil {
			return &types.UnsupportedPairError{
				FromCurrency: swapReq.FromCurrencyCode,
				ToCurrency:   swapReq.ToCurrencyCode,
			}
		}
		return &types.ExchangeError{PluginID: pluginID, Message: fmt.Sprintf("%s: reply has no data payload", path)}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data payload: %w", path, err)
	}
	return nil
}
