package sideshift

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"swaprail/pkg/fetch"
	"swaprail/pkg/types"
)

// apiError is SideShift's error envelope, present on any failed call.
type apiError struct {
	Message string `json:"message"`
}

type permissionsReply struct {
	CreateOrder bool `json:"createOrder"`
	CreateQuote bool `json:"createQuote"`
}

type pairReply struct {
	Rate  string    `json:"rate"`
	Min   string    `json:"min"`
	Max   string    `json:"max"`
	Error *apiError `json:"error"`
}

type quoteRequest struct {
	DepositMethod string `json:"depositMethod"`
	SettleMethod  string `json:"settleMethod"`
	DepositAmount string `json:"depositAmount"`
	AffiliateID   string `json:"affiliateId"`
}

type quoteReply struct {
	ID            string    `json:"id"`
	Rate          string    `json:"rate"`
	DepositAmount string    `json:"depositAmount"`
	SettleAmount  string    `json:"settleAmount"`
	ExpiresAtISO  string    `json:"expiresAtISO"`
	Error         *apiError `json:"error"`
}

type orderRequest struct {
	Type          string `json:"type"`
	QuoteID       string `json:"quoteId"`
	AffiliateID   string `json:"affiliateId"`
	SettleAddress string `json:"settleAddress"`
	RefundAddress string `json:"refundAddress,omitempty"`
}

type addressReply struct {
	Address string `json:"address"`
}

type orderReply struct {
	ID             string       `json:"id"`
	ExpiresAtISO   string       `json:"expiresAtISO"`
	DepositAddress addressReply `json:"depositAddress"`
	SettleAddress  addressReply `json:"settleAddress"`
	DepositAmount  string       `json:"depositAmount"`
	SettleAmount   string       `json:"settleAmount"`
	Error          *apiError    `json:"error"`
}

func (p *Plugin) fetchPermissions(ctx context.Context) (*permissionsReply, error) {
	resp, err := fetch.Get(ctx, p.fetcher, p.baseURL+"/permissions", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &types.ExchangeError{PluginID: pluginID, StatusCode: resp.StatusCode, Message: "permissions query failed"}
	}
	var reply permissionsReply
	if err := resp.JSON(&reply); err != nil {
		return nil, fmt.Errorf("permissions: %w", err)
	}
	return &reply, nil
}

func (p *Plugin) fetchPair(ctx context.Context, depositMethod, settleMethod string) (*pairReply, error) {
	u := fmt.Sprintf("%s/pairs/%s/%s", p.baseURL, url.PathEscape(depositMethod), url.PathEscape(settleMethod))
	resp, err := fetch.Get(ctx, p.fetcher, u, nil)
	if err != nil {
		return nil, err
	}
	var reply pairReply
	if err := resp.JSON(&reply); err != nil {
		return nil, fmt.Errorf("pair %s/%s: %w", depositMethod, settleMethod, err)
	}
	return &reply, nil
}

func (p *Plugin) postQuote(ctx context.Context, req quoteRequest) (*quoteReply, error) {
	resp, err := fetch.PostJSON(ctx, p.fetcher, p.baseURL+"/quotes", nil, req)
	if err != nil {
		return nil, err
	}
	var reply quoteReply
	if err := resp.JSON(&reply); err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}
	return &reply, nil
}

func (p *Plugin) postOrder(ctx context.Context, req orderRequest) (*orderReply, error) {
	resp, err := fetch.PostJSON(ctx, p.fetcher, p.baseURL+"/orders", nil, req)
	if err != nil {
		return nil, err
	}
	var reply orderReply
	if err := resp.JSON(&reply); err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	if reply.Error != nil {
		return nil, &types.ExchangeError{PluginID: pluginID, Message: reply.Error.Message}
	}
	if reply.ID == "" || reply.DepositAddress.Address == "" {
		return nil, &types.ExchangeError{PluginID: pluginID, Message: "order reply missing id or deposit address"}
	}
	return &reply, nil
}
