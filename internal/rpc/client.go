/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"bdb-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// TokenDecimals is the token's declared smallest-unit precision: all amounts
// are scaled by 10^7 on the wire.
const TokenDecimals = 7

const jsonRPCVersion = "2.0"

// Error is the gateway-level failure type. Every transport, decoding or
// server-envelope problem surfaces as *Error; callers decide the fallback
// policy (the pipeline absorbs it, it is never retried here).
type Error struct {
	Op      string // "fetch_balance" or "submit_transfer"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("rpc %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client issues contract calls against the ledger's JSON-RPC endpoint. It
// performs exactly one HTTP round trip per operation and never retries.
type Client struct {
	cfg    models.RPCConfig
	http   *http.Client
	nextId atomic.Int64
}

// NewClient builds a gateway for the given endpoint configuration. A nil
// httpClient gets the default tuned transport. Missing endpoint or contract
// address is not an error here; it surfaces as *Error on first use.
func NewClient(cfg models.RPCConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		client, err := createCustomHttpClient(cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("unable to create custom http client: %w", err)
		}
		httpClient = client
	}

	return &Client{cfg: cfg, http: httpClient}, nil
}

func createCustomHttpClient(timeout time.Duration) (*http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// Configured reports whether both the endpoint URL and the contract address
// were supplied.
func (c *Client) Configured() bool {
	return c.cfg.EndpointURL != "" && c.cfg.ContractAddress != ""
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Id      int64     `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	ContractAddress string `json:"contractAddress"`
	Method          string `json:"method"`
	Args            []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcErrorBody   `json:"error"`
}

type rpcErrorBody struct {
	Message string `json:"message"`
}

// balanceResult mirrors the ScVal shape the endpoint returns for a balance
// call: a 128-bit integer split into hi/lo words.
type balanceResult struct {
	Value struct {
		I128 struct {
			Hi int64  `json:"hi"`
			Lo uint64 `json:"lo"`
		} `json:"i128"`
	} `json:"value"`
}

// FetchBalance resolves the token balance of account. The wire value is a
// 128-bit integer in smallest units; the result is descaled by 10^7.
func (c *Client) FetchBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	result, err := c.callContract(ctx, "fetch_balance", "balance", []any{account})
	if err != nil {
		return decimal.Zero, err
	}

	var decoded balanceResult
	if err := json.Unmarshal(result, &decoded); err != nil {
		return decimal.Zero, &Error{Op: "fetch_balance", Message: "unparseable result field", Err: err}
	}

	raw := new(big.Int).Lsh(big.NewInt(decoded.Value.I128.Hi), 64)
	raw.Add(raw, new(big.Int).SetUint64(decoded.Value.I128.Lo))
	balance := decimal.NewFromBigInt(raw, -TokenDecimals)

	zap.L().Debug("Fetched ledger balance",
		zap.String("account", account),
		zap.String("balance", balance.String()))

	return balance, nil
}

// SubmitTransfer submits a transfer of amount tokens from one account to
// another, scaling the amount by 10^7 for the wire. Success means the
// response carried a non-error result envelope.
func (c *Client) SubmitTransfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	scaled := amount.Shift(TokenDecimals).Truncate(0)

	_, err := c.callContract(ctx, "submit_transfer", "transfer", []any{from, to, scaled.IntPart()})
	if err != nil {
		return err
	}

	zap.L().Info("Transfer submitted to ledger",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.String()))

	return nil
}

// callContract performs a single callContract round trip and returns the raw
// result envelope.
func (c *Client) callContract(ctx context.Context, op, method string, args []any) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, &Error{Op: op, Message: "ledger endpoint not configured"}
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: jsonRPCVersion,
		Id:      c.nextId.Add(1),
		Method:  "callContract",
		Params: rpcParams{
			ContractAddress: c.cfg.ContractAddress,
			Method:          method,
			Args:            args,
		},
	})
	if err != nil {
		return nil, &Error{Op: op, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Message: "transport failure", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Message: fmt.Sprintf("unexpected status %d %s", resp.StatusCode, resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Message: "failed to read response", Err: err}
	}

	var decoded rpcResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &Error{Op: op, Message: "malformed response", Err: err}
	}

	if decoded.Error != nil {
		return nil, &Error{Op: op, Message: decoded.Error.Message}
	}

	if len(decoded.Result) == 0 || string(decoded.Result) == "null" || string(decoded.Result) == "false" {
		return nil, &Error{Op: op, Message: "missing result envelope"}
	}

	return decoded.Result, nil
}
