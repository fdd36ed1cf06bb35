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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bdb-wallet-go/internal/history"
	"bdb-wallet-go/internal/models"
	"bdb-wallet-go/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validation errors, checked in this exact order. They are terminal: no
// retry, no fallback, no state mutation.
var (
	ErrNotConnected        = errors.New("wallet not connected")
	ErrInvalidInput        = errors.New("destination and a positive amount are required")
	ErrInvalidAddress      = errors.New("invalid destination address")
	ErrAmountTooLarge      = errors.New("amount exceeds the maximum transfer size")
	ErrNoBalance           = errors.New("no balance to transfer")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Gateway is the slice of the ledger RPC client the pipeline composes.
type Gateway interface {
	FetchBalance(ctx context.Context, account string) (decimal.Decimal, error)
	SubmitTransfer(ctx context.Context, from, to string, amount decimal.Decimal) error
}

// HistoryFetcher reads recent ledger operations for an account (Horizon-style).
type HistoryFetcher interface {
	RecentOperations(ctx context.Context, account string, limit int) ([]models.TransactionRecord, error)
}

// Notifier is the slice of the notification queue the pipeline needs.
type Notifier interface {
	Push(kind models.NotificationKind, title, message string) string
}

// TransferResult reports the outcome of a successful or simulated transfer.
type TransferResult struct {
	Balance   models.Balance
	Record    *models.TransactionRecord // set when the transfer was simulated
	Simulated bool
	ClearForm bool // caller should clear the request form fields
}

// Pipeline validates and executes balance-fetch and transfer operations,
// composing the ledger gateway and the local history store. Ledger transport
// errors never escape: they are absorbed into a simulated fallback with a
// visible warning. The pipeline owns the cached Balance; it is tagged with
// the account it was fetched for, so a response that arrives after the
// active account changed is discarded instead of overwriting fresher state.
type Pipeline struct {
	mu       sync.Mutex
	gateway  Gateway
	remote   HistoryFetcher
	store    *history.Store
	session  *session.Manager
	notifier Notifier
	token    models.TokenConfig

	balance models.Balance
}

func New(gateway Gateway, remote HistoryFetcher, store *history.Store, sess *session.Manager, notifier Notifier, token models.TokenConfig) *Pipeline {
	return &Pipeline{
		gateway:  gateway,
		remote:   remote,
		store:    store,
		session:  sess,
		notifier: notifier,
		token:    token,
	}
}

// Balance returns the cached balance, or an unresolved zero value when the
// cache does not belong to the currently active account.
func (p *Pipeline) Balance() models.Balance {
	active := p.session.Active()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.balance.Resolved() && p.balance.Account == active {
		return p.balance
	}
	return models.Balance{}
}

// GetBalance resolves the active account's balance. Disconnected sessions
// and unreachable ledgers both yield the fixed simulated balance; the two
// cases differ only in the notification emitted. RPC failures are fully
// absorbed here and never reach the caller.
func (p *Pipeline) GetBalance(ctx context.Context) models.Balance {
	snap := p.session.Session()

	if !snap.Connected {
		balance := p.simulatedBalance("")
		p.setBalance(balance)
		p.notifier.Push(models.KindInfo, "Demo Mode",
			fmt.Sprintf("Simulated balance: %s %s", balance.Amount, p.token.Symbol))
		return balance
	}

	account := snap.Active
	amount, err := p.gateway.FetchBalance(ctx, account)
	if err != nil {
		zap.L().Warn("Balance fetch failed, falling back to simulated balance",
			zap.String("account", account),
			zap.Error(err))

		balance := p.simulatedBalance(account)
		if p.setBalanceIfActive(balance, account) {
			p.notifier.Push(models.KindWarning, "Ledger Unreachable",
				fmt.Sprintf("Showing simulated balance: %s %s", balance.Amount, p.token.Symbol))
		}
		return balance
	}

	balance := models.Balance{
		Account:   account,
		Amount:    formatAmount(amount, p.token.DisplayDecimals),
		Source:    models.SourceLedger,
		FetchedAt: time.Now(),
	}

	// Discard stale responses: the account may have changed mid-flight.
	if !p.setBalanceIfActive(balance, account) {
		zap.L().Debug("Discarding stale balance response",
			zap.String("account", account),
			zap.String("active", p.session.Active()))
		return balance
	}

	p.notifier.Push(models.KindSuccess, "Balance Updated",
		fmt.Sprintf("You have %s %s", balance.Amount, p.token.Symbol))

	return balance
}

// Transfer validates req against currentBalance and submits it to the
// ledger. Validation failures return a distinct sentinel error and change
// nothing. A ledger failure after successful validation degrades to a
// simulated transfer: the balance is debited locally and the transaction is
// recorded in the local history store.
func (p *Pipeline) Transfer(ctx context.Context, req models.TransferRequest, currentBalance decimal.Decimal) (TransferResult, error) {
	snap := p.session.Session()

	if req.From == "" {
		req.From = snap.Active
	}

	if err := p.validate(snap, req, currentBalance); err != nil {
		return TransferResult{}, err
	}

	if err := p.gateway.SubmitTransfer(ctx, req.From, req.To, req.Amount); err != nil {
		zap.L().Warn("Transfer submission failed, simulating locally",
			zap.String("from", req.From),
			zap.String("to", req.To),
			zap.Error(err))
		return p.simulateTransfer(ctx, req, currentBalance), nil
	}

	p.notifier.Push(models.KindSuccess, "Transfer Successful",
		fmt.Sprintf("Sent %s %s to %s", req.Amount.String(), p.token.Symbol,
			models.TruncateAddress(req.To)))

	// Refresh from the ledger so the caller sees the post-transfer balance.
	balance := p.GetBalance(ctx)

	return TransferResult{Balance: balance, ClearForm: true}, nil
}

// validate applies the transfer rules in order, short-circuiting on the
// first failure. Each failing rule emits its own error notification.
func (p *Pipeline) validate(snap session.Snapshot, req models.TransferRequest, currentBalance decimal.Decimal) error {
	if !snap.Connected {
		p.notifier.Push(models.KindError, "Not Connected", "Connect your wallet first")
		return ErrNotConnected
	}

	if req.To == "" || req.Amount.LessThanOrEqual(decimal.Zero) {
		p.notifier.Push(models.KindError, "Validation Error",
			"Enter a destination address and an amount greater than 0")
		return ErrInvalidInput
	}

	if !models.ValidAccountId(req.To) {
		p.notifier.Push(models.KindError, "Invalid Address",
			fmt.Sprintf("Address must start with %c and be %d characters long",
				models.AccountIdPrefix, models.AccountIdLength))
		return ErrInvalidAddress
	}

	if req.Amount.GreaterThan(p.token.MaxTransfer) {
		p.notifier.Push(models.KindError, "Amount Too Large",
			fmt.Sprintf("Amount cannot exceed %s %s", p.token.MaxTransfer.String(), p.token.Symbol))
		return ErrAmountTooLarge
	}

	if currentBalance.LessThanOrEqual(decimal.Zero) {
		p.notifier.Push(models.KindError, "No Balance",
			fmt.Sprintf("You have no %s to transfer", p.token.Symbol))
		return ErrNoBalance
	}

	if req.Amount.GreaterThan(currentBalance) {
		p.notifier.Push(models.KindError, "Insufficient Balance",
			fmt.Sprintf("Current balance: %s %s", currentBalance.String(), p.token.Symbol))
		return ErrInsufficientBalance
	}

	return nil
}

// simulateTransfer applies the demo-mode fallback after a ledger failure:
// debit locally, record the transaction for the sender, notify.
func (p *Pipeline) simulateTransfer(ctx context.Context, req models.TransferRequest, currentBalance decimal.Decimal) TransferResult {
	newBalance := currentBalance.Sub(req.Amount)
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}

	balance := models.Balance{
		Account:   req.From,
		Amount:    formatAmount(newBalance, p.token.DisplayDecimals),
		Source:    models.SourceSimulated,
		FetchedAt: time.Now(),
	}
	p.setBalance(balance)

	record := models.TransactionRecord{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		From:      req.From,
		To:        req.To,
		Amount:    req.Amount.String(),
	}
	p.store.Append(ctx, req.From, record)

	p.notifier.Push(models.KindInfo, "Transfer Simulated",
		fmt.Sprintf("Sent %s %s to %s (demo mode)", req.Amount.String(), p.token.Symbol,
			models.TruncateAddress(req.To)))

	return TransferResult{
		Balance:   balance,
		Record:    &record,
		Simulated: true,
		ClearForm: true,
	}
}

// TransactionHistory returns the active account's recent transactions,
// preferring the remote ledger view and falling back to the locally
// persisted log when the remote is unreachable or empty.
func (p *Pipeline) TransactionHistory(ctx context.Context) []models.TransactionRecord {
	account := p.session.Active()
	if account == "" {
		return nil
	}

	if p.remote != nil {
		records, err := p.remote.RecentOperations(ctx, account, history.MaxRecords)
		if err == nil && len(records) > 0 {
			return records
		}
		if err != nil {
			zap.L().Debug("Remote history unavailable, using local log",
				zap.String("account", account),
				zap.Error(err))
		}
	}

	return p.store.Read(ctx, account)
}

func (p *Pipeline) simulatedBalance(account string) models.Balance {
	return models.Balance{
		Account:   account,
		Amount:    formatAmount(p.store.SimulatedBalance(), p.token.DisplayDecimals),
		Source:    models.SourceSimulated,
		FetchedAt: time.Now(),
	}
}

func (p *Pipeline) setBalance(balance models.Balance) {
	p.mu.Lock()
	p.balance = balance
	p.mu.Unlock()
}

// setBalanceIfActive stores balance only when account is still the active
// one and reports whether the store happened.
func (p *Pipeline) setBalanceIfActive(balance models.Balance, account string) bool {
	if p.session.Active() != account {
		return false
	}
	p.setBalance(balance)
	return true
}

// formatAmount renders an amount with a fixed number of decimals,
// rounding half up. 12345000 smallest units (1.2345 tokens) displays
// as "1.23"; 1.235 displays as "1.24".
func formatAmount(amount decimal.Decimal, decimals int32) string {
	return amount.StringFixed(decimals)
}
