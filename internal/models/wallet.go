package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSource indicates where a balance value came from.
type BalanceSource string

const (
	SourceLedger    BalanceSource = "LEDGER"
	SourceSimulated BalanceSource = "SIMULATED"
)

// Balance is the resolved token balance for one account. It is replaced
// wholesale on every fetch, never partially updated.
type Balance struct {
	Account   string
	Amount    string // fixed two-decimal display string, e.g. "1000.00"
	Source    BalanceSource
	FetchedAt time.Time
}

// Resolved reports whether the balance has been fetched at least once.
func (b Balance) Resolved() bool {
	return b.Source != ""
}

// TransferRequest carries the inputs of a single transfer call. It is
// ephemeral and never persisted as-is.
type TransferRequest struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// TransactionRecord is one entry in the per-account local transaction log.
type TransactionRecord struct {
	Id        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    string    `json:"amount"`
}

// NotificationKind classifies a user-facing notification.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
	KindWarning NotificationKind = "warning"
	KindInfo    NotificationKind = "info"
)

// Notification is a transient user-facing message. It self-destructs once
// its TTL elapses unless dismissed earlier.
type Notification struct {
	Id        string
	Kind      NotificationKind
	Title     string
	Message   string
	TTL       time.Duration
	CreatedAt time.Time
}
