package history

import (
	"context"
	"encoding/json"

	"bdb-wallet-go/internal/models"
	"bdb-wallet-go/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxRecords caps the per-account transaction log. Appending beyond the cap
// evicts the oldest entry.
const MaxRecords = 10

const (
	transactionsKeyPrefix = "transactions/"
	knownAccountsKey      = "known_accounts"
	darkModeKey           = "dark_mode"
)

// simulatedBalance is the fixed balance reported whenever the ledger path is
// unavailable and no prior simulated balance exists for the session.
var simulatedBalance = decimal.NewFromInt(1000)

// Store is the local fallback substrate: a capped per-account transaction
// log plus a few wallet-level flags, all persisted best-effort through a
// storage.KV. It never talks to the network and never fails from the
// caller's point of view: corruption or absence degrades to empty/default.
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Append prepends record to the account's log, truncates to the MaxRecords
// most recent entries and persists synchronously.
func (s *Store) Append(ctx context.Context, account string, record models.TransactionRecord) {
	records := s.Read(ctx, account)

	records = append([]models.TransactionRecord{record}, records...)
	if len(records) > MaxRecords {
		records = records[:MaxRecords]
	}

	data, err := json.Marshal(records)
	if err != nil {
		zap.L().Warn("Failed to encode transaction log",
			zap.String("account", account),
			zap.Error(err))
		return
	}

	if err := s.kv.Set(ctx, transactionsKeyPrefix+account, data); err != nil {
		zap.L().Warn("Failed to persist transaction log",
			zap.String("account", account),
			zap.Error(err))
	}
}

// Read returns the persisted log for an account, most recent first. A
// missing or unreadable entry is a valid empty result, not an error.
func (s *Store) Read(ctx context.Context, account string) []models.TransactionRecord {
	data, found, err := s.kv.Get(ctx, transactionsKeyPrefix+account)
	if err != nil {
		zap.L().Warn("Failed to read transaction log",
			zap.String("account", account),
			zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var records []models.TransactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		zap.L().Warn("Discarding corrupt transaction log",
			zap.String("account", account),
			zap.Error(err))
		return nil
	}
	return records
}

// SimulatedBalance returns the fixed non-zero balance used when the ledger
// is unreachable or unconfigured.
func (s *Store) SimulatedBalance() decimal.Decimal {
	return simulatedBalance
}

// KnownAccounts returns the persisted list of account identifiers that have
// connected before, in insertion order.
func (s *Store) KnownAccounts(ctx context.Context) []string {
	data, found, err := s.kv.Get(ctx, knownAccountsKey)
	if err != nil || !found {
		return nil
	}

	var accounts []string
	if err := json.Unmarshal(data, &accounts); err != nil {
		zap.L().Warn("Discarding corrupt known-accounts list", zap.Error(err))
		return nil
	}
	return accounts
}

// SaveKnownAccounts persists the known-accounts list.
func (s *Store) SaveKnownAccounts(ctx context.Context, accounts []string) {
	data, err := json.Marshal(accounts)
	if err != nil {
		zap.L().Warn("Failed to encode known-accounts list", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, knownAccountsKey, data); err != nil {
		zap.L().Warn("Failed to persist known-accounts list", zap.Error(err))
	}
}

// DarkMode returns the persisted display-mode flag, defaulting to false.
func (s *Store) DarkMode(ctx context.Context) bool {
	data, found, err := s.kv.Get(ctx, darkModeKey)
	if err != nil || !found {
		return false
	}

	var enabled bool
	if err := json.Unmarshal(data, &enabled); err != nil {
		return false
	}
	return enabled
}

// SetDarkMode persists the display-mode flag.
func (s *Store) SetDarkMode(ctx context.Context, enabled bool) {
	data, err := json.Marshal(enabled)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, darkModeKey, data); err != nil {
		zap.L().Warn("Failed to persist display mode", zap.Error(err))
	}
}
