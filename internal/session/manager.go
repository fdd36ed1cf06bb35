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

package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"bdb-wallet-go/internal/history"
	"bdb-wallet-go/internal/models"

	"go.uber.org/zap"
)

// DemoAccount is the fixed well-known account activated by ConnectDemo.
const DemoAccount = "GA7IOL2PQSSQ2UH3HTFFD4COT2D53LPXJ4CHQQB7TY4ZHM27QWWA6BEI"

// State is the session connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Notifier is the slice of the notification queue the manager needs.
type Notifier interface {
	Push(kind models.NotificationKind, title, message string) string
}

// Snapshot is the read view of the wallet session handed to callers.
// Connected == (Active != "") always holds.
type Snapshot struct {
	Connected     bool
	Active        string
	Known         []string
	DashboardOpen bool
}

// Manager owns the wallet session: connection state, the active account and
// the insertion-ordered set of known accounts. Known accounts survive
// restarts through the history store; everything else is session-local.
type Manager struct {
	mu       sync.Mutex
	provider Provider
	store    *history.Store
	notifier Notifier

	state         State
	active        string
	known         []string
	dashboardOpen bool
}

// NewManager builds a session manager. provider may be nil, in which case
// Connect always fails with ErrProviderUnavailable and only ConnectDemo is
// usable. Previously known accounts are loaded from the store.
func NewManager(ctx context.Context, provider Provider, store *history.Store, notifier Notifier) *Manager {
	m := &Manager{
		provider: provider,
		store:    store,
		notifier: notifier,
	}
	m.known = store.KnownAccounts(ctx)
	return m
}

// Session returns a snapshot of the current session state.
func (m *Manager) Session() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	known := make([]string, len(m.known))
	copy(known, m.known)
	return Snapshot{
		Connected:     m.state == StateConnected,
		Active:        m.active,
		Known:         known,
		DashboardOpen: m.dashboardOpen,
	}
}

// Connect queries the signing provider for availability and authorization
// and activates the returned account. Exactly one notification is emitted
// for every outcome.
func (m *Manager) Connect(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	m.state = StateConnecting
	m.active = ""
	m.mu.Unlock()

	account, err := m.requestAccount(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = StateDisconnected
		m.active = ""
		snap := m.snapshotLocked()
		m.mu.Unlock()

		if errors.Is(err, ErrAccessDenied) {
			m.notifier.Push(models.KindWarning, "Access Denied",
				"Wallet access was not granted. Try again.")
		} else {
			m.notifier.Push(models.KindError, "Provider Unavailable",
				"No signing provider detected. Install a wallet extension or use demo mode.")
		}

		zap.L().Warn("Wallet connect failed", zap.Error(err))
		return snap, err
	}

	snap := m.activate(ctx, account)
	m.notifier.Push(models.KindSuccess, "Wallet Connected",
		fmt.Sprintf("Connected as %s", models.TruncateAddress(account)))

	zap.L().Info("Wallet connected", zap.String("account", account))
	return snap, nil
}

func (m *Manager) requestAccount(ctx context.Context) (string, error) {
	if m.provider == nil {
		return "", ErrProviderUnavailable
	}

	available, err := m.provider.IsAvailable(ctx)
	if err != nil || !available {
		return "", ErrProviderUnavailable
	}

	// Authorization state is advisory; RequestAccess prompts either way.
	if authorized, err := m.provider.IsAuthorized(ctx); err == nil && authorized {
		zap.L().Debug("Provider already authorized")
	}

	account, err := m.provider.RequestAccess(ctx)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			return "", ErrAccessDenied
		}
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if account == "" {
		return "", ErrAccessDenied
	}
	return account, nil
}

// ConnectDemo bypasses the provider and activates the fixed demo account
// through the same state transition as Connect. It never fails.
func (m *Manager) ConnectDemo(ctx context.Context) Snapshot {
	snap := m.activate(ctx, DemoAccount)
	m.notifier.Push(models.KindInfo, "Demo Mode Activated",
		"Using simulated data for demonstration")

	zap.L().Info("Demo mode activated", zap.String("account", DemoAccount))
	return snap
}

func (m *Manager) activate(ctx context.Context, account string) Snapshot {
	m.mu.Lock()

	m.state = StateConnected
	m.active = account
	if !slices.Contains(m.known, account) {
		m.known = append(m.known, account)
	}
	known := make([]string, len(m.known))
	copy(known, m.known)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.store.SaveKnownAccounts(ctx, known)
	return snap
}

// SwitchAccount makes a previously known account the active one. The cached
// balance becomes stale by definition; the pipeline re-resolves it on the
// next fetch. Switching to the already active account is a no-op.
func (m *Manager) SwitchAccount(account string) (Snapshot, error) {
	m.mu.Lock()

	if !slices.Contains(m.known, account) {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, fmt.Errorf("%w: %s", ErrUnknownAccount, models.TruncateAddress(account))
	}

	if m.active == account {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, nil
	}

	m.state = StateConnected
	m.active = account
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifier.Push(models.KindInfo, "Account Switched",
		fmt.Sprintf("Now using %s", models.TruncateAddress(account)))

	zap.L().Info("Switched active account", zap.String("account", account))
	return snap, nil
}

// Disconnect resets the session to its initial state. Persisted history and
// the known-accounts list are kept; only the live session is cleared.
func (m *Manager) Disconnect() Snapshot {
	m.mu.Lock()
	m.state = StateDisconnected
	m.active = ""
	m.dashboardOpen = false
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifier.Push(models.KindInfo, "Disconnected", "Wallet session closed")

	zap.L().Info("Wallet disconnected")
	return snap
}

// ToggleDashboard flips the dashboard view flag and reports the new value.
func (m *Manager) ToggleDashboard() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboardOpen = !m.dashboardOpen
	return m.dashboardOpen
}

// Active returns the currently active account, or "" when disconnected.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
