package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"bdb-wallet-go/internal/history"
	"bdb-wallet-go/internal/models"
	"bdb-wallet-go/internal/session"
	"bdb-wallet-go/internal/storage"

	"github.com/shopspring/decimal"
)

const destAccount = "GDESTXXX" + "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type fakeGateway struct {
	balance       decimal.Decimal
	balanceErr    error
	transferErr   error
	balanceCalls  int
	transferCalls int
	onFetch       func()
}

func (f *fakeGateway) FetchBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	f.balanceCalls++
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.balance, f.balanceErr
}

func (f *fakeGateway) SubmitTransfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	f.transferCalls++
	return f.transferErr
}

type fakeRemote struct {
	records []models.TransactionRecord
	err     error
}

func (f *fakeRemote) RecentOperations(ctx context.Context, account string, limit int) ([]models.TransactionRecord, error) {
	return f.records, f.err
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (r *recordingNotifier) Push(kind models.NotificationKind, title, message string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, models.Notification{Kind: kind, Title: title, Message: message})
	return "id"
}

func (r *recordingNotifier) byKind(kind models.NotificationKind) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	gateway  *fakeGateway
	store    *history.Store
	session  *session.Manager
	notifier *recordingNotifier
	pipeline *Pipeline
}

func setupPipeline(t *testing.T) *fixture {
	t.Helper()

	gateway := &fakeGateway{}
	store := history.New(storage.NewMemoryKV())
	notifier := &recordingNotifier{}
	manager := session.NewManager(context.Background(), nil, store, notifier)

	return &fixture{
		gateway:  gateway,
		store:    store,
		session:  manager,
		notifier: notifier,
		pipeline: New(gateway, nil, store, manager, notifier, models.DefaultTokenConfig()),
	}
}

func TestGetBalance_DisconnectedIsSimulatedAndIdempotent(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	first := f.pipeline.GetBalance(ctx)
	second := f.pipeline.GetBalance(ctx)

	for _, balance := range []models.Balance{first, second} {
		if balance.Amount != "1000.00" {
			t.Errorf("Expected simulated 1000.00, got %s", balance.Amount)
		}
		if balance.Source != models.SourceSimulated {
			t.Errorf("Expected SIMULATED source, got %s", balance.Source)
		}
	}
	if f.gateway.balanceCalls != 0 {
		t.Errorf("Disconnected fetch must not hit the ledger, got %d calls", f.gateway.balanceCalls)
	}
	if len(f.notifier.byKind(models.KindInfo)) != 2 {
		t.Errorf("Expected one info notification per fetch")
	}
}

func TestGetBalance_LedgerSuccess(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.session.ConnectDemo(ctx)
	f.gateway.balance = decimal.RequireFromString("1.2345")

	balance := f.pipeline.GetBalance(ctx)

	if balance.Amount != "1.23" {
		t.Errorf("Expected rounded display 1.23, got %s", balance.Amount)
	}
	if balance.Source != models.SourceLedger {
		t.Errorf("Expected LEDGER source, got %s", balance.Source)
	}
	if balance.Account != session.DemoAccount {
		t.Errorf("Expected balance tagged with the requested account")
	}
	if len(f.notifier.byKind(models.KindSuccess)) != 1 {
		t.Error("Expected one success notification")
	}

	// The pipeline cache serves the same value back.
	if cached := f.pipeline.Balance(); cached.Amount != "1.23" {
		t.Errorf("Expected cached balance 1.23, got %q", cached.Amount)
	}
}

func TestGetBalance_RoundsHalfUp(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.session.ConnectDemo(ctx)
	f.gateway.balance = decimal.RequireFromString("1.235")

	if balance := f.pipeline.GetBalance(ctx); balance.Amount != "1.24" {
		t.Errorf("Expected half-up rounding to 1.24, got %s", balance.Amount)
	}
}

func TestGetBalance_RpcErrorFallsBackWithWarning(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.session.ConnectDemo(ctx)
	f.gateway.balanceErr = errors.New("connection refused")

	balance := f.pipeline.GetBalance(ctx)

	if balance.Amount != "1000.00" || balance.Source != models.SourceSimulated {
		t.Errorf("Expected simulated fallback, got %+v", balance)
	}
	if len(f.notifier.byKind(models.KindWarning)) != 1 {
		t.Error("Expected one warning notification naming the fallback")
	}
}

func TestGetBalance_StaleResponseDiscarded(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	other := "GBSECOND" + strings.Repeat("A", 48)
	f.store.SaveKnownAccounts(ctx, []string{session.DemoAccount, other})
	f.session = session.NewManager(ctx, nil, f.store, f.notifier)
	f.pipeline = New(f.gateway, nil, f.store, f.session, f.notifier, models.DefaultTokenConfig())

	f.session.ConnectDemo(ctx)
	f.gateway.balance = decimal.RequireFromString("42")

	// The active account changes while the fetch is in flight.
	f.gateway.onFetch = func() {
		if _, err := f.session.SwitchAccount(other); err != nil {
			t.Fatalf("SwitchAccount failed: %v", err)
		}
	}

	f.pipeline.GetBalance(ctx)

	if cached := f.pipeline.Balance(); cached.Resolved() {
		t.Errorf("Stale response must not populate the cache, got %+v", cached)
	}
	if len(f.notifier.byKind(models.KindSuccess)) != 0 {
		t.Error("Discarded stale response must not notify success")
	}
}

func TestSwitchAccount_ResetsCachedBalance(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	other := "GBSECOND" + strings.Repeat("A", 48)
	f.store.SaveKnownAccounts(ctx, []string{session.DemoAccount, other})
	f.session = session.NewManager(ctx, nil, f.store, f.notifier)
	f.pipeline = New(f.gateway, nil, f.store, f.session, f.notifier, models.DefaultTokenConfig())

	f.session.ConnectDemo(ctx)
	f.gateway.balance = decimal.RequireFromString("5")
	f.pipeline.GetBalance(ctx)

	if !f.pipeline.Balance().Resolved() {
		t.Fatal("Expected resolved balance before switch")
	}

	if _, err := f.session.SwitchAccount(other); err != nil {
		t.Fatalf("SwitchAccount failed: %v", err)
	}

	if cached := f.pipeline.Balance(); cached.Resolved() {
		t.Errorf("Expected unresolved balance after switch, got %+v", cached)
	}
}

func TestTransfer_ValidationOrder(t *testing.T) {
	validTo := destAccount

	tests := []struct {
		name    string
		connect bool
		to      string
		amount  string
		balance string
		wantErr error
	}{
		{"not connected", false, validTo, "10", "100", ErrNotConnected},
		{"missing destination", true, "", "10", "100", ErrInvalidInput},
		{"zero amount", true, validTo, "0", "100", ErrInvalidInput},
		{"negative amount before max check", true, validTo, "-5", "100", ErrInvalidInput},
		{"bad address", true, "GSHORT", "10", "100", ErrInvalidAddress},
		{"amount above maximum", true, validTo, "1000001", "100", ErrAmountTooLarge},
		{"no balance", true, validTo, "10", "0", ErrNoBalance},
		{"insufficient balance", true, validTo, "200", "100", ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupPipeline(t)
			ctx := context.Background()
			if tt.connect {
				f.session.ConnectDemo(ctx)
			}

			req := models.TransferRequest{To: tt.to, Amount: decimal.RequireFromString(tt.amount)}
			_, err := f.pipeline.Transfer(ctx, req, decimal.RequireFromString(tt.balance))

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if f.gateway.transferCalls != 0 {
				t.Error("Validation failure must not hit the ledger")
			}
			if len(f.notifier.byKind(models.KindSuccess)) != 0 {
				t.Error("Validation failure must not notify success")
			}
			if len(f.notifier.byKind(models.KindError)) == 0 {
				t.Error("Expected an error notification")
			}
		})
	}
}

func TestTransfer_LedgerSuccessRefreshesBalance(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.session.ConnectDemo(ctx)
	f.gateway.balance = decimal.RequireFromString("70")

	req := models.TransferRequest{To: destAccount, Amount: decimal.RequireFromString("30")}
	result, err := f.pipeline.Transfer(ctx, req, decimal.RequireFromString("100.00"))
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if result.Simulated {
		t.Error("Expected a real ledger transfer")
	}
	if !result.ClearForm {
		t.Error("Expected the form-clear signal")
	}
	if f.gateway.balanceCalls != 1 {
		t.Errorf("Expected one refresh fetch after transfer, got %d", f.gateway.balanceCalls)
	}
	if result.Balance.Amount != "70.00" || result.Balance.Source != models.SourceLedger {
		t.Errorf("Expected refreshed ledger balance 70.00, got %+v", result.Balance)
	}
	if len(f.notifier.byKind(models.KindSuccess)) != 2 {
		// one for the transfer, one for the refreshed balance
		t.Errorf("Expected transfer + refresh success notifications, got %d", len(f.notifier.byKind(models.KindSuccess)))
	}
}

func TestTransfer_LedgerFailureSimulatesLocally(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.session.ConnectDemo(ctx)
	f.gateway.transferErr = errors.New("connection refused")

	req := models.TransferRequest{To: destAccount, Amount: decimal.RequireFromString("30")}
	result, err := f.pipeline.Transfer(ctx, req, decimal.RequireFromString("100.00"))
	if err != nil {
		t.Fatalf("Ledger failure must degrade, not fail: %v", err)
	}

	if !result.Simulated || !result.ClearForm {
		t.Errorf("Expected simulated result with form-clear, got %+v", result)
	}
	if result.Balance.Amount != "70.00" || result.Balance.Source != models.SourceSimulated {
		t.Errorf("Expected simulated balance 70.00, got %+v", result.Balance)
	}

	records := f.store.Read(ctx, session.DemoAccount)
	if len(records) != 1 {
		t.Fatalf("Expected one recorded transaction, got %d", len(records))
	}
	if records[0].Amount != "30" || records[0].To != destAccount {
		t.Errorf("Unexpected record: %+v", records[0])
	}

	infos := f.notifier.byKind(models.KindInfo)
	found := false
	for _, n := range infos {
		if strings.Contains(strings.ToLower(n.Title+" "+n.Message), "simulat") ||
			strings.Contains(n.Message, "demo") {
			found = true
		}
	}
	if !found {
		t.Error("Expected an info notification mentioning simulation")
	}
	if len(f.notifier.byKind(models.KindSuccess)) != 0 {
		t.Error("Simulated transfer must not notify success")
	}
}

func TestTransfer_DebitNeverGoesNegative(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	f.session.ConnectDemo(ctx)
	f.gateway.transferErr = errors.New("unreachable")

	// amount == balance: result is exactly zero
	req := models.TransferRequest{To: destAccount, Amount: decimal.RequireFromString("100")}
	result, err := f.pipeline.Transfer(ctx, req, decimal.RequireFromString("100"))
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if result.Balance.Amount != "0.00" {
		t.Errorf("Expected 0.00 after draining balance, got %s", result.Balance.Amount)
	}
}

func TestTransactionHistory_PrefersRemoteFallsBackToLocal(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()
	f.session.ConnectDemo(ctx)

	local := models.TransactionRecord{Id: "local-1", From: session.DemoAccount, To: destAccount, Amount: "5"}
	f.store.Append(ctx, session.DemoAccount, local)

	remote := &fakeRemote{records: []models.TransactionRecord{{Id: "remote-1"}}}
	p := New(f.gateway, remote, f.store, f.session, f.notifier, models.DefaultTokenConfig())

	records := p.TransactionHistory(ctx)
	if len(records) != 1 || records[0].Id != "remote-1" {
		t.Errorf("Expected remote history, got %+v", records)
	}

	remote.err = errors.New("horizon unreachable")
	remote.records = nil
	records = p.TransactionHistory(ctx)
	if len(records) != 1 || records[0].Id != "local-1" {
		t.Errorf("Expected local fallback, got %+v", records)
	}
}

func TestTransactionHistory_DisconnectedIsEmpty(t *testing.T) {
	f := setupPipeline(t)

	if records := f.pipeline.TransactionHistory(context.Background()); len(records) != 0 {
		t.Errorf("Expected no history while disconnected, got %d", len(records))
	}
}
