package common

import (
	"context"
	"log"
	"strings"

	"bdb-wallet-go/internal/history"
	"bdb-wallet-go/internal/models"
	"bdb-wallet-go/internal/notify"
	"bdb-wallet-go/internal/pipeline"
	"bdb-wallet-go/internal/rpc"
	"bdb-wallet-go/internal/session"
	"bdb-wallet-go/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services bundles the wired wallet core for the CLI entrypoints.
type Services struct {
	KV       storage.KV
	History  *history.Store
	Notifier *notify.Queue
	Gateway  *rpc.Client
	Session  *session.Manager
	Pipeline *pipeline.Pipeline
	Token    models.TokenConfig
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires storage, history, notifications, the RPC gateway,
// the session manager and the operation pipeline. provider may be nil, in
// which case only demo mode can connect.
func InitializeServices(ctx context.Context, cfg *models.Config, provider session.Provider) (*Services, error) {
	kv, err := storage.NewSQLiteKV(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	token, err := LoadTokenConfig(cfg.Wallet.TokenFile)
	if err != nil {
		zap.L().Warn("Token file unavailable, using built-in defaults",
			zap.String("file", cfg.Wallet.TokenFile),
			zap.Error(err))
		token = models.DefaultTokenConfig()
	}

	gateway, err := rpc.NewClient(cfg.RPC, nil)
	if err != nil {
		kv.Close()
		return nil, err
	}
	if !gateway.Configured() {
		zap.L().Warn("Ledger RPC not configured; balance and transfer calls will run in demo mode")
	}

	store := history.New(kv)
	queue := notify.NewQueue(cfg.Notify.DefaultTTL)
	manager := session.NewManager(ctx, provider, store, queue)
	remote := rpc.NewHistoryClient(cfg.RPC.HorizonURL, nil)
	pipe := pipeline.New(gateway, remote, store, manager, queue, token)

	return &Services{
		KV:       kv,
		History:  store,
		Notifier: queue,
		Gateway:  gateway,
		Session:  manager,
		Pipeline: pipe,
		Token:    token,
	}, nil
}

func (s *Services) Close() {
	if s.Notifier != nil {
		s.Notifier.Close()
	}
	if s.KV != nil {
		s.KV.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
