package models

import "time"

// Config represents the application configuration
type Config struct {
	RPC     RPCConfig
	Storage StorageConfig
	Notify  NotifyConfig
	Wallet  WalletConfig
}

// RPCConfig holds ledger endpoint settings. EndpointURL and ContractAddress
// may legitimately be empty: the gateway reports the missing configuration as
// an RPC failure on first use rather than refusing to start.
type RPCConfig struct {
	EndpointURL     string
	ContractAddress string
	HorizonURL      string
	RequestTimeout  time.Duration
}

// StorageConfig holds local persistence settings
type StorageConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// NotifyConfig holds notification queue settings
type NotifyConfig struct {
	DefaultTTL time.Duration
}

// WalletConfig holds wallet-level settings
type WalletConfig struct {
	TokenFile string
}
