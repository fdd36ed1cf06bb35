package common

import (
	"fmt"
	"os"
	"path/filepath"

	"bdb-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type tokenFile struct {
	Symbol          string `yaml:"symbol"`
	Name            string `yaml:"name"`
	DisplayDecimals int32  `yaml:"display_decimals"`
	MaxTransfer     string `yaml:"max_transfer"`
}

// LoadTokenConfig reads the token metadata file. Callers are expected to
// fall back to models.DefaultTokenConfig when the file is absent.
func LoadTokenConfig(file string) (models.TokenConfig, error) {
	var path string
	if filepath.IsAbs(file) {
		path = file
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return models.TokenConfig{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, file)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.TokenConfig{}, fmt.Errorf("unable to read %s: %w", file, err)
	}

	var parsed tokenFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return models.TokenConfig{}, fmt.Errorf("unable to parse %s: %w", file, err)
	}

	if parsed.Symbol == "" {
		return models.TokenConfig{}, fmt.Errorf("token file %s missing symbol", file)
	}

	cfg := models.TokenConfig{
		Symbol:          parsed.Symbol,
		Name:            parsed.Name,
		DisplayDecimals: parsed.DisplayDecimals,
		MaxTransfer:     decimal.NewFromInt(1_000_000),
	}
	if cfg.DisplayDecimals <= 0 {
		cfg.DisplayDecimals = 2
	}
	if parsed.MaxTransfer != "" {
		maxTransfer, err := decimal.NewFromString(parsed.MaxTransfer)
		if err != nil {
			return models.TokenConfig{}, fmt.Errorf("invalid max_transfer in %s: %w", file, err)
		}
		if maxTransfer.LessThanOrEqual(decimal.Zero) {
			return models.TokenConfig{}, fmt.Errorf("max_transfer in %s must be positive", file)
		}
		cfg.MaxTransfer = maxTransfer
	}

	return cfg, nil
}
