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

package main

import (
	"context"
	"flag"
	"fmt"

	"bdb-wallet-go/internal/common"
	"bdb-wallet-go/internal/config"
	"bdb-wallet-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Switch to a known account before fetching (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg, nil)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	// No signing provider on the CLI; demo mode drives the same pipeline.
	services.Session.ConnectDemo(ctx)

	if *accountFlag != "" {
		if _, err := services.Session.SwitchAccount(*accountFlag); err != nil {
			logger.Fatal("Failed to switch account", zap.Error(err))
		}
	}

	balance := services.Pipeline.GetBalance(ctx)

	common.PrintHeader("WALLET BALANCE", common.DefaultWidth)
	fmt.Printf("Account: %s\n", balance.Account)
	fmt.Printf("Balance: %s %s (%s)\n", balance.Amount, services.Token.Symbol, balance.Source)
	if balance.Source == models.SourceSimulated {
		fmt.Println("Note: ledger unavailable or unconfigured, showing simulated balance")
	}
	common.PrintBoxSeparator(common.DefaultWidth - 2)
	common.PrintNotifications(services.Notifier.Active())
	common.PrintFooter(fmt.Sprintf("Fetched at %s", balance.FetchedAt.Format("2006-01-02 15:04:05")), common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.String("account", balance.Account),
		zap.String("amount", balance.Amount),
		zap.String("source", string(balance.Source)))
}
