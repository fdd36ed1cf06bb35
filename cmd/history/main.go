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

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Switch to a known account first (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg, nil)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	services.Session.ConnectDemo(ctx)

	if *accountFlag != "" {
		if _, err := services.Session.SwitchAccount(*accountFlag); err != nil {
			logger.Fatal("Failed to switch account", zap.Error(err))
		}
	}

	account := services.Session.Active()
	records := services.Pipeline.TransactionHistory(ctx)

	common.PrintHeader("TRANSACTION HISTORY", common.DefaultWidth)
	fmt.Printf("Account: %s\n", account)
	fmt.Printf("Records: %d\n", len(records))
	common.PrintBoxSeparator(common.DefaultWidth - 2)
	for i, record := range records {
		common.PrintRecord(record, i == len(records)-1)
	}
	if len(records) == 0 {
		fmt.Println("└  No transactions recorded")
	}
	common.PrintFooter("Done", common.DefaultWidth)

	logger.Info("History query completed",
		zap.String("account", account),
		zap.Int("records", len(records)))
}
