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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func parseAndValidateFlags() (models.TransferRequest, error) {
	toFlag := flag.String("to", "", "Destination account (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer (required)")
	flag.Parse()

	if *toFlag == "" || *amountFlag == "" {
		return models.TransferRequest{}, fmt.Errorf("all flags are required: --to, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return models.TransferRequest{}, fmt.Errorf("invalid amount format: %w", err)
	}

	return models.TransferRequest{To: *toFlag, Amount: amount}, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	request, err := parseAndValidateFlags()
	if err != nil {
		logger.Fatal("Invalid arguments", zap.Error(err))
	}

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

	// Resolve the balance first; the transfer validates against it.
	balance := services.Pipeline.GetBalance(ctx)
	currentBalance, err := decimal.NewFromString(balance.Amount)
	if err != nil {
		logger.Fatal("Unparseable balance", zap.String("amount", balance.Amount), zap.Error(err))
	}

	result, err := services.Pipeline.Transfer(ctx, request, currentBalance)

	common.PrintHeader("TOKEN TRANSFER", common.DefaultWidth)
	if err != nil {
		fmt.Printf("Transfer rejected: %v\n", err)
	} else if result.Simulated {
		fmt.Printf("Transfer simulated (ledger unavailable)\n")
		fmt.Printf("New balance: %s %s\n", result.Balance.Amount, services.Token.Symbol)
	} else {
		fmt.Printf("Transfer submitted to ledger\n")
		fmt.Printf("New balance: %s %s\n", result.Balance.Amount, services.Token.Symbol)
	}
	common.PrintBoxSeparator(common.DefaultWidth - 2)
	common.PrintNotifications(services.Notifier.Active())
	common.PrintFooter("Done", common.DefaultWidth)

	if err != nil {
		logger.Error("Transfer failed",
			zap.String("to", request.To),
			zap.String("amount", request.Amount.String()),
			zap.Error(err))
		return
	}

	logger.Info("Transfer completed",
		zap.String("to", request.To),
		zap.String("amount", request.Amount.String()),
		zap.Bool("simulated", result.Simulated))
}
