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
	"log"

	"community-credits-go/internal/common"
	"community-credits-go/internal/config"
	"community-credits-go/internal/models"
	"community-credits-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	tenantFlag := flag.String("tenant", "demo", "Tenant to operate in")
	fromFlag := flag.String("from", "", "Sender email")
	toFlag := flag.String("to", "", "Receiver email")
	orgFlag := flag.String("org", "", "Organization id (deposit/withdraw instead of peer transfer)")
	directionFlag := flag.String("direction", "deposit", "With -org: deposit (user→org) or withdraw (org→user)")
	amountFlag := flag.String("amount", "", "Amount of credits to move")
	descFlag := flag.String("desc", "", "Description recorded on the transaction")
	flag.Parse()

	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *amountFlag == "" {
		logger.Fatal("-amount is required")
	}
	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	db := services.DbService
	tenantId := *tenantFlag

	var transactionId string
	switch {
	case *orgFlag == "":
		if *fromFlag == "" || *toFlag == "" {
			logger.Fatal("-from and -to are required for a peer transfer")
		}
		sender, err := db.GetUserByEmail(ctx, tenantId, *fromFlag)
		if err != nil {
			logger.Fatal("Sender not found", zap.String("email", *fromFlag), zap.Error(err))
		}
		receiver, err := db.GetUserByEmail(ctx, tenantId, *toFlag)
		if err != nil {
			logger.Fatal("Receiver not found", zap.String("email", *toFlag), zap.Error(err))
		}

		transactionId, err = services.CreditService.Transfer(ctx, store.TransferParams{
			TenantId:    tenantId,
			SenderId:    sender.Id,
			ReceiverId:  receiver.Id,
			Amount:      amount,
			Description: *descFlag,
		})
		if err != nil {
			logger.Fatal("Transfer failed", zap.Error(err))
		}

	case *directionFlag == "deposit":
		user, err := db.GetUserByEmail(ctx, tenantId, *fromFlag)
		if err != nil {
			logger.Fatal("User not found", zap.String("email", *fromFlag), zap.Error(err))
		}
		transactionId, err = services.CreditService.DepositToOrganization(ctx, store.WalletTransferParams{
			TenantId:       tenantId,
			UserId:         user.Id,
			OrganizationId: *orgFlag,
			Amount:         amount,
			Description:    *descFlag,
		})
		if err != nil {
			logger.Fatal("Deposit failed", zap.Error(err))
		}

	case *directionFlag == "withdraw":
		user, err := db.GetUserByEmail(ctx, tenantId, *toFlag)
		if err != nil {
			logger.Fatal("User not found", zap.String("email", *toFlag), zap.Error(err))
		}
		transactionId, err = services.CreditService.WithdrawFromOrganization(ctx, store.WalletTransferParams{
			TenantId:       tenantId,
			UserId:         user.Id,
			OrganizationId: *orgFlag,
			Amount:         amount,
			Description:    *descFlag,
		})
		if err != nil {
			logger.Fatal("Withdrawal failed", zap.Error(err))
		}

	default:
		logger.Fatal("Unknown direction", zap.String("direction", *directionFlag))
	}

	common.PrintHeader("Transfer complete", common.DefaultWidth)
	fmt.Printf("Transaction: %s\n", transactionId)
	fmt.Printf("Amount:      %s credits\n", amount.String())

	if *orgFlag != "" {
		balance, err := db.GetBalance(ctx, tenantId, models.OwnerOrganization, *orgFlag)
		if err == nil {
			fmt.Printf("Org wallet:  %s credits\n", balance.String())
		}
	}
	common.PrintFooter("Done", common.DefaultWidth)
}
