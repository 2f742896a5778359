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

	"go.uber.org/zap"
)

func main() {
	tenantFlag := flag.String("tenant", "demo", "Tenant to list balances for")
	flag.Parse()

	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	db := services.DbService

	users, err := db.GetUsers(ctx, *tenantFlag)
	if err != nil {
		logger.Fatal("Failed to get users", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("User balances — tenant %s", *tenantFlag), common.DefaultWidth)
	for _, user := range users {
		balance, err := db.GetBalance(ctx, *tenantFlag, models.OwnerUser, user.Id)
		if err != nil {
			logger.Error("Failed to get balance", zap.String("user_id", user.Id), zap.Error(err))
			continue
		}
		earned, err := db.GetTotalEarned(ctx, *tenantFlag, user.Id)
		if err != nil {
			logger.Error("Failed to get total earned", zap.String("user_id", user.Id), zap.Error(err))
			continue
		}

		fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
		fmt.Printf("│  ID: %s\n", common.FormatId(user.Id))
		common.PrintBoxSeparator(78)
		fmt.Printf("%s %-15s: %20s credits\n", common.BoxPrefix(false), "Balance", balance.String())
		fmt.Printf("%s %-15s: %20s credits\n", common.BoxPrefix(true), "Total earned", earned.String())
	}

	orgs, err := db.GetOrganizations(ctx, *tenantFlag)
	if err != nil {
		logger.Fatal("Failed to get organizations", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("Organization wallets — tenant %s", *tenantFlag), common.DefaultWidth)
	for _, org := range orgs {
		wallet, err := db.GetOrCreateWallet(ctx, *tenantFlag, org.Id)
		if err != nil {
			logger.Error("Failed to get wallet", zap.String("organization_id", org.Id), zap.Error(err))
			continue
		}
		received, err := db.GetTotalReceived(ctx, *tenantFlag, org.Id)
		if err != nil {
			logger.Error("Failed to get total received", zap.String("organization_id", org.Id), zap.Error(err))
			continue
		}
		paidOut, err := db.GetTotalPaidOut(ctx, *tenantFlag, org.Id)
		if err != nil {
			logger.Error("Failed to get total paid out", zap.String("organization_id", org.Id), zap.Error(err))
			continue
		}
		pending, err := db.CountPendingRequests(ctx, *tenantFlag, org.Id)
		if err != nil {
			logger.Error("Failed to count pending requests", zap.String("organization_id", org.Id), zap.Error(err))
			continue
		}

		fmt.Printf("\n┌─ Organization: %s\n", org.Name)
		fmt.Printf("│  ID: %s\n", common.FormatId(org.Id))
		common.PrintBoxSeparator(78)
		fmt.Printf("%s %-17s: %18s credits (v%d)\n", common.BoxPrefix(false), "Wallet balance", wallet.Balance.String(), wallet.Version)
		fmt.Printf("%s %-17s: %18s credits\n", common.BoxPrefix(false), "Total received", received.String())
		fmt.Printf("%s %-17s: %18s credits\n", common.BoxPrefix(false), "Total paid out", paidOut.String())
		fmt.Printf("%s %-17s: %18d\n", common.BoxPrefix(true), "Pending requests", pending)
	}

	common.PrintFooter("Done", common.DefaultWidth)
}
