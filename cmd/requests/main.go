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

func printRequest(view models.TransferRequestView, isLast bool) {
	prefix := common.BoxPrefix(isLast)
	resolved := ""
	if view.ResolvedAt != nil {
		resolved = view.ResolvedAt.Format("2006-01-02 15:04:05")
	}
	fmt.Printf("%s %s  %-9s  %10s credits  %s → %s  %s\n",
		prefix,
		common.FormatId(view.Id),
		view.Status,
		view.Amount.String(),
		view.OrganizationName,
		view.RecipientName,
		resolved)
	if view.RejectionReason != "" {
		fmt.Printf("%s   reason: %s\n", common.BoxPrefix(isLast), view.RejectionReason)
	}
}

func main() {
	tenantFlag := flag.String("tenant", "demo", "Tenant to operate in")
	orgFlag := flag.String("org", "", "Organization id")
	allFlag := flag.Bool("all", false, "List all requests, not just pending")
	createFlag := flag.Bool("create", false, "Create a request")
	requesterFlag := flag.String("requester", "", "Requester email")
	recipientFlag := flag.String("recipient", "", "Recipient email (defaults to requester)")
	amountFlag := flag.String("amount", "", "Amount for -create")
	descFlag := flag.String("desc", "", "Description for -create")
	approveFlag := flag.String("approve", "", "Request id to approve")
	rejectFlag := flag.String("reject", "", "Request id to reject")
	cancelFlag := flag.String("cancel", "", "Request id to cancel")
	actorFlag := flag.String("actor", "", "Email of the approver/requester acting on the request")
	reasonFlag := flag.String("reason", "", "Rejection reason")
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
	credits := services.CreditService
	tenantId := *tenantFlag

	lookupActor := func() string {
		if *actorFlag == "" {
			logger.Fatal("-actor is required for this action")
		}
		user, err := db.GetUserByEmail(ctx, tenantId, *actorFlag)
		if err != nil {
			logger.Fatal("Actor not found", zap.String("email", *actorFlag), zap.Error(err))
		}
		return user.Id
	}

	switch {
	case *createFlag:
		if *orgFlag == "" || *requesterFlag == "" || *amountFlag == "" {
			logger.Fatal("-org, -requester and -amount are required for -create")
		}
		amount, err := decimal.NewFromString(*amountFlag)
		if err != nil {
			logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
		}
		requester, err := db.GetUserByEmail(ctx, tenantId, *requesterFlag)
		if err != nil {
			logger.Fatal("Requester not found", zap.String("email", *requesterFlag), zap.Error(err))
		}
		recipientId := requester.Id
		if *recipientFlag != "" {
			recipient, err := db.GetUserByEmail(ctx, tenantId, *recipientFlag)
			if err != nil {
				logger.Fatal("Recipient not found", zap.String("email", *recipientFlag), zap.Error(err))
			}
			recipientId = recipient.Id
		}

		requestId, err := credits.CreateTransferRequest(ctx, store.CreateRequestParams{
			TenantId:       tenantId,
			OrganizationId: *orgFlag,
			RequesterId:    requester.Id,
			RecipientId:    recipientId,
			Amount:         amount,
			Description:    *descFlag,
		})
		if err != nil {
			logger.Fatal("Failed to create transfer request", zap.Error(err))
		}
		fmt.Printf("Created transfer request %s\n", requestId)

	case *approveFlag != "":
		transactionId, err := credits.ApproveTransferRequest(ctx, tenantId, *approveFlag, lookupActor())
		if err != nil {
			logger.Fatal("Failed to approve transfer request", zap.Error(err))
		}
		fmt.Printf("Approved. Transaction: %s\n", transactionId)

	case *rejectFlag != "":
		if err := credits.RejectTransferRequest(ctx, tenantId, *rejectFlag, lookupActor(), *reasonFlag); err != nil {
			logger.Fatal("Failed to reject transfer request", zap.Error(err))
		}
		fmt.Println("Rejected.")

	case *cancelFlag != "":
		if err := credits.CancelTransferRequest(ctx, tenantId, *cancelFlag, lookupActor()); err != nil {
			logger.Fatal("Failed to cancel transfer request", zap.Error(err))
		}
		fmt.Println("Cancelled.")

	default:
		if *orgFlag == "" {
			logger.Fatal("-org is required to list requests")
		}
		var views []models.TransferRequestView
		if *allFlag {
			views, err = db.GetAllRequests(ctx, tenantId, *orgFlag)
		} else {
			views, err = db.GetPendingRequests(ctx, tenantId, *orgFlag)
		}
		if err != nil {
			logger.Fatal("Failed to list transfer requests", zap.Error(err))
		}

		common.PrintHeader(fmt.Sprintf("Transfer requests — organization %s", common.FormatId(*orgFlag)), common.DefaultWidth)
		if len(views) == 0 {
			fmt.Println("(none)")
		}
		for i, view := range views {
			printRequest(view, i == len(views)-1)
		}
		common.PrintFooter("Done", common.DefaultWidth)
	}
}
