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
	"community-credits-go/internal/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	tenantFlag := flag.String("tenant", "demo", "Tenant to seed into")
	nameFlag := flag.String("name", "", "Optional: add a single user with this display name")
	emailFlag := flag.String("email", "", "Optional: email for the single user")
	demoFlag := flag.Bool("demo", false, "Seed the full demo tenant (users, organization, memberships)")
	flag.Parse()

	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Database.SeedDemoData = *demoFlag

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *nameFlag == "" {
		fmt.Println("Schema initialized.")
		return
	}
	if *emailFlag == "" {
		logger.Fatal("-email is required when -name is set")
	}

	grant, note, err := common.LoadGrantPolicy(cfg.Ledger.GrantsFile)
	if err != nil {
		logger.Warn("No grant policy loaded, creating user without starting grant", zap.Error(err))
	}

	user, err := services.DbService.CreateUser(ctx, database.CreateUserParams{
		TenantId:      *tenantFlag,
		UserId:        uuid.New().String(),
		Name:          *nameFlag,
		Email:         *emailFlag,
		StartingGrant: grant,
		GrantNote:     note,
	})
	if err != nil {
		logger.Fatal("Failed to create user", zap.Error(err))
	}

	common.PrintHeader("User created", common.DefaultWidth)
	fmt.Printf("ID:     %s\n", user.Id)
	fmt.Printf("Name:   %s\n", user.Name)
	fmt.Printf("Email:  %s\n", user.Email)
	fmt.Printf("Tenant: %s\n", user.TenantId)
	fmt.Printf("Grant:  %s credits\n", grant.String())
	common.PrintFooter("Done", common.DefaultWidth)
}
