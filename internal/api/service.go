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

package api

import (
	"context"
	"fmt"

	"community-credits-go/internal/audit"
	"community-credits-go/internal/database"
	"community-credits-go/internal/notify"
)

// CreditService is the facade the rest of the platform calls. It delegates
// the financial work to the database layer and dispatches audit entries and
// notifications strictly after the commit, so a downstream failure can never
// roll back a committed ledger change.
type CreditService struct {
	db         *database.Service
	audit      *audit.Recorder
	dispatcher *notify.Dispatcher
}

func NewCreditService(db *database.Service, recorder *audit.Recorder, dispatcher *notify.Dispatcher) *CreditService {
	return &CreditService{
		db:         db,
		audit:      recorder,
		dispatcher: dispatcher,
	}
}

func (s *CreditService) Store() *database.Service {
	return s.db
}

func (s *CreditService) HealthCheck(ctx context.Context, tenantId string) error {
	_, err := s.db.GetUsers(ctx, tenantId)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
