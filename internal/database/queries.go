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

package database

const (
	// User queries
	queryGetActiveUsers = `
		SELECT id, tenant_id, name, email, created_at, updated_at
		FROM users
		WHERE tenant_id = ? AND active = 1
		ORDER BY created_at`

	queryInsertUser = `
		INSERT OR IGNORE INTO users (id, tenant_id, name, email) VALUES (?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, tenant_id, name, email, created_at, updated_at
		FROM users
		WHERE tenant_id = ? AND id = ? AND active = 1`

	queryGetUserByEmail = `
		SELECT id, tenant_id, name, email, created_at, updated_at
		FROM users
		WHERE tenant_id = ? AND email = ? AND active = 1`

	// Organization queries
	queryInsertOrganization = `
		INSERT INTO organizations (id, tenant_id, name) VALUES (?, ?, ?)`

	queryGetOrganization = `
		SELECT id, tenant_id, name, created_at
		FROM organizations
		WHERE tenant_id = ? AND id = ?`

	queryGetOrganizations = `
		SELECT id, tenant_id, name, created_at
		FROM organizations
		WHERE tenant_id = ?
		ORDER BY created_at`

	// Membership queries (roster is read-only for the ledger; the upsert
	// exists for seeding and tests)
	queryGetMembership = `
		SELECT role, status
		FROM organization_members
		WHERE tenant_id = ? AND organization_id = ? AND user_id = ?`

	queryUpsertMembership = `
		INSERT INTO organization_members (organization_id, user_id, tenant_id, role, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, organization_id, user_id) DO UPDATE SET role = excluded.role, status = excluded.status`

	// Balance queries
	queryGetBalance = `
		SELECT balance
		FROM account_balances
		WHERE tenant_id = ? AND owner_type = ? AND owner_id = ?`

	queryGetBalanceForUpdate = `
		SELECT id, balance, version
		FROM account_balances
		WHERE tenant_id = ? AND owner_type = ? AND owner_id = ?`

	queryInsertBalance = `
		INSERT INTO account_balances (id, tenant_id, owner_type, owner_id, balance, version)
		VALUES (?, ?, ?, ?, ?, 1)`

	queryUpdateBalance = `
		UPDATE account_balances
		SET balance = ?, last_transaction_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = ? AND owner_type = ? AND owner_id = ? AND version = ?`

	// Amounts are exact decimal TEXT; SQLite's SUM would coerce them to
	// REAL, so totals are selected row by row and summed in Go.
	queryAmountsReceived = `
		SELECT amount
		FROM transactions
		WHERE tenant_id = ? AND receiver_type = ? AND receiver_id = ?`

	queryAmountsSent = `
		SELECT amount
		FROM transactions
		WHERE tenant_id = ? AND sender_type = ? AND sender_id = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, tenant_id, kind, sender_type, sender_id, receiver_type, receiver_id,
			amount, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransactionParties = `
		SELECT sender_type, sender_id, receiver_type, receiver_id
		FROM transactions
		WHERE tenant_id = ? AND id = ?`

	queryHideTransactionForSender = `
		UPDATE transactions SET hidden_by_sender = 1 WHERE tenant_id = ? AND id = ?`

	queryHideTransactionForReceiver = `
		UPDATE transactions SET hidden_by_receiver = 1 WHERE tenant_id = ? AND id = ?`

	queryGetHistoryForOwner = `
		SELECT t.id, t.tenant_id, t.kind, t.sender_type, t.sender_id, t.receiver_type, t.receiver_id,
		       t.amount, t.description, t.hidden_by_sender, t.hidden_by_receiver, t.created_at,
		       COALESCE(su.name, so.name, t.sender_id) AS sender_name,
		       COALESCE(ru.name, ro.name, t.receiver_id) AS receiver_name
		FROM transactions t
		LEFT JOIN users su ON su.id = t.sender_id AND su.tenant_id = t.tenant_id AND t.sender_type = 'user'
		LEFT JOIN organizations so ON so.id = t.sender_id AND so.tenant_id = t.tenant_id AND t.sender_type = 'organization'
		LEFT JOIN users ru ON ru.id = t.receiver_id AND ru.tenant_id = t.tenant_id AND t.receiver_type = 'user'
		LEFT JOIN organizations ro ON ro.id = t.receiver_id AND ro.tenant_id = t.tenant_id AND t.receiver_type = 'organization'
		WHERE t.tenant_id = ?1
		  AND ((t.sender_id = ?2 AND t.hidden_by_sender = 0)
		    OR (t.receiver_id = ?2 AND t.hidden_by_receiver = 0))
		ORDER BY t.created_at DESC, t.id DESC`

	queryGetWalletHistory = `
		SELECT t.id, t.tenant_id, t.kind, t.sender_type, t.sender_id, t.receiver_type, t.receiver_id,
		       t.amount, t.description, t.hidden_by_sender, t.hidden_by_receiver, t.created_at,
		       COALESCE(su.name, so.name, t.sender_id) AS sender_name,
		       COALESCE(ru.name, ro.name, t.receiver_id) AS receiver_name
		FROM transactions t
		LEFT JOIN users su ON su.id = t.sender_id AND su.tenant_id = t.tenant_id AND t.sender_type = 'user'
		LEFT JOIN organizations so ON so.id = t.sender_id AND so.tenant_id = t.tenant_id AND t.sender_type = 'organization'
		LEFT JOIN users ru ON ru.id = t.receiver_id AND ru.tenant_id = t.tenant_id AND t.receiver_type = 'user'
		LEFT JOIN organizations ro ON ro.id = t.receiver_id AND ro.tenant_id = t.tenant_id AND t.receiver_type = 'organization'
		WHERE t.tenant_id = ?1
		  AND ((t.sender_type = 'organization' AND t.sender_id = ?2)
		    OR (t.receiver_type = 'organization' AND t.receiver_id = ?2))
		ORDER BY t.created_at DESC, t.id DESC`

	queryCountForUser = `
		SELECT COUNT(*)
		FROM transactions
		WHERE tenant_id = ?1
		  AND ((sender_type = 'user' AND sender_id = ?2 AND hidden_by_sender = 0)
		    OR (receiver_type = 'user' AND receiver_id = ?2 AND hidden_by_receiver = 0))`

	queryGetTotalEarned = `
		SELECT amount
		FROM transactions
		WHERE tenant_id = ? AND receiver_type = 'user' AND receiver_id = ? AND hidden_by_receiver = 0`

	queryGetTotalReceived = `
		SELECT amount
		FROM transactions
		WHERE tenant_id = ? AND receiver_type = 'organization' AND receiver_id = ?`

	queryGetTotalPaidOut = `
		SELECT amount
		FROM transactions
		WHERE tenant_id = ? AND sender_type = 'organization' AND sender_id = ?`

	// Transfer request queries
	queryInsertTransferRequest = `
		INSERT INTO transfer_requests (
			id, tenant_id, organization_id, requester_id, recipient_id,
			amount, description, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransferRequest = `
		SELECT id, tenant_id, organization_id, requester_id, recipient_id,
		       amount, description, status, rejection_reason, resolved_by, created_at, resolved_at
		FROM transfer_requests
		WHERE tenant_id = ? AND id = ?`

	// Resolving is guarded on status so a request can never be resolved
	// twice: zero rows affected means it was no longer pending.
	queryResolveTransferRequest = `
		UPDATE transfer_requests
		SET status = ?, rejection_reason = ?, resolved_by = ?, resolved_at = ?
		WHERE tenant_id = ? AND id = ? AND status = 'pending'`

	queryGetRequestsForOrganization = `
		SELECT r.id, r.tenant_id, r.organization_id, r.requester_id, r.recipient_id,
		       r.amount, r.description, r.status, r.rejection_reason, r.resolved_by, r.created_at, r.resolved_at,
		       requester.name, recipient.name, o.name
		FROM transfer_requests r
		JOIN users requester ON requester.id = r.requester_id AND requester.tenant_id = r.tenant_id
		JOIN users recipient ON recipient.id = r.recipient_id AND recipient.tenant_id = r.tenant_id
		JOIN organizations o ON o.id = r.organization_id AND o.tenant_id = r.tenant_id
		WHERE r.tenant_id = ? AND r.organization_id = ?
		ORDER BY r.created_at DESC, r.id DESC`

	queryGetPendingRequestsForOrganization = `
		SELECT r.id, r.tenant_id, r.organization_id, r.requester_id, r.recipient_id,
		       r.amount, r.description, r.status, r.rejection_reason, r.resolved_by, r.created_at, r.resolved_at,
		       requester.name, recipient.name, o.name
		FROM transfer_requests r
		JOIN users requester ON requester.id = r.requester_id AND requester.tenant_id = r.tenant_id
		JOIN users recipient ON recipient.id = r.recipient_id AND recipient.tenant_id = r.tenant_id
		JOIN organizations o ON o.id = r.organization_id AND o.tenant_id = r.tenant_id
		WHERE r.tenant_id = ? AND r.organization_id = ? AND r.status = 'pending'
		ORDER BY r.created_at DESC, r.id DESC`

	queryGetRequestsByRequester = `
		SELECT r.id, r.tenant_id, r.organization_id, r.requester_id, r.recipient_id,
		       r.amount, r.description, r.status, r.rejection_reason, r.resolved_by, r.created_at, r.resolved_at,
		       requester.name, recipient.name, o.name
		FROM transfer_requests r
		JOIN users requester ON requester.id = r.requester_id AND requester.tenant_id = r.tenant_id
		JOIN users recipient ON recipient.id = r.recipient_id AND recipient.tenant_id = r.tenant_id
		JOIN organizations o ON o.id = r.organization_id AND o.tenant_id = r.tenant_id
		WHERE r.tenant_id = ? AND r.requester_id = ?
		ORDER BY r.created_at DESC, r.id DESC`

	queryCountPendingRequests = `
		SELECT COUNT(*)
		FROM transfer_requests
		WHERE tenant_id = ? AND organization_id = ? AND status = 'pending'`

	// Audit queries
	queryInsertAuditEntry = `
		INSERT INTO audit_log (id, tenant_id, entry) VALUES (?, ?, ?)`
)
