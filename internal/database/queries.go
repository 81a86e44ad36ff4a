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

// Queries are written with ? placeholders and rebound per dialect.
const (
	// User queries
	queryGetUsers = `
		SELECT id, name, email, role, created_at, updated_at
		FROM users
		ORDER BY created_at, id`

	queryInsertUser = `
		INSERT INTO users (id, name, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`

	queryGetUserById = `
		SELECT id, name, email, role, created_at, updated_at
		FROM users
		WHERE id = ?`

	// Seller queries
	queryUpsertSeller = `
		INSERT INTO seller_profiles (user_id, commission_rate_bps, total_earnings, current_balance, updated_at)
		VALUES (?, ?, 0, 0, ?)
		ON CONFLICT (user_id) DO UPDATE SET commission_rate_bps = excluded.commission_rate_bps, updated_at = excluded.updated_at`

	queryGetSellerBalance = `
		SELECT user_id, commission_rate_bps, total_earnings, current_balance, updated_at
		FROM seller_profiles
		WHERE user_id = ?`

	queryGetSellers = `
		SELECT user_id, commission_rate_bps, total_earnings, current_balance, updated_at
		FROM seller_profiles
		ORDER BY user_id`

	queryCreditSeller = `
		UPDATE seller_profiles
		SET total_earnings = total_earnings + ?, current_balance = current_balance + ?, updated_at = ?
		WHERE user_id = ?`

	// Platform queries
	queryInsertPlatformAccount = `
		INSERT INTO platform_revenue (id, admin_user_id, total_revenue, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)`

	queryGetPlatformAccounts = `
		SELECT id, admin_user_id, total_revenue, created_at, updated_at
		FROM platform_revenue
		ORDER BY created_at, id`

	queryGetPlatformAccountByAdmin = `
		SELECT id, admin_user_id, total_revenue, created_at, updated_at
		FROM platform_revenue
		WHERE admin_user_id = ?`

	queryResolvePlatformAccount = `
		SELECT id
		FROM platform_revenue
		ORDER BY created_at, id
		LIMIT 1`

	queryCreditPlatform = `
		UPDATE platform_revenue
		SET total_revenue = total_revenue + ?, updated_at = ?
		WHERE id = ?`

	querySumPlatformRevenue = `
		SELECT CAST(COALESCE(SUM(total_revenue), 0) AS BIGINT)
		FROM platform_revenue`

	// Cart queries
	queryInsertCartItem = `
		INSERT INTO cart_items (id, user_id, product_id, seller_id, quantity, unit_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetCart = `
		SELECT id, user_id, product_id, seller_id, quantity, unit_price, created_at
		FROM cart_items
		WHERE user_id = ?
		ORDER BY created_at, id`

	queryLockUser = `
		SELECT id FROM users WHERE id = ?`

	queryClearCart = `
		DELETE FROM cart_items WHERE user_id = ?`

	// Order queries
	queryInsertOrder = `
		INSERT INTO orders (id, user_id, total_amount, shipping_fee, tax_amount, payment_status, order_status,
		                    shipping_address, billing_address, payment_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertOrderItem = `
		INSERT INTO order_items (id, order_id, product_id, seller_id, quantity, price_at_purchase, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	orderColumns = `
		SELECT id, user_id, total_amount, shipping_fee, tax_amount, payment_status, order_status,
		       shipping_address, billing_address, payment_method, transaction_id, created_at, updated_at
		FROM orders`

	queryGetOrder = orderColumns + `
		WHERE id = ?`

	queryGetOrdersByBuyer = orderColumns + `
		WHERE user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	queryGetSettledOrders = orderColumns + `
		WHERE payment_status = 'paid'
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`

	queryGetOrderItems = `
		SELECT id, order_id, product_id, seller_id, quantity, price_at_purchase, created_at
		FROM order_items
		WHERE order_id = ?
		ORDER BY created_at, id`

	queryMarkOrderPaid = `
		UPDATE orders
		SET payment_status = 'paid', payment_method = ?, transaction_id = ?, updated_at = ?
		WHERE id = ? AND payment_status = 'pending'`

	queryUpdateOrderStatus = `
		UPDATE orders
		SET order_status = ?, updated_at = ?
		WHERE id = ? AND order_status = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, order_id, seller_id, total_amount, seller_amount, platform_amount,
		                          commission_rate_bps, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	transactionColumns = `
		SELECT id, order_id, seller_id, total_amount, seller_amount, platform_amount,
		       commission_rate_bps, status, created_at
		FROM transactions`

	queryGetTransactionsByOrder = transactionColumns + `
		WHERE order_id = ?
		ORDER BY created_at, id`

	queryGetSellerTransactions = transactionColumns + `
		WHERE seller_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	// Reconciliation queries
	querySumSellerAmount = `
		SELECT CAST(COALESCE(SUM(seller_amount), 0) AS BIGINT)
		FROM transactions
		WHERE seller_id = ? AND status = 'completed'`

	querySumCompletedPlatformAmount = `
		SELECT CAST(COALESCE(SUM(platform_amount), 0) AS BIGINT)
		FROM transactions
		WHERE status = 'completed'`

	queryHealthCheck = `SELECT 1`
)
