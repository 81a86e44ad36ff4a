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

package common

import (
	"context"
	"fmt"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"go.uber.org/zap"
)

// UserInfo represents simplified user information for command-line utilities
type UserInfo struct {
	Id    string
	Name  string
	Email string
	Role  models.UserRole
}

// InitializeUsers retrieves users based on optional filters.
// If idFilter is provided, returns the single user with that id.
// Otherwise returns every user, optionally restricted to one role.
func InitializeUsers(ctx context.Context, dbService store.LedgerStore, idFilter string, role models.UserRole, logger *zap.Logger) ([]UserInfo, error) {
	var users []UserInfo

	if idFilter != "" {
		logger.Info("Looking up user by id", zap.String("user_id", idFilter))
		user, err := dbService.GetUserById(ctx, idFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, UserInfo{
			Id:    user.Id,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
	} else {
		allUsers, err := dbService.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		for _, u := range allUsers {
			if role != "" && u.Role != role {
				continue
			}
			users = append(users, UserInfo{
				Id:    u.Id,
				Name:  u.Name,
				Email: u.Email,
				Role:  u.Role,
			})
		}
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
