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

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying users")

	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, s.q(queryGetUsers)); err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}

	zap.L().Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))

	var row userRow
	err := s.db.GetContext(ctx, &row, s.q(queryGetUserById), userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}

	user := row.toModel()
	zap.L().Debug("Retrieved user by ID", zap.String("user_id", userId), zap.String("name", user.Name))
	return &user, nil
}

// CreateUser inserts a user. Inserting an existing id or email is a no-op that
// returns the stored user when the id matches.
func (s *Service) CreateUser(ctx context.Context, userId, name, email string, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid user role %q", role)
	}

	zap.L().Info("Creating user", zap.String("id", userId), zap.String("name", name), zap.String("role", string(role)))

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, s.q(queryInsertUser), userId, name, email, string(role), now, now)
	if err != nil {
		zap.L().Error("Failed to insert user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		zap.L().Error("Failed to get rows affected", zap.Error(err))
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		existing, err := s.GetUserById(ctx, userId)
		if err != nil {
			return nil, fmt.Errorf("user with email %s already exists", email)
		}
		zap.L().Debug("User already exists", zap.String("id", userId))
		return existing, nil
	}

	zap.L().Info("User created successfully", zap.String("id", userId), zap.String("email", email))
	return s.GetUserById(ctx, userId)
}
