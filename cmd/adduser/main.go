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
	"os"
	"regexp"

	"marketplace-ledger-go/internal/common"
	"marketplace-ledger-go/internal/config"
	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/settlement"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func parseRate(raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid commission rate: %w", err)
	}
	if !settlement.ValidRate(rate) {
		return decimal.NullDecimal{}, fmt.Errorf("commission rate must be between 0 and 100 with two decimals")
	}
	return decimal.NewNullDecimal(rate), nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	roleFlag := flag.String("role", string(models.RoleBuyer), "buyer, seller or admin")
	rateFlag := flag.String("rate", "", "Seller commission percentage (defaults to DEFAULT_COMMISSION_RATE)")
	flag.Parse()

	if err := validateName(*nameFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := validateEmail(*emailFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	role := models.UserRole(*roleFlag)
	if !role.Valid() {
		fmt.Fprintf(os.Stderr, "Error: invalid role %q\n", *roleFlag)
		os.Exit(1)
	}
	rate, err := parseRate(*rateFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	user, err := dbService.CreateUser(ctx, uuid.New().String(), *nameFlag, *emailFlag, role)
	if err != nil {
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}
	fmt.Printf("✓ User %s (%s) id=%s role=%s\n", user.Name, user.Email, user.Id, user.Role)

	switch role {
	case models.RoleSeller:
		if err := dbService.UpsertSeller(ctx, user.Id, rate); err != nil {
			zap.L().Fatal("Failed to create seller profile", zap.Error(err))
		}
		fmt.Println("✓ Seller profile ready")
	case models.RoleAdmin:
		account, err := dbService.CreatePlatformAccount(ctx, user.Id)
		if err != nil {
			zap.L().Fatal("Failed to create platform account", zap.Error(err))
		}
		fmt.Printf("✓ Platform account %s\n", account.Id)
	}
}
