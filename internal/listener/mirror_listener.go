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

package listener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketplace-ledger-go/internal/formance"
	"marketplace-ledger-go/internal/models"
	"marketplace-ledger-go/internal/settlement"

	"go.uber.org/zap"
)

const defaultBatchSize = 100

// MirrorListenerConfig contains configuration for MirrorListener
type MirrorListenerConfig struct {
	Source          formance.SettledOrderSource
	Mirror          settlement.Mirror
	PollingInterval time.Duration
	CleanupInterval time.Duration
	Retention       time.Duration
	BatchSize       int
}

// MirrorListener periodically republishes settled orders to the external
// ledger so that settlements whose post-commit mirror failed catch up.
type MirrorListener struct {
	source formance.SettledOrderSource
	mirror settlement.Mirror

	// State management for mirrored orders
	mirroredOrders  map[string]time.Time
	mutex           sync.RWMutex
	pollingInterval time.Duration
	cleanupInterval time.Duration
	retention       time.Duration
	batchSize       int

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewMirrorListener creates a new mirror listener
func NewMirrorListener(cfg MirrorListenerConfig) *MirrorListener {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &MirrorListener{
		source:          cfg.Source,
		mirror:          cfg.Mirror,
		mirroredOrders:  make(map[string]time.Time),
		pollingInterval: cfg.PollingInterval,
		cleanupInterval: cfg.CleanupInterval,
		retention:       cfg.Retention,
		batchSize:       batchSize,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start runs one catch-up pass and then keeps polling in the background
func (l *MirrorListener) Start(ctx context.Context) error {
	if l.source == nil || l.mirror == nil {
		return fmt.Errorf("mirror listener requires a source and a mirror")
	}
	if l.pollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %v", l.pollingInterval)
	}

	zap.L().Info("Starting mirror listener")

	if _, err := l.Sync(ctx); err != nil {
		zap.L().Error("Startup catch-up failed", zap.Error(err))
		return fmt.Errorf("startup catch-up failed: %w", err)
	}

	go l.pollLoop(ctx)
	if l.cleanupInterval > 0 && l.retention > 0 {
		go l.cleanupLoop(ctx)
	}

	zap.L().Info("Mirror listener started successfully",
		zap.Duration("polling_interval", l.pollingInterval),
		zap.Duration("retention", l.retention))
	return nil
}

// Stop gracefully stops the mirror listener
func (l *MirrorListener) Stop() {
	zap.L().Info("Stopping mirror listener")
	close(l.stopChan)
	<-l.doneChan
	zap.L().Info("Mirror listener stopped")
}

func (l *MirrorListener) pollLoop(ctx context.Context) {
	defer close(l.doneChan)

	ticker := time.NewTicker(l.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := l.Sync(ctx); err != nil {
				zap.L().Error("Mirror poll failed", zap.Error(err))
			}
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *MirrorListener) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sync publishes every settled order not yet mirrored by this listener and
// returns how many were published. A failed order is logged and retried on
// the next pass; only listing failures abort the pass.
func (l *MirrorListener) Sync(ctx context.Context) (int, error) {
	ctx = models.WithSettlementContext(ctx, &models.SettlementContext{Origin: models.OriginListener})

	published := 0
	for offset := 0; ; offset += l.batchSize {
		orders, err := l.source.GetSettledOrders(ctx, l.batchSize, offset)
		if err != nil {
			return published, fmt.Errorf("failed to list settled orders: %w", err)
		}

		for i := range orders {
			order := &orders[i]
			if l.isMirrored(order.Id) {
				continue
			}
			if err := l.publish(ctx, order); err != nil {
				zap.L().Warn("Failed to mirror order",
					zap.String("order_id", order.Id),
					zap.String("transaction_ref", order.TransactionId),
					zap.Error(err))
				continue
			}
			l.markMirrored(order.Id, time.Now())
			published++
		}

		if len(orders) < l.batchSize {
			break
		}
	}

	if published > 0 {
		zap.L().Info("Mirror sync complete", zap.Int("published", published))
	}
	return published, nil
}

func (l *MirrorListener) publish(ctx context.Context, order *models.Order) error {
	txs, err := l.source.GetTransactionsByOrder(ctx, order.Id)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	return l.mirror.PublishSettlement(ctx, order, formance.ResultFromLedger(order, txs))
}

func (l *MirrorListener) isMirrored(orderId string) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	_, ok := l.mirroredOrders[orderId]
	return ok
}

func (l *MirrorListener) markMirrored(orderId string, at time.Time) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.mirroredOrders[orderId] = at
}

// cleanup forgets orders mirrored before the retention window. A forgotten
// order is published once more on the next pass, which the external ledger
// accepts as a duplicate reference.
func (l *MirrorListener) cleanup(now time.Time) {
	cutoff := now.Add(-l.retention)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	removed := 0
	for id, at := range l.mirroredOrders {
		if at.Before(cutoff) {
			delete(l.mirroredOrders, id)
			removed++
		}
	}

	if removed > 0 {
		zap.L().Debug("Cleaned up mirrored order cache",
			zap.Int("removed", removed),
			zap.Int("remaining", len(l.mirroredOrders)))
	}
}
