package listener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"marketplace-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

type fakeSource struct {
	orders  []models.Order
	listErr error
}

func (f *fakeSource) GetSettledOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.orders) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.orders) {
		end = len(f.orders)
	}
	return f.orders[offset:end], nil
}

func (f *fakeSource) GetTransactionsByOrder(ctx context.Context, orderId string) ([]models.Transaction, error) {
	return []models.Transaction{{
		OrderId:        orderId,
		SellerId:       "seller-a",
		TotalAmount:    decimal.NewFromInt(100),
		SellerAmount:   decimal.NewFromInt(90),
		PlatformAmount: decimal.NewFromInt(10),
	}}, nil
}

type fakeMirror struct {
	mu        sync.Mutex
	published map[string]int
	failFor   map[string]bool
}

func (m *fakeMirror) PublishSettlement(ctx context.Context, order *models.Order, result *models.SettlementResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[order.Id] {
		return errors.New("ledger unreachable")
	}
	if sc := models.GetSettlementContext(ctx); sc == nil || sc.Origin != models.OriginListener {
		return errors.New("missing listener origin")
	}
	if !result.PlatformTotal.Equal(decimal.NewFromInt(10)) {
		return fmt.Errorf("unexpected platform total %s", result.PlatformTotal.String())
	}
	m.published[order.Id]++
	return nil
}

func settledOrders(n int) []models.Order {
	orders := make([]models.Order, n)
	for i := range orders {
		orders[i] = models.Order{
			Id:            fmt.Sprintf("order-%d", i),
			TransactionId: fmt.Sprintf("TXN-%d", i),
			TotalAmount:   decimal.NewFromInt(100),
			PaymentStatus: models.PaymentPaid,
		}
	}
	return orders
}

func TestSync_PublishesEachOrderOnce(t *testing.T) {
	source := &fakeSource{orders: settledOrders(5)}
	mirror := &fakeMirror{published: map[string]int{}}
	l := NewMirrorListener(MirrorListenerConfig{Source: source, Mirror: mirror, BatchSize: 2})

	n, err := l.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 published orders, got %d", n)
	}

	n, err = l.Sync(context.Background())
	if err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected nothing to publish on second pass, got %d", n)
	}
	for id, count := range mirror.published {
		if count != 1 {
			t.Errorf("Order %s published %d times", id, count)
		}
	}
}

func TestSync_RetriesFailedOrders(t *testing.T) {
	source := &fakeSource{orders: settledOrders(3)}
	mirror := &fakeMirror{published: map[string]int{}, failFor: map[string]bool{"order-1": true}}
	l := NewMirrorListener(MirrorListenerConfig{Source: source, Mirror: mirror})

	n, err := l.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 published orders, got %d", n)
	}

	mirror.failFor = nil
	n, err = l.Sync(context.Background())
	if err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}
	if n != 1 || mirror.published["order-1"] != 1 {
		t.Errorf("Expected order-1 to be published on retry, got n=%d count=%d", n, mirror.published["order-1"])
	}
}

func TestSync_ListingFailure(t *testing.T) {
	source := &fakeSource{listErr: errors.New("database is locked")}
	l := NewMirrorListener(MirrorListenerConfig{Source: source, Mirror: &fakeMirror{published: map[string]int{}}})

	if _, err := l.Sync(context.Background()); err == nil {
		t.Error("Expected listing error to be returned")
	}
}

func TestCleanup_ForgetsExpiredEntries(t *testing.T) {
	l := NewMirrorListener(MirrorListenerConfig{Retention: time.Hour})
	now := time.Now()
	l.markMirrored("old", now.Add(-2*time.Hour))
	l.markMirrored("new", now.Add(-time.Minute))

	l.cleanup(now)

	if l.isMirrored("old") {
		t.Error("Expected old entry to be removed")
	}
	if !l.isMirrored("new") {
		t.Error("Expected recent entry to be kept")
	}
}

func TestStartStop(t *testing.T) {
	source := &fakeSource{orders: settledOrders(1)}
	mirror := &fakeMirror{published: map[string]int{}}
	l := NewMirrorListener(MirrorListenerConfig{
		Source:          source,
		Mirror:          mirror,
		PollingInterval: 10 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
		Retention:       time.Hour,
	})

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	l.Stop()

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	if mirror.published["order-0"] != 1 {
		t.Errorf("Expected startup catch-up to publish order-0 once, got %d", mirror.published["order-0"])
	}
}

func TestStart_RequiresCollaborators(t *testing.T) {
	l := NewMirrorListener(MirrorListenerConfig{PollingInterval: time.Second})
	if err := l.Start(context.Background()); err == nil {
		t.Error("Expected error without source and mirror")
	}
}
