package store

import (
	"context"

	"marketplace-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// NewOrderParams contains the columns of an order row written at checkout.
type NewOrderParams struct {
	Id              string
	UserId          string
	TotalAmount     decimal.Decimal
	ShippingFee     decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingAddress models.Address
	BillingAddress  models.Address
	PaymentMethod   string
}

// NewOrderItemParams contains one frozen order line.
type NewOrderItemParams struct {
	Id              string
	OrderId         string
	ProductId       string
	SellerId        string
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

// NewTransactionParams contains one seller's settled share.
type NewTransactionParams struct {
	Id             string
	OrderId        string
	SellerId       string
	TotalAmount    decimal.Decimal
	SellerAmount   decimal.Decimal
	PlatformAmount decimal.Decimal
	CommissionRate decimal.Decimal
	Status         models.TransactionStatus
}

// CartItemParams contains a line added to a buyer's cart.
type CartItemParams struct {
	UserId    string
	ProductId string
	SellerId  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// MarkPaidParams contains the columns written by the pending -> paid flip.
type MarkPaidParams struct {
	OrderId       string
	PaymentMethod string
	TransactionId string
}

// LedgerTx is the set of operations available inside a single unit of work.
// Every call made through one LedgerTx commits or rolls back together.
type LedgerTx interface {
	// --- Orders ---
	InsertOrder(ctx context.Context, params NewOrderParams) (*models.Order, error)
	InsertOrderItem(ctx context.Context, params NewOrderItemParams) (*models.OrderItem, error)
	GetOrderForUpdate(ctx context.Context, orderId string) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderId string) ([]models.OrderItem, error)
	// MarkOrderPaid flips payment_status from pending to paid. It returns
	// ErrAlreadySettled when the order is no longer pending.
	MarkOrderPaid(ctx context.Context, params MarkPaidParams) error

	// --- Carts ---
	// GetCartForUpdate locks the buyer and returns their cart lines. Concurrent
	// checkouts of the same cart wait here until the first one commits.
	GetCartForUpdate(ctx context.Context, userId string) ([]models.CartItem, error)
	ClearCart(ctx context.Context, userId string) error

	// --- Sellers ---
	GetSellerBalance(ctx context.Context, sellerId string) (*models.SellerBalance, error)
	CreditSeller(ctx context.Context, sellerId string, amount decimal.Decimal) error

	// --- Ledger ---
	InsertTransaction(ctx context.Context, params NewTransactionParams) (*models.Transaction, error)
	// CreditPlatform adds amount to the platform aggregate identified by
	// accountId, or to the oldest one when accountId is empty. It returns the
	// id of the credited aggregate.
	CreditPlatform(ctx context.Context, accountId string, amount decimal.Decimal) (string, error)
}

// LedgerStore defines the contract that every backend (SQLite, Postgres) must satisfy.
type LedgerStore interface {
	// InTx runs fn inside one database transaction. A non-nil error from fn
	// rolls back every write made through the LedgerTx.
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error

	// --- Users ---
	CreateUser(ctx context.Context, userId, name, email string, role models.UserRole) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)

	// --- Sellers ---
	UpsertSeller(ctx context.Context, userId string, commissionRate decimal.NullDecimal) error
	GetSellerBalance(ctx context.Context, sellerId string) (*models.SellerBalance, error)
	GetSellers(ctx context.Context) ([]models.SellerBalance, error)

	// --- Platform ---
	CreatePlatformAccount(ctx context.Context, adminUserId string) (*models.PlatformRevenue, error)
	GetPlatformAccounts(ctx context.Context) ([]models.PlatformRevenue, error)
	SumPlatformRevenue(ctx context.Context) (decimal.Decimal, error)
	SumCompletedPlatformAmount(ctx context.Context) (decimal.Decimal, error)

	// --- Carts ---
	AddCartItem(ctx context.Context, params CartItemParams) (*models.CartItem, error)
	GetCart(ctx context.Context, userId string) ([]models.CartItem, error)

	// --- Orders ---
	GetOrder(ctx context.Context, orderId string) (*models.Order, error)
	GetOrdersByBuyer(ctx context.Context, userId string, limit, offset int) ([]models.Order, error)
	GetSettledOrders(ctx context.Context, limit, offset int) ([]models.Order, error)
	// UpdateOrderStatus moves order_status from -> to. It returns
	// ErrInvalidStatusTransition when the stored status is no longer from.
	UpdateOrderStatus(ctx context.Context, orderId string, from, to models.OrderStatus) error

	// --- Transactions ---
	GetTransactionsByOrder(ctx context.Context, orderId string) ([]models.Transaction, error)
	GetSellerTransactions(ctx context.Context, sellerId string, limit, offset int) ([]models.Transaction, error)
	SumSellerAmount(ctx context.Context, sellerId string) (decimal.Decimal, error)
	ReconcileSellerBalance(ctx context.Context, sellerId string) error

	// --- Lifecycle ---
	HealthCheck(ctx context.Context) error
	Close()
}
