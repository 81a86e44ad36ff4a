package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 2

// RateScale is the number of decimal places a commission percentage carries.
const RateScale = 2

// User represents a marketplace account (buyer, seller or admin)
type User struct {
	Id        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Address is a structured postal address. The ledger never interprets it; it is
// stored as a JSON document on the order row.
type Address struct {
	FullName   string `json:"full_name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// IsZero reports whether no field of the address is set
func (a Address) IsZero() bool {
	return a == Address{}
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), a)
	case []byte:
		return json.Unmarshal(v, a)
	default:
		return fmt.Errorf("cannot scan %T into Address", src)
	}
}

// CartItem is one line of a buyer's cart with the unit price frozen at insertion time
type CartItem struct {
	Id        string          `json:"id"`
	UserId    string          `json:"user_id"`
	ProductId string          `json:"product_id"`
	SellerId  string          `json:"seller_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}

// LineTotal returns unit price × quantity
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Order is one shopping event for one buyer. TotalAmount is fixed at checkout.
type Order struct {
	Id              string          `json:"id"`
	UserId          string          `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	OrderStatus     OrderStatus     `json:"order_status"`
	ShippingAddress Address         `json:"shipping_address"`
	BillingAddress  Address         `json:"billing_address"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionId   string          `json:"transaction_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one product line of an order. PriceAtPurchase never changes.
type OrderItem struct {
	Id              string          `json:"id"`
	OrderId         string          `json:"order_id"`
	ProductId       string          `json:"product_id"`
	SellerId        string          `json:"seller_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LineTotal returns price at purchase × quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Transaction represents one seller's settled share of one order (append-only)
type Transaction struct {
	Id             string            `json:"id"`
	OrderId        string            `json:"order_id"`
	SellerId       string            `json:"seller_id"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	SellerAmount   decimal.Decimal   `json:"seller_amount"`
	PlatformAmount decimal.Decimal   `json:"platform_amount"`
	CommissionRate decimal.Decimal   `json:"commission_rate"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

// SellerBalance holds the running totals of a seller profile. A null
// CommissionRate means the configured default applies.
type SellerBalance struct {
	UserId         string              `json:"user_id"`
	CommissionRate decimal.NullDecimal `json:"commission_rate"`
	TotalEarnings  decimal.Decimal     `json:"total_earnings"`
	CurrentBalance decimal.Decimal     `json:"current_balance"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// PlatformRevenue is the administrative aggregate credited with commissions
type PlatformRevenue struct {
	Id           string          `json:"id"`
	AdminUserId  string          `json:"admin_user_id"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
