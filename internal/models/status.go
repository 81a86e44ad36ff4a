package models

// UserRole distinguishes buyers, sellers and platform administrators
type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// The settlement engine only ever performs pending -> paid. The other edges
// belong to payment processes that live outside the ledger.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentPaid:    {PaymentRefunded},
	PaymentFailed:  {PaymentPending},
}

// CanTransitionTo reports whether the payment state machine allows s -> next
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderProcessing     OrderStatus = "processing"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderShipped        OrderStatus = "shipped"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
	OrderReturned       OrderStatus = "returned"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderProcessing:     {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderShipped, OrderCancelled},
	OrderShipped:        {OrderOutForDelivery, OrderDelivered, OrderReturned},
	OrderOutForDelivery: {OrderDelivered, OrderReturned},
	OrderDelivered:      {OrderReturned},
	OrderCancelled:      {},
	OrderReturned:       {},
}

// Valid reports whether s is a known fulfillment status
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether fulfillment may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)
