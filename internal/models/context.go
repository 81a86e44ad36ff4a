package models

import "context"

type settlementContextKey struct{}

// Settlement origins recorded on mirrored transactions.
const (
	OriginHTTP     = "http"
	OriginCLI      = "cli"
	OriginListener = "listener"
	OriginReplay   = "replay"
)

// SettlementContext carries where a settlement request came from through
// context so the Formance mirror can store it as transaction metadata
// without changing the Mirror interface.
type SettlementContext struct {
	Origin    string // one of the Origin* constants
	RequestId string // HTTP request id, empty outside the API
}

// WithSettlementContext attaches origin data to a context.
func WithSettlementContext(ctx context.Context, sc *SettlementContext) context.Context {
	return context.WithValue(ctx, settlementContextKey{}, sc)
}

// GetSettlementContext retrieves origin data from context, or nil if absent.
func GetSettlementContext(ctx context.Context) *SettlementContext {
	sc, _ := ctx.Value(settlementContextKey{}).(*SettlementContext)
	return sc
}
