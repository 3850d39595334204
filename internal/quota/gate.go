// Package quota enforces the daily per-user image-generation limit
// against an external atomic counter service.
package quota

import (
	"context"

	"github.com/jfernandezp/agente-ia-uni/internal/domain"
	"github.com/jfernandezp/agente-ia-uni/internal/observability"
)

// Gate wraps a QuotaStore with the "at most N images per user per
// calendar day" policy. Store failures always read as limit reached:
// over-granting a paid image call is costlier than a false denial.
type Gate struct {
	store     domain.QuotaStore
	maxPerDay int
}

func NewGate(store domain.QuotaStore, maxPerDay int) *Gate {
	return &Gate{
		store:     store,
		maxPerDay: maxPerDay,
	}
}

// CheckAndIncrement performs a single atomic add-1-and-return against
// the store. The increment is not rolled back when the new total lands
// past the limit; the at-most-one-over leak is accepted because the
// store offers no compensating transaction.
func (g *Gate) CheckAndIncrement(ctx context.Context, userID, day string) (allowed bool, remaining int) {
	newTotal, err := g.store.IncrementAndGet(ctx, userID, day)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("quota increment failed",
			"user_id", userID,
			"day", day,
			"error", err)
		return false, 0
	}

	if newTotal > g.maxPerDay {
		observability.LoggerFromContext(ctx).Warn("daily image limit exceeded",
			"user_id", userID,
			"day", day,
			"count", newTotal)
		return false, 0
	}

	return true, g.maxPerDay - newTotal
}

// PeekRemaining reads the counter without incrementing. A missing
// record means the full allowance; a store error means zero.
func (g *Gate) PeekRemaining(ctx context.Context, userID, day string) int {
	count, found, err := g.store.Get(ctx, userID, day)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("quota read failed",
			"user_id", userID,
			"day", day,
			"error", err)
		return 0
	}
	if !found {
		return g.maxPerDay
	}

	remaining := g.maxPerDay - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MaxPerDay reports the configured daily allowance.
func (g *Gate) MaxPerDay() int {
	return g.maxPerDay
}
