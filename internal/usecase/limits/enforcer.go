// Package limits enforces the per-product position limits on requested
// order batches.
package limits

import (
	"fmt"

	strategyv1 "github.com/marketreplay/backtester/internal/domain/strategy/v1"
)

// Enforcer validates requested orders against the position limit table.
type Enforcer struct {
	limits map[string]int
}

// NewEnforcer creates an enforcer using the given limit table.
func NewEnforcer(limits map[string]int) *Enforcer {
	return &Enforcer{limits: limits}
}

// Enforce checks the requested orders of every product against its limit.
// A product whose batch could push the position beyond the limit in either
// direction has its entire order list dropped, not a partial subset. The
// returned violation lines are in product-iteration order. The input map is
// not mutated.
func (e *Enforcer) Enforce(
	products []string,
	orders map[string][]strategyv1.OrderRequest,
	positions map[string]int,
) (map[string][]strategyv1.OrderRequest, []string) {
	accepted := make(map[string][]strategyv1.OrderRequest, len(orders))
	var violations []string

	for _, product := range products {
		productOrders := orders[product]
		if len(productOrders) == 0 {
			continue
		}

		limit := e.limits[product]
		position := positions[product]

		totalLong, totalShort := 0, 0
		for _, order := range productOrders {
			if order.Quantity > 0 {
				totalLong += order.Quantity
			} else if order.Quantity < 0 {
				totalShort += -order.Quantity
			}
		}

		if position+totalLong > limit || position-totalShort < -limit {
			violations = append(violations, fmt.Sprintf("Orders for product %s exceeded limit of %d set", product, limit))
			continue
		}

		accepted[product] = productOrders
	}

	return accepted, violations
}
