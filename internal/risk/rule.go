package risk

import (
	"fmt"

	"github.com/lukmusial/tradecore/internal/domain"
)

// RuleContext is the read-only view of engine state a Rule's Check needs.
// It is built fresh for every order so a rule can never retain or mutate
// engine state directly.
type RuleContext struct {
	Order              *domain.Order
	Limits             Limits
	OrdersToday        int64
	NotionalToday      int64
	TotalPnL           int64
	CurrentPositionQty int64
	CurrentNetExposure int64
	CurrentGross       int64
}

// OrderNotional returns the order's quantity*price, or 0 for a market
// order with no price set.
func (c *RuleContext) OrderNotional() int64 {
	if c.Order.LimitPrice == 0 {
		return 0
	}
	return domain.Notional(c.Order.Quantity, c.Order.LimitPrice)
}

// Rejection is the structured result of a failed rule (§7, "Risk
// rejection").
type Rejection struct {
	RuleName string
	Reason   string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.RuleName, r.Reason)
}

// Rule is one pre-trade check. Priority orders the pipeline: lower values
// run first, and the first rejection short-circuits the rest (§4.4).
type Rule interface {
	Name() string
	Priority() int
	Check(ctx *RuleContext) *Rejection
}

type ruleFunc struct {
	name     string
	priority int
	check    func(ctx *RuleContext) *Rejection
}

func (r ruleFunc) Name() string { return r.name }
func (r ruleFunc) Priority() int { return r.priority }
func (r ruleFunc) Check(ctx *RuleContext) *Rejection { return r.check(ctx) }

// DefaultRules returns the eight standard rules from §4.4's table, ready
// to be handed to NewEngine. Priorities match the table exactly.
func DefaultRules() []Rule {
	return []Rule{
		ruleFunc{"MaxDailyLoss", 1, func(ctx *RuleContext) *Rejection {
			if ctx.TotalPnL < -ctx.Limits.MaxDailyLoss {
				return &Rejection{"MaxDailyLoss", fmt.Sprintf("total pnl %d below -maxDailyLoss %d", ctx.TotalPnL, ctx.Limits.MaxDailyLoss)}
			}
			return nil
		}},
		ruleFunc{"MaxDailyOrders", 5, func(ctx *RuleContext) *Rejection {
			if ctx.OrdersToday >= ctx.Limits.MaxOrdersPerDay {
				return &Rejection{"MaxDailyOrders", fmt.Sprintf("orders today %d >= max %d", ctx.OrdersToday, ctx.Limits.MaxOrdersPerDay)}
			}
			return nil
		}},
		ruleFunc{"MaxOrderSize", 10, func(ctx *RuleContext) *Rejection {
			if ctx.Order.Quantity > ctx.Limits.MaxOrderSize {
				return &Rejection{"MaxOrderSize", fmt.Sprintf("order qty %d exceeds max %d", ctx.Order.Quantity, ctx.Limits.MaxOrderSize)}
			}
			return nil
		}},
		ruleFunc{"MaxOrderNotional", 11, func(ctx *RuleContext) *Rejection {
			notional := ctx.OrderNotional()
			if notional > ctx.Limits.MaxOrderNotional {
				return &Rejection{"MaxOrderNotional", fmt.Sprintf("order notional %d exceeds max %d", notional, ctx.Limits.MaxOrderNotional)}
			}
			return nil
		}},
		ruleFunc{"MaxPositionSize", 20, func(ctx *RuleContext) *Rejection {
			projected := ctx.CurrentPositionQty
			if ctx.Order.Side == domain.SideBuy {
				projected += ctx.Order.Quantity
			} else {
				projected -= ctx.Order.Quantity
			}
			if domain.AbsInt64(projected) > ctx.Limits.MaxPositionSize {
				return &Rejection{"MaxPositionSize", fmt.Sprintf("projected position %d exceeds max %d", projected, ctx.Limits.MaxPositionSize)}
			}
			return nil
		}},
		ruleFunc{"MaxDailyNotional", 30, func(ctx *RuleContext) *Rejection {
			total := ctx.NotionalToday + ctx.OrderNotional()
			if total > ctx.Limits.MaxDailyNotional {
				return &Rejection{"MaxDailyNotional", fmt.Sprintf("notional today %d exceeds max %d", total, ctx.Limits.MaxDailyNotional)}
			}
			return nil
		}},
		ruleFunc{"MaxNetExposure", 40, func(ctx *RuleContext) *Rejection {
			notional := ctx.OrderNotional()
			delta := notional
			if ctx.Order.Side == domain.SideSell {
				delta = -notional
			}
			projected := domain.AbsInt64(ctx.CurrentNetExposure + delta)
			if projected > ctx.Limits.MaxNetExposure {
				return &Rejection{"MaxNetExposure", fmt.Sprintf("projected net exposure %d exceeds max %d", projected, ctx.Limits.MaxNetExposure)}
			}
			return nil
		}},
		ruleFunc{"MaxGrossExposure", 41, func(ctx *RuleContext) *Rejection {
			projected := ctx.CurrentGross + ctx.OrderNotional()
			if projected > ctx.Limits.MaxGrossExposure {
				return &Rejection{"MaxGrossExposure", fmt.Sprintf("projected gross exposure %d exceeds max %d", projected, ctx.Limits.MaxGrossExposure)}
			}
			return nil
		}},
	}
}
