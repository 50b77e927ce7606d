// Package quota evaluates per-tier usage limits before expensive work.
package quota

import (
	"context"
	"fmt"
	"time"

	"snappword/internal/model"
)

// Cap is a usage limit: either a finite count or unlimited.
type Cap struct {
	n         int
	unlimited bool
}

// Limit returns a finite cap of n uses.
func Limit(n int) Cap { return Cap{n: n} }

// Unlimited is the absent cap.
var Unlimited = Cap{unlimited: true}

// Exceeded reports whether used has reached the cap.
func (c Cap) Exceeded(used int) bool {
	return !c.unlimited && used >= c.n
}

// Value returns the finite cap value; zero when unlimited.
func (c Cap) Value() int { return c.n }

// IsUnlimited reports whether the cap is absent.
func (c Cap) IsUnlimited() bool { return c.unlimited }

// Reason explains a quota denial.
type Reason string

// Denial reasons. ReasonNone accompanies an allowed decision.
const (
	ReasonNone    Reason = ""
	ReasonDaily   Reason = "daily"
	ReasonMonthly Reason = "monthly"
)

// Decision is the computed outcome of a quota check. Never persisted.
type Decision struct {
	Allowed bool
	Reason  Reason
	Tier    model.Tier
	Used    int
	Limit   Cap
}

type tierPolicy struct {
	monthly Cap
	daily   Cap
}

// Policy table: screenshots per calendar month, plus a daily anti-abuse cap
// for the otherwise unlimited tier.
var policies = map[model.Tier]tierPolicy{
	model.TierFree:   {monthly: Limit(30), daily: Unlimited},
	model.TierSprout: {monthly: Limit(200), daily: Unlimited},
	model.TierBloom:  {monthly: Unlimited, daily: Limit(500)},
}

// EventCounter counts operational log events for a user since a given time.
type EventCounter interface {
	CountEvents(ctx context.Context, userID, eventType string, since time.Time) (int, error)
}

// Gate checks users against the tier policy table.
type Gate struct {
	counter EventCounter
	now     func() time.Time
}

// NewGate creates a Gate counting usage through the given counter.
func NewGate(counter EventCounter) *Gate {
	return &Gate{counter: counter, now: time.Now}
}

// Check evaluates the user's usage against their tier policy. The daily
// window is the current UTC calendar day, the monthly window the current
// UTC calendar month, and the daily check always runs first. Only
// parse_success events count as usage.
//
// The check is advisory: concurrent requests may both pass before either
// logs its parse_success. That race is accepted.
func (g *Gate) Check(ctx context.Context, user *model.User) (Decision, error) {
	tier := user.EffectiveTier()
	policy, ok := policies[tier]
	if !ok {
		policy = policies[model.TierFree]
	}

	now := g.now().UTC()

	if !policy.daily.IsUnlimited() {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		used, err := g.counter.CountEvents(ctx, user.ID, model.EventParseSuccess, dayStart)
		if err != nil {
			return Decision{}, fmt.Errorf("count daily usage: %w", err)
		}
		if policy.daily.Exceeded(used) {
			return Decision{
				Allowed: false,
				Reason:  ReasonDaily,
				Tier:    tier,
				Used:    used,
				Limit:   policy.daily,
			}, nil
		}
	}

	if !policy.monthly.IsUnlimited() {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		used, err := g.counter.CountEvents(ctx, user.ID, model.EventParseSuccess, monthStart)
		if err != nil {
			return Decision{}, fmt.Errorf("count monthly usage: %w", err)
		}
		if policy.monthly.Exceeded(used) {
			return Decision{
				Allowed: false,
				Reason:  ReasonMonthly,
				Tier:    tier,
				Used:    used,
				Limit:   policy.monthly,
			}, nil
		}
		return Decision{Allowed: true, Tier: tier, Used: used, Limit: policy.monthly}, nil
	}

	return Decision{Allowed: true, Tier: tier, Limit: policy.monthly}, nil
}

// NextMonthlyReset returns the first day of the month after t (UTC).
func NextMonthlyReset(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
