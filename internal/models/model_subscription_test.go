package models

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/calibrestore/billing/pkg/types"
)

func TestSubscriptionValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{name: "nil subscription", sub: nil, want: false},
		{
			name: "active with future expiry",
			sub:  &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: lo.ToPtr(now.Add(time.Hour))},
			want: true,
		},
		{
			name: "stale active flag past expiry",
			sub:  &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: lo.ToPtr(now.Add(-time.Hour))},
			want: false,
		},
		{
			name: "inactive with future expiry",
			sub:  &Subscription{Status: types.SubscriptionStatusInactive, ExpireAt: lo.ToPtr(now.Add(time.Hour))},
			want: false,
		},
		{
			name: "active without expiry",
			sub:  &Subscription{Status: types.SubscriptionStatusActive},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Valid(now))
		})
	}
}

func TestSubscriptionDaysRemaining(t *testing.T) {
	now := time.Now()

	sub := &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: lo.ToPtr(now.Add(10*24*time.Hour + time.Minute))}
	assert.Equal(t, 10, sub.DaysRemaining(now))

	expired := &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: lo.ToPtr(now.Add(-time.Hour))}
	assert.Equal(t, 0, expired.DaysRemaining(now))
}

func TestSubscriptionCanAddProducts(t *testing.T) {
	now := time.Now()
	future := lo.ToPtr(now.Add(time.Hour))

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{
			name: "under limit",
			sub:  &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: future, MaxProducts: 100, ProductsUsed: 99},
			want: true,
		},
		{
			name: "at limit",
			sub:  &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: future, MaxProducts: 100, ProductsUsed: 100},
			want: false,
		},
		{
			name: "unlimited",
			sub:  &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: future, MaxProducts: types.UnlimitedProducts, ProductsUsed: 100000},
			want: true,
		},
		{
			name: "expired subscription never adds",
			sub:  &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: lo.ToPtr(now.Add(-time.Hour)), MaxProducts: 100},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.CanAddProducts(now))
		})
	}
}
