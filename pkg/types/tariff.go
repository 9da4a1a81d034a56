package types

import "time"

type TariffDuration string

const (
	TariffDurationTrial TariffDuration = "trial"
	TariffDurationMonth TariffDuration = "month"
	TariffDurationYear  TariffDuration = "year"
)

// UnlimitedProducts marks a tariff without a product-count cap.
const UnlimitedProducts = -1

// Tariff is an immutable catalog entry loaded from configuration.
type Tariff struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
	// Price is in minor currency units.
	Price       int64          `json:"price" mapstructure:"price"`
	Currency    string         `json:"currency" mapstructure:"currency"`
	Duration    TariffDuration `json:"duration" mapstructure:"duration"`
	MaxProducts int            `json:"max_products" mapstructure:"max_products"`
	Features    []string       `json:"features" mapstructure:"features"`
}

func (t *Tariff) Unlimited() bool {
	return t.MaxProducts == UnlimitedProducts
}

// ExpiryFrom computes the subscription end time for a period starting at from.
func (t *Tariff) ExpiryFrom(from time.Time) time.Time {
	switch t.Duration {
	case TariffDurationTrial:
		return from.Add(7 * 24 * time.Hour)
	case TariffDurationYear:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
