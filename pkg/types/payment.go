package types

import "fmt"

type PaymentPurpose string

const (
	PaymentPurposeTariff        PaymentPurpose = "tariff"
	PaymentPurposeWalletDeposit PaymentPurpose = "wallet_deposit"
)

type PaymentAttemptStatus string

const (
	PaymentAttemptStatusPending   PaymentAttemptStatus = "pending"
	PaymentAttemptStatusSucceeded PaymentAttemptStatus = "succeeded"
	PaymentAttemptStatusCanceled  PaymentAttemptStatus = "canceled"
)

// Terminal reports whether no further transitions are accepted.
func (s PaymentAttemptStatus) Terminal() bool {
	return s == PaymentAttemptStatusSucceeded || s == PaymentAttemptStatusCanceled
}

// PaymentMetadata is the closed schema for the correlation fields carried in the
// gateway's opaque metadata map. Unrecognized shapes are rejected on receipt
// rather than trusted.
type PaymentMetadata struct {
	ActorID   string         `json:"actor_id"`
	TariffID  string         `json:"tariff_id,omitempty"`
	AttemptID string         `json:"attempt_id"`
	Purpose   PaymentPurpose `json:"purpose"`
}

func (m *PaymentMetadata) Validate() error {
	if m.ActorID == "" {
		return fmt.Errorf("payment metadata: missing actor_id")
	}
	if m.AttemptID == "" {
		return fmt.Errorf("payment metadata: missing attempt_id")
	}
	switch m.Purpose {
	case PaymentPurposeTariff:
		if m.TariffID == "" {
			return fmt.Errorf("payment metadata: tariff purpose without tariff_id")
		}
	case PaymentPurposeWalletDeposit:
	default:
		return fmt.Errorf("payment metadata: unknown purpose %q", m.Purpose)
	}
	return nil
}

func (m *PaymentMetadata) ToMap() map[string]string {
	out := map[string]string{
		"actor_id":   m.ActorID,
		"attempt_id": m.AttemptID,
		"purpose":    string(m.Purpose),
	}
	if m.TariffID != "" {
		out["tariff_id"] = m.TariffID
	}
	return out
}

func PaymentMetadataFromMap(in map[string]string) (*PaymentMetadata, error) {
	m := &PaymentMetadata{
		ActorID:   in["actor_id"],
		TariffID:  in["tariff_id"],
		AttemptID: in["attempt_id"],
		Purpose:   PaymentPurpose(in["purpose"]),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
