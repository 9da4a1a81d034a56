package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/types"
)

var (
	// ErrUnknownTariff rejects activation with a tariff id missing from the catalog.
	ErrUnknownTariff = errors.New("subscription: unknown tariff")
	// ErrProductLimitReached rejects product registration past the plan cap.
	ErrProductLimitReached = errors.New("subscription: product limit reached")
	// ErrNoSubscription is returned by product operations for actors without
	// an active subscription.
	ErrNoSubscription = errors.New("subscription: no active subscription")
)

// Manager tracks which tariff an actor purchased and whether it currently
// grants access.
type Manager interface {
	// Activate charges the actor's wallet for the tariff price and activates
	// the subscription in one transaction, so a charge is never collected
	// without a matching active subscription.
	Activate(ctx context.Context, actorID, tariffID string) (*models.Subscription, error)
	// ActivateTx activates without charging, inside a caller-owned transaction.
	// Used when a gateway payment already completed the charge.
	ActivateTx(tx *gorm.DB, actorID, tariffID string, now time.Time) (*models.Subscription, error)
	// Status always recomputes activity from the stored end date.
	Status(ctx context.Context, actorID string) (*types.SubscriptionInfo, error)
	CancelAutoRenew(ctx context.Context, actorID string) error
	ResumeAutoRenew(ctx context.Context, actorID string) error
	RegisterProduct(ctx context.Context, actorID string) error
	ReleaseProduct(ctx context.Context, actorID string) error
}
