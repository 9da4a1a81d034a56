package promo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/logctx"
	"github.com/calibrestore/billing/pkg/tool"
)

// Service manages time-boxed promotional entities. Readers always see
// lazily-corrected status; the sweep only catches the stored rows up.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) CreateBanner(ctx context.Context, ownerID, title, imageURL string, ttl time.Duration) (*models.Banner, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("promo: ttl must be positive")
	}
	b := &models.Banner{
		ID:        tool.GenerateUUIDV7(),
		OwnerID:   ownerID,
		Title:     title,
		ImageURL:  imageURL,
		Status:    models.PromoStatusActive,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("promo: create banner: %w", err)
	}
	return b, nil
}

func (s *Service) CreateStory(ctx context.Context, ownerID, mediaURL string, ttl time.Duration) (*models.Story, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("promo: ttl must be positive")
	}
	st := &models.Story{
		ID:        tool.GenerateUUIDV7(),
		OwnerID:   ownerID,
		MediaURL:  mediaURL,
		Status:    models.PromoStatusActive,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		return nil, fmt.Errorf("promo: create story: %w", err)
	}
	return st, nil
}

// ListBanners returns the owner's banners with status corrected for expiry at
// read time, even when the sweep has not persisted it yet.
func (s *Service) ListBanners(ctx context.Context, ownerID string) ([]*models.Banner, error) {
	var banners []*models.Banner
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at desc").Find(&banners).Error; err != nil {
		return nil, fmt.Errorf("promo: list banners: %w", err)
	}
	now := time.Now()
	for _, b := range banners {
		b.Status = b.EffectiveStatus(now)
	}
	return banners, nil
}

func (s *Service) ListStories(ctx context.Context, ownerID string) ([]*models.Story, error) {
	var stories []*models.Story
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at desc").Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("promo: list stories: %w", err)
	}
	now := time.Now()
	for _, st := range stories {
		st.Status = st.EffectiveStatus(now)
	}
	return stories, nil
}

// Sweep persists the expired status for rows whose window has closed. Readers
// do not depend on it; it keeps the stored rows and any external consumers
// consistent.
func (s *Service) Sweep(ctx context.Context) error {
	now := time.Now()

	res := s.db.WithContext(ctx).Model(&models.Banner{}).
		Where("status = ? AND expires_at < ?", models.PromoStatusActive, now).
		Update("status", models.PromoStatusExpired)
	if res.Error != nil {
		return fmt.Errorf("promo: sweep banners: %w", res.Error)
	}
	expiredBanners := res.RowsAffected

	res = s.db.WithContext(ctx).Model(&models.Story{}).
		Where("status = ? AND expires_at < ?", models.PromoStatusActive, now).
		Update("status", models.PromoStatusExpired)
	if res.Error != nil {
		return fmt.Errorf("promo: sweep stories: %w", res.Error)
	}

	if expiredBanners > 0 || res.RowsAffected > 0 {
		logctx.FromCtx(ctx, s.log).Infow("promo_sweep",
			"expired_banners", expiredBanners, "expired_stories", res.RowsAffected)
	}
	return nil
}
