package repository

import (
	"context"
	"effisense-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// UsageRepository persists usages. Reads preload Appliance and Appliance.Home.
type UsageRepository interface {
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Usage, error)
	ListByUserBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Usage, error)
	ListAllByUser(ctx context.Context, userID uint) ([]model.Usage, error)
	TopByEnergy(ctx context.Context, userID uint, limit int) ([]model.Usage, error)
	FindByID(ctx context.Context, id uint) (*model.Usage, error)
	Create(ctx context.Context, usage *model.Usage) error
	CreateBatch(ctx context.Context, usages []*model.Usage) error
	Update(ctx context.Context, usage *model.Usage) error
	Delete(ctx context.Context, id uint) error
}

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a UsageRepository.
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// ownedBy scopes usages to appliances in the user's homes.
func (r *usageRepository) ownedBy(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Joins("JOIN appliances ON appliances.id = usages.appliance_id").
		Joins("JOIN homes ON homes.id = appliances.home_id").
		Where("homes.user_id = ?", userID).
		Preload("Appliance.Home")
}

// ListByUser returns one page of the user's usages, newest first.
func (r *usageRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Usage, error) {
	var usages []model.Usage
	err := r.ownedBy(ctx, userID).
		Order("usages.date DESC").Order("usages.id DESC").
		Offset(offset).Limit(limit).
		Find(&usages).Error
	return usages, err
}

// ListByUserBetween returns the user's usages with from <= date < to, newest first.
func (r *usageRepository) ListByUserBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Usage, error) {
	var usages []model.Usage
	err := r.ownedBy(ctx, userID).
		Where("usages.date >= ? AND usages.date < ?", from, to).
		Order("usages.date DESC").Order("usages.id DESC").
		Find(&usages).Error
	return usages, err
}

// ListAllByUser returns every usage of the user ordered by date, for aggregation.
func (r *usageRepository) ListAllByUser(ctx context.Context, userID uint) ([]model.Usage, error) {
	var usages []model.Usage
	err := r.ownedBy(ctx, userID).Order("usages.date").Order("usages.id").Find(&usages).Error
	return usages, err
}

// TopByEnergy returns the user's heaviest usages, ties broken by frequency.
func (r *usageRepository) TopByEnergy(ctx context.Context, userID uint, limit int) ([]model.Usage, error) {
	var usages []model.Usage
	err := r.ownedBy(ctx, userID).
		Order("usages.energy_used DESC").Order("usages.usage_frequency DESC").Order("usages.id").
		Limit(limit).
		Find(&usages).Error
	return usages, err
}

func (r *usageRepository) FindByID(ctx context.Context, id uint) (*model.Usage, error) {
	var usage model.Usage
	if err := r.db.WithContext(ctx).Preload("Appliance.Home").First(&usage, id).Error; err != nil {
		return nil, err
	}
	return &usage, nil
}

func (r *usageRepository) Create(ctx context.Context, usage *model.Usage) error {
	usage.Version = 1
	return r.db.WithContext(ctx).Omit("User", "Appliance").Create(usage).Error
}

func (r *usageRepository) CreateBatch(ctx context.Context, usages []*model.Usage) error {
	if len(usages) == 0 {
		return nil
	}
	for _, u := range usages {
		u.Version = 1
	}
	return r.db.WithContext(ctx).Omit("User", "Appliance").CreateInBatches(usages, 100).Error
}

// Update writes every editable column if usage.Version still matches, then bumps it.
func (r *usageRepository) Update(ctx context.Context, usage *model.Usage) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Usage{}).
		Where("id = ? AND version = ?", usage.ID, usage.Version).
		Updates(map[string]interface{}{
			"user_id":         usage.UserID,
			"appliance_id":    usage.ApplianceID,
			"date":            usage.Date,
			"time":            usage.Time,
			"energy_used":     usage.EnergyUsed,
			"usage_frequency": usage.UsageFrequency,
			"context_notes":   usage.ContextNotes,
			"icon_class":      usage.IconClass,
			"version":         usage.Version + 1,
			"last_modified":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	usage.Version++
	usage.LastModified = now
	return nil
}

func (r *usageRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Usage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
