package repository

import (
	"context"
	"effisense-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// ApplianceRepository persists appliances. Reads preload the owning Home.
type ApplianceRepository interface {
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Appliance, error)
	ListAllByUser(ctx context.Context, userID uint) ([]model.Appliance, error)
	ListByHome(ctx context.Context, homeID uint) ([]model.Appliance, error)
	FindByID(ctx context.Context, id uint) (*model.Appliance, error)
	Create(ctx context.Context, appliance *model.Appliance) error
	CreateBatch(ctx context.Context, appliances []*model.Appliance) error
	Update(ctx context.Context, appliance *model.Appliance) error
	DeleteCascade(ctx context.Context, id uint) error
}

type applianceRepository struct {
	db *gorm.DB
}

// NewApplianceRepository creates an ApplianceRepository.
func NewApplianceRepository(db *gorm.DB) ApplianceRepository {
	return &applianceRepository{db: db}
}

func (r *applianceRepository) ownedBy(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Joins("JOIN homes ON homes.id = appliances.home_id").
		Where("homes.user_id = ?", userID).
		Preload("Home")
}

// ListByUser returns one page of appliances in the user's homes ordered by name.
func (r *applianceRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Appliance, error) {
	var appliances []model.Appliance
	err := r.ownedBy(ctx, userID).
		Order("appliances.name").Order("appliances.id").
		Offset(offset).Limit(limit).
		Find(&appliances).Error
	return appliances, err
}

func (r *applianceRepository) ListAllByUser(ctx context.Context, userID uint) ([]model.Appliance, error) {
	var appliances []model.Appliance
	err := r.ownedBy(ctx, userID).Order("appliances.name").Order("appliances.id").Find(&appliances).Error
	return appliances, err
}

func (r *applianceRepository) ListByHome(ctx context.Context, homeID uint) ([]model.Appliance, error) {
	var appliances []model.Appliance
	err := r.db.WithContext(ctx).Preload("Home").
		Where("home_id = ?", homeID).
		Order("name").Order("id").
		Find(&appliances).Error
	return appliances, err
}

func (r *applianceRepository) FindByID(ctx context.Context, id uint) (*model.Appliance, error) {
	var appliance model.Appliance
	if err := r.db.WithContext(ctx).Preload("Home").First(&appliance, id).Error; err != nil {
		return nil, err
	}
	return &appliance, nil
}

func (r *applianceRepository) Create(ctx context.Context, appliance *model.Appliance) error {
	appliance.Version = 1
	return r.db.WithContext(ctx).Omit("Home").Create(appliance).Error
}

func (r *applianceRepository) CreateBatch(ctx context.Context, appliances []*model.Appliance) error {
	if len(appliances) == 0 {
		return nil
	}
	for _, a := range appliances {
		a.Version = 1
	}
	return r.db.WithContext(ctx).Omit("Home").CreateInBatches(appliances, 100).Error
}

// Update writes every editable column if appliance.Version still matches, then bumps it.
func (r *applianceRepository) Update(ctx context.Context, appliance *model.Appliance) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Appliance{}).
		Where("id = ? AND version = ?", appliance.ID, appliance.Version).
		Updates(map[string]interface{}{
			"home_id":           appliance.HomeID,
			"name":              appliance.Name,
			"brand":             appliance.Brand,
			"power_rating":      appliance.PowerRating,
			"efficiency_rating": appliance.EfficiencyRating,
			"notes":             appliance.Notes,
			"purchase_date":     appliance.PurchaseDate,
			"icon_class":        appliance.IconClass,
			"version":           appliance.Version + 1,
			"last_modified":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	appliance.Version++
	appliance.LastModified = now
	return nil
}

// DeleteCascade removes the appliance and all of its usages in one transaction.
func (r *applianceRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appliance_id = ?", id).Delete(&model.Usage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Appliance{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
