package repository

import (
	"context"
	"effisense-go/internal/model"
	"time"

	"gorm.io/gorm"
)

// HomeRepository persists homes. Deletes cascade to appliances and usages.
type HomeRepository interface {
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Home, error)
	ListAllByUser(ctx context.Context, userID uint) ([]model.Home, error)
	FindByID(ctx context.Context, id uint) (*model.Home, error)
	Create(ctx context.Context, home *model.Home) error
	CreateBatch(ctx context.Context, homes []*model.Home) error
	Update(ctx context.Context, home *model.Home) error
	DeleteCascade(ctx context.Context, id uint) error
	DeleteAllForUser(ctx context.Context, userID uint) error
}

type homeRepository struct {
	db *gorm.DB
}

// NewHomeRepository creates a HomeRepository.
func NewHomeRepository(db *gorm.DB) HomeRepository {
	return &homeRepository{db: db}
}

// ListByUser returns one page of the user's homes ordered by name.
func (r *homeRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Home, error) {
	var homes []model.Home
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("house_name").Order("id").
		Offset(offset).Limit(limit).
		Find(&homes).Error
	return homes, err
}

func (r *homeRepository) ListAllByUser(ctx context.Context, userID uint) ([]model.Home, error) {
	var homes []model.Home
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("house_name").Order("id").Find(&homes).Error
	return homes, err
}

func (r *homeRepository) FindByID(ctx context.Context, id uint) (*model.Home, error) {
	var home model.Home
	if err := r.db.WithContext(ctx).First(&home, id).Error; err != nil {
		return nil, err
	}
	return &home, nil
}

func (r *homeRepository) Create(ctx context.Context, home *model.Home) error {
	home.Version = 1
	return r.db.WithContext(ctx).Create(home).Error
}

func (r *homeRepository) CreateBatch(ctx context.Context, homes []*model.Home) error {
	if len(homes) == 0 {
		return nil
	}
	for _, h := range homes {
		h.Version = 1
	}
	return r.db.WithContext(ctx).CreateInBatches(homes, 100).Error
}

// Update writes every editable column if home.Version still matches, then bumps it.
func (r *homeRepository) Update(ctx context.Context, home *model.Home) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Home{}).
		Where("id = ? AND version = ?", home.ID, home.Version).
		Updates(map[string]interface{}{
			"house_name":       home.HouseName,
			"size":             home.Size,
			"heating_type":     home.HeatingType,
			"building_type":    home.BuildingType,
			"insulation_level": home.InsulationLevel,
			"year_built":       home.YearBuilt,
			"description":      home.Description,
			"address":          home.Address,
			"location":         home.Location,
			"version":          home.Version + 1,
			"last_modified":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	home.Version++
	home.LastModified = now
	return nil
}

// DeleteCascade removes the home, its appliances and their usages in one transaction.
func (r *homeRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applianceIDs := tx.Model(&model.Appliance{}).Select("id").Where("home_id = ?", id)
		if err := tx.Where("appliance_id IN (?)", applianceIDs).Delete(&model.Usage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("home_id = ?", id).Delete(&model.Appliance{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Home{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteAllForUser removes every home of the user with the same cascade as DeleteCascade.
func (r *homeRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		homeIDs := tx.Model(&model.Home{}).Select("id").Where("user_id = ?", userID)
		applianceIDs := tx.Model(&model.Appliance{}).Select("id").Where("home_id IN (?)", homeIDs)
		if err := tx.Where("appliance_id IN (?)", applianceIDs).Delete(&model.Usage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("home_id IN (?)", homeIDs).Delete(&model.Appliance{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.Home{}).Error
	})
}
