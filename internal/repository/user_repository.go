// Package repository holds the GORM and Redis backed data access layer.
package repository

import (
	"context"
	"effisense-go/internal/model"

	"gorm.io/gorm"
)

// UserRepository persists accounts and their simulation settings.
type UserRepository interface {
	Create(user *model.User) error
	FindByUsername(username string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByID(userID uint) (*model.User, error)
	Update(user *model.User) error
	UpdateSimulation(userID uint, enabled bool, intervalSeconds int) error
	FindSimulationEnabled(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// UpdateSimulation writes both simulation columns in one statement.
func (r *userRepository) UpdateSimulation(userID uint, enabled bool, intervalSeconds int) error {
	res := r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_simulation_enabled":        enabled,
		"selected_simulation_interval": intervalSeconds,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindSimulationEnabled returns every user opted into the simulator.
func (r *userRepository) FindSimulationEnabled(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("is_simulation_enabled = ?", true).Order("id").Find(&users).Error
	return users, err
}
