package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories are the data repositories bound to one transaction.
type Repositories struct {
	Homes      HomeRepository
	Appliances ApplianceRepository
	Usages     UsageRepository
}

// UnitOfWork runs a group of repository calls atomically.
type UnitOfWork interface {
	// Do commits when fn returns nil and rolls everything back otherwise.
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a UnitOfWork over db.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Homes:      NewHomeRepository(tx),
			Appliances: NewApplianceRepository(tx),
			Usages:     NewUsageRepository(tx),
		})
	})
}
