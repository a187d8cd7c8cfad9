package service

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// notFoundOr translates gorm.ErrRecordNotFound into ErrNotFound and wraps anything else.
func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ownedHome loads a home and checks it belongs to userID.
func ownedHome(ctx context.Context, homes repository.HomeRepository, userID, homeID uint) (*model.Home, error) {
	home, err := homes.FindByID(ctx, homeID)
	if err != nil {
		return nil, notFoundOr(err, "find home")
	}
	if home.UserID != userID {
		return nil, ErrForbidden
	}
	return home, nil
}

// ownedAppliance loads an appliance with its home and checks the home belongs to userID.
func ownedAppliance(ctx context.Context, appliances repository.ApplianceRepository, userID, applianceID uint) (*model.Appliance, error) {
	appliance, err := appliances.FindByID(ctx, applianceID)
	if err != nil {
		return nil, notFoundOr(err, "find appliance")
	}
	if appliance.Home == nil || appliance.Home.UserID != userID {
		return nil, ErrForbidden
	}
	return appliance, nil
}

// referencedAppliance is ownedAppliance for a foreign key supplied by a form:
// a missing or foreign appliance is forbidden either way.
func referencedAppliance(ctx context.Context, appliances repository.ApplianceRepository, userID, applianceID uint) (*model.Appliance, error) {
	if applianceID == 0 {
		return nil, NewValidationError("ApplianceId", "The Appliance field is required.")
	}
	appliance, err := ownedAppliance(ctx, appliances, userID, applianceID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrForbidden
	}
	return appliance, err
}

func referencedHome(ctx context.Context, homes repository.HomeRepository, userID, homeID uint) (*model.Home, error) {
	if homeID == 0 {
		return nil, NewValidationError("HomeId", "The Home field is required.")
	}
	home, err := ownedHome(ctx, homes, userID, homeID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrForbidden
	}
	return home, err
}

// staleOr resolves a failed versioned update: ErrNotFound when the row is gone,
// ErrConflict when it still exists under a newer version.
func staleOr(err error, exists func() error) error {
	if !errors.Is(err, repository.ErrStaleVersion) {
		return err
	}
	if findErr := exists(); findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return findErr
	}
	return ErrConflict
}
