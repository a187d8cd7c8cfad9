package service

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/pkg/log"
	"fmt"
)

// ApplianceService manages appliances in the current user's homes.
type ApplianceService interface {
	List(ctx context.Context, userID uint, pageNumber int) (Page[model.Appliance], error)
	Get(ctx context.Context, userID, applianceID uint) (*model.Appliance, error)
	Create(ctx context.Context, userID uint, appliance *model.Appliance) error
	Update(ctx context.Context, userID uint, appliance *model.Appliance) error
	Delete(ctx context.Context, userID, applianceID uint) error
}

type applianceService struct {
	appliances repository.ApplianceRepository
	homes      repository.HomeRepository
	pageSize   int
}

// NewApplianceService creates an ApplianceService.
func NewApplianceService(appliances repository.ApplianceRepository, homes repository.HomeRepository, pageSize int) ApplianceService {
	return &applianceService{appliances: appliances, homes: homes, pageSize: pageSize}
}

func (s *applianceService) List(ctx context.Context, userID uint, pageNumber int) (Page[model.Appliance], error) {
	page, offset, limit := pageWindow(pageNumber, s.pageSize)
	rows, err := s.appliances.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return Page[model.Appliance]{}, fmt.Errorf("list appliances: %w", err)
	}
	return newPage(rows, page, s.pageSize), nil
}

func (s *applianceService) Get(ctx context.Context, userID, applianceID uint) (*model.Appliance, error) {
	return ownedAppliance(ctx, s.appliances, userID, applianceID)
}

// Create stores appliance if its target home belongs to userID.
func (s *applianceService) Create(ctx context.Context, userID uint, appliance *model.Appliance) error {
	home, err := referencedHome(ctx, s.homes, userID, appliance.HomeID)
	if err != nil {
		return err
	}
	appliance.ID = 0
	appliance.Home = nil
	if err := s.appliances.Create(ctx, appliance); err != nil {
		return fmt.Errorf("create appliance: %w", err)
	}
	appliance.Home = home
	log.Infow("appliance created", "userId", userID, "applianceId", appliance.ID, "homeId", home.ID)
	return nil
}

// Update requires both the stored appliance and the (possibly new) target home to belong to userID.
func (s *applianceService) Update(ctx context.Context, userID uint, appliance *model.Appliance) error {
	existing, err := ownedAppliance(ctx, s.appliances, userID, appliance.ID)
	if err != nil {
		return err
	}
	home, err := referencedHome(ctx, s.homes, userID, appliance.HomeID)
	if err != nil {
		return err
	}
	if appliance.Version == 0 {
		appliance.Version = existing.Version
	}

	appliance.Home = nil
	err = s.appliances.Update(ctx, appliance)
	if err != nil {
		return staleOr(err, func() error {
			_, findErr := s.appliances.FindByID(ctx, appliance.ID)
			return findErr
		})
	}
	appliance.Home = home
	return nil
}

// Delete removes the appliance and its usages.
func (s *applianceService) Delete(ctx context.Context, userID, applianceID uint) error {
	if _, err := ownedAppliance(ctx, s.appliances, userID, applianceID); err != nil {
		return err
	}
	if err := s.appliances.DeleteCascade(ctx, applianceID); err != nil {
		return notFoundOr(err, "delete appliance")
	}
	log.Infow("appliance deleted", "userId", userID, "applianceId", applianceID)
	return nil
}
