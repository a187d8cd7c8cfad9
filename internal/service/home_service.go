package service

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/pkg/log"
	"fmt"
)

// HomeService manages the current user's homes.
type HomeService interface {
	List(ctx context.Context, userID uint, pageNumber int) (Page[model.Home], error)
	ListAll(ctx context.Context, userID uint) ([]model.Home, error)
	Get(ctx context.Context, userID, homeID uint) (*model.Home, error)
	Create(ctx context.Context, userID uint, home *model.Home) error
	Update(ctx context.Context, userID uint, home *model.Home) error
	Delete(ctx context.Context, userID, homeID uint) error
	Appliances(ctx context.Context, userID, homeID uint) ([]model.Appliance, error)
}

type homeService struct {
	homes      repository.HomeRepository
	appliances repository.ApplianceRepository
	pageSize   int
}

// NewHomeService creates a HomeService.
func NewHomeService(homes repository.HomeRepository, appliances repository.ApplianceRepository, pageSize int) HomeService {
	return &homeService{homes: homes, appliances: appliances, pageSize: pageSize}
}

func (s *homeService) List(ctx context.Context, userID uint, pageNumber int) (Page[model.Home], error) {
	page, offset, limit := pageWindow(pageNumber, s.pageSize)
	rows, err := s.homes.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return Page[model.Home]{}, fmt.Errorf("list homes: %w", err)
	}
	return newPage(rows, page, s.pageSize), nil
}

func (s *homeService) ListAll(ctx context.Context, userID uint) ([]model.Home, error) {
	homes, err := s.homes.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list homes: %w", err)
	}
	return homes, nil
}

func (s *homeService) Get(ctx context.Context, userID, homeID uint) (*model.Home, error) {
	return ownedHome(ctx, s.homes, userID, homeID)
}

// Create stores home for userID, ignoring any owner set by the caller.
func (s *homeService) Create(ctx context.Context, userID uint, home *model.Home) error {
	home.ID = 0
	home.UserID = userID
	if err := s.homes.Create(ctx, home); err != nil {
		return fmt.Errorf("create home: %w", err)
	}
	log.Infow("home created", "userId", userID, "homeId", home.ID)
	return nil
}

// Update applies home's editable fields. A zero Version means "whatever is stored".
func (s *homeService) Update(ctx context.Context, userID uint, home *model.Home) error {
	existing, err := ownedHome(ctx, s.homes, userID, home.ID)
	if err != nil {
		return err
	}
	home.UserID = existing.UserID
	if home.Version == 0 {
		home.Version = existing.Version
	}

	err = s.homes.Update(ctx, home)
	if err != nil {
		return staleOr(err, func() error {
			_, findErr := s.homes.FindByID(ctx, home.ID)
			return findErr
		})
	}
	return nil
}

// Delete removes the home with its appliances and their usages.
func (s *homeService) Delete(ctx context.Context, userID, homeID uint) error {
	if _, err := ownedHome(ctx, s.homes, userID, homeID); err != nil {
		return err
	}
	if err := s.homes.DeleteCascade(ctx, homeID); err != nil {
		return notFoundOr(err, "delete home")
	}
	log.Infow("home deleted", "userId", userID, "homeId", homeID)
	return nil
}

// Appliances lists the appliances of an owned home; foreign or missing homes yield ErrForbidden.
func (s *homeService) Appliances(ctx context.Context, userID, homeID uint) ([]model.Appliance, error) {
	if _, err := referencedHome(ctx, s.homes, userID, homeID); err != nil {
		return nil, err
	}
	appliances, err := s.appliances.ListByHome(ctx, homeID)
	if err != nil {
		return nil, fmt.Errorf("list appliances: %w", err)
	}
	return appliances, nil
}
