package service

import (
	"context"
	"effisense-go/internal/live"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/pkg/log"
	"fmt"
	"time"
)

const publishTimeout = 5 * time.Second

// UsageService manages usages of the current user's appliances.
type UsageService interface {
	List(ctx context.Context, userID uint, pageNumber int) (Page[model.Usage], error)
	FilterByDate(ctx context.Context, userID uint, day *time.Time) ([]model.Usage, error)
	Get(ctx context.Context, userID, usageID uint) (*model.Usage, error)
	Create(ctx context.Context, userID uint, usage *model.Usage) error
	Update(ctx context.Context, userID uint, usage *model.Usage) error
	Delete(ctx context.Context, userID, usageID uint) error
}

type usageService struct {
	usages     repository.UsageRepository
	appliances repository.ApplianceRepository
	publisher  live.Publisher
	pageSize   int
}

// NewUsageService creates a UsageService. Created usages are announced through publisher.
func NewUsageService(usages repository.UsageRepository, appliances repository.ApplianceRepository, publisher live.Publisher, pageSize int) UsageService {
	return &usageService{usages: usages, appliances: appliances, publisher: publisher, pageSize: pageSize}
}

func (s *usageService) List(ctx context.Context, userID uint, pageNumber int) (Page[model.Usage], error) {
	page, offset, limit := pageWindow(pageNumber, s.pageSize)
	rows, err := s.usages.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return Page[model.Usage]{}, fmt.Errorf("list usages: %w", err)
	}
	return newPage(rows, page, s.pageSize), nil
}

// FilterByDate returns the usages recorded on day, newest first; nil returns all of them.
func (s *usageService) FilterByDate(ctx context.Context, userID uint, day *time.Time) ([]model.Usage, error) {
	if day == nil {
		all, err := s.usages.ListAllByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list usages: %w", err)
		}
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
		return all, nil
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	usages, err := s.usages.ListByUserBetween(ctx, userID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("filter usages: %w", err)
	}
	return usages, nil
}

func (s *usageService) Get(ctx context.Context, userID, usageID uint) (*model.Usage, error) {
	usage, err := s.usages.FindByID(ctx, usageID)
	if err != nil {
		return nil, notFoundOr(err, "find usage")
	}
	if usage.Appliance == nil || usage.Appliance.Home == nil || usage.Appliance.Home.UserID != userID {
		return nil, ErrForbidden
	}
	return usage, nil
}

// Create stores usage for an appliance the user owns and announces it to live subscribers.
func (s *usageService) Create(ctx context.Context, userID uint, usage *model.Usage) error {
	appliance, err := referencedAppliance(ctx, s.appliances, userID, usage.ApplianceID)
	if err != nil {
		return err
	}
	if err := validateUsage(usage); err != nil {
		return err
	}

	usage.ID = 0
	usage.UserID = appliance.Home.UserID
	usage.Appliance = nil
	if err := s.usages.Create(ctx, usage); err != nil {
		return fmt.Errorf("create usage: %w", err)
	}
	usage.Appliance = appliance
	log.Infow("usage created", "userId", userID, "usageId", usage.ID, "applianceId", appliance.ID)

	s.publish(ctx, usage, appliance)
	return nil
}

func (s *usageService) publish(ctx context.Context, usage *model.Usage, appliance *model.Appliance) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishUsageCreated(pubCtx, model.NewUsageEvent(usage, appliance)); err != nil {
		log.Warnw("usage event not delivered to every sink", "usageId", usage.ID, "error", err)
	}
}

// Update requires both the stored usage and the (possibly new) appliance to belong to userID.
func (s *usageService) Update(ctx context.Context, userID uint, usage *model.Usage) error {
	existing, err := s.Get(ctx, userID, usage.ID)
	if err != nil {
		return err
	}
	appliance, err := referencedAppliance(ctx, s.appliances, userID, usage.ApplianceID)
	if err != nil {
		return err
	}
	if err := validateUsage(usage); err != nil {
		return err
	}
	if usage.Version == 0 {
		usage.Version = existing.Version
	}

	usage.UserID = appliance.Home.UserID
	usage.Appliance = nil
	err = s.usages.Update(ctx, usage)
	if err != nil {
		return staleOr(err, func() error {
			_, findErr := s.usages.FindByID(ctx, usage.ID)
			return findErr
		})
	}
	usage.Appliance = appliance
	return nil
}

func (s *usageService) Delete(ctx context.Context, userID, usageID uint) error {
	if _, err := s.Get(ctx, userID, usageID); err != nil {
		return err
	}
	if err := s.usages.Delete(ctx, usageID); err != nil {
		return notFoundOr(err, "delete usage")
	}
	log.Infow("usage deleted", "userId", userID, "usageId", usageID)
	return nil
}

func validateUsage(usage *model.Usage) error {
	verr := &ValidationError{}
	if usage.EnergyUsed < 0 {
		verr.Add("EnergyUsed", "Energy used cannot be negative.")
	}
	if !usage.UsageFrequency.Valid() {
		verr.Add("UsageFrequency", "Usage frequency must be between 1 and 5.")
	}
	if usage.Date.IsZero() {
		verr.Add("Date", "The Date field is required.")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
