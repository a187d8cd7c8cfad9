package simulator

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
)

type repositoryStore struct {
	users      repository.UserRepository
	appliances repository.ApplianceRepository
	usages     repository.UsageRepository
}

// NewStore adapts the repositories to Store.
func NewStore(users repository.UserRepository, appliances repository.ApplianceRepository, usages repository.UsageRepository) Store {
	return &repositoryStore{users: users, appliances: appliances, usages: usages}
}

func (s *repositoryStore) EnabledUsers(ctx context.Context) ([]Target, error) {
	users, err := s.users.FindSimulationEnabled(ctx)
	if err != nil {
		return nil, err
	}
	targets := make([]Target, 0, len(users))
	for _, u := range users {
		targets = append(targets, Target{UserID: u.ID, IntervalSeconds: u.SelectedSimulationInterval})
	}
	return targets, nil
}

func (s *repositoryStore) AppliancesForUser(ctx context.Context, userID uint) ([]model.Appliance, error) {
	return s.appliances.ListAllByUser(ctx, userID)
}

func (s *repositoryStore) CreateUsage(ctx context.Context, usage *model.Usage) error {
	return s.usages.Create(ctx, usage)
}
