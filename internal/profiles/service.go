package profiles

import (
	"context"
	"errors"

	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

var ErrOnboardingPending = errors.New("onboarding_pending")

// RecipeRefresher is notified whenever the profile is replaced.
type RecipeRefresher interface {
	RefreshAsync(profile nutrition.UserProfile)
}

// Service содержит бизнес-логику профиля
type Service struct {
	store   *state.Store
	recipes RecipeRefresher
}

// NewService создаёт новый сервис. recipes may be nil.
func NewService(store *state.Store, recipes RecipeRefresher) *Service {
	return &Service{store: store, recipes: recipes}
}

// Get returns the profile or ErrOnboardingPending.
func (s *Service) Get() (nutrition.UserProfile, error) {
	p, ok := s.store.Snapshot().Profile.Get()
	if !ok {
		return nutrition.UserProfile{}, ErrOnboardingPending
	}
	return p, nil
}

// Put replaces the profile wholesale and recomputes targets.
func (s *Service) Put(ctx context.Context, in nutrition.ProfileInput) (nutrition.UserProfile, error) {
	p, err := nutrition.NewUserProfile(in)
	if err != nil {
		return nutrition.UserProfile{}, err
	}
	s.commit(ctx, p)
	return p, nil
}

// ToggleCondition flips one health condition on the stored profile.
func (s *Service) ToggleCondition(ctx context.Context, label string) (nutrition.UserProfile, error) {
	p, err := s.Get()
	if err != nil {
		return nutrition.UserProfile{}, err
	}
	p.HealthConditions = nutrition.ToggleCondition(p.HealthConditions, label)
	s.commit(ctx, p)
	return p, nil
}

// Delete returns the user to onboarding. Logs are kept.
func (s *Service) Delete(ctx context.Context) {
	s.store.ClearProfile(ctx)
}

func (s *Service) commit(ctx context.Context, p nutrition.UserProfile) {
	s.store.SetProfile(ctx, p)
	if s.recipes != nil {
		s.recipes.RefreshAsync(p)
	}
}
