package recipes

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/nutrition"
	"github.com/fdg312/nutri-hub/internal/state"
)

// ErrNoProfile is returned when recipes are requested before onboarding.
var ErrNoProfile = errors.New("onboarding_pending")

// Service keeps the stored recommendation list in step with the profile.
type Service struct {
	store   *state.Store
	fetcher *Fetcher
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewService(store *state.Store, fetcher *Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, fetcher: fetcher, logger: logger}
}

// Current returns the stored list.
func (s *Service) Current() []nutrition.Recipe {
	return s.store.Snapshot().RecommendedRecipes
}

// Refresh fetches for the current profile and stores the result unless the
// profile changed meanwhile. applied is false in that case.
func (s *Service) Refresh(ctx context.Context) (list []nutrition.Recipe, applied bool, err error) {
	profile, ok := s.store.Snapshot().Profile.Get()
	if !ok {
		return nil, false, ErrNoProfile
	}
	list = s.fetcher.Fetch(ctx, profile)
	applied = s.store.SetRecipes(ctx, list, &profile)
	if !applied {
		s.logger.Info("recipes: profile changed during fetch, result dropped")
	}
	return list, applied, nil
}

// RefreshAsync fetches for profile in the background. The caller's request
// context is not used so the fetch outlives it.
func (s *Service) RefreshAsync(profile nutrition.UserProfile) {
	p := profile.Clone()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()
		list := s.fetcher.Fetch(ctx, p)
		if !s.store.SetRecipes(ctx, list, &p) {
			s.logger.Info("recipes: profile changed during fetch, result dropped")
		}
	}()
}

// Wait blocks until background refreshes finish.
func (s *Service) Wait() {
	s.wg.Wait()
}
