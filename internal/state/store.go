package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/nutrition"
)

// ErrMealNotFound is returned by lookups of a meal id that is not in the log.
// Transitions themselves never fail on unknown ids.
var ErrMealNotFound = errors.New("meal_not_found")

// Persister durably stores a full snapshot.
type Persister interface {
	Save(ctx context.Context, s AppState) error
}

// Store serializes transitions over the current AppState. Every dispatch is
// applied to the latest committed state, the streak is recomputed and the
// full snapshot is handed to the persister before subscribers are notified.
type Store struct {
	mu        sync.RWMutex
	state     AppState
	persister Persister
	logger    *zap.Logger
	now       func() time.Time
	loc       *time.Location
	newID     func() string

	subMu   sync.Mutex
	subs    map[int]chan AppState
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithPersister saves a snapshot after every commit.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the timezone used for date keys.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator overrides uuid meal ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates a store holding initial with its streak recomputed for
// today.
func NewStore(initial AppState, opts ...Option) *Store {
	s := &Store{
		state:  initial.Clone(),
		logger: zap.NewNop(),
		now:    time.Now,
		loc:    time.Local,
		newID:  uuid.NewString,
		subs:   make(map[int]chan AppState),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = WithStreak(s.state, s.Today())
	return s
}

// Snapshot returns a copy of the current state. The streak is derived for
// the current day, so it stays right across midnight without a commit.
func (s *Store) Snapshot() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return WithStreak(s.state.Clone(), s.Today())
}

// Today returns the date key of the current local day.
func (s *Store) Today() string {
	return nutrition.DateKey(s.now().In(s.loc))
}

// Location returns the timezone used for date keys.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Dispatch commits one transition and returns the resulting state.
// Persistence failures are logged and do not roll the transition back.
func (s *Store) Dispatch(ctx context.Context, a Action) AppState {
	_, next := s.commit(ctx, a)
	return next
}

// commit applies a and returns the state it was applied to alongside the
// result. Transitions are copy-on-write, so prev is never mutated later.
func (s *Store) commit(ctx context.Context, a Action) (prev, next AppState) {
	s.mu.Lock()
	prev = s.state
	next = WithStreak(Reduce(prev, a), s.Today())
	s.state = next
	if s.persister != nil {
		if err := s.persister.Save(context.WithoutCancel(ctx), next); err != nil {
			s.logger.Error("state: save failed", zap.Error(err))
		}
	}
	out := next.Clone()
	s.mu.Unlock()

	s.notify(out)
	return prev, out
}

// AddMeal stamps draft with a fresh id and the current time and appends it
// to the log of date. An empty date means today.
func (s *Store) AddMeal(ctx context.Context, date string, draft nutrition.MealDraft) (nutrition.Meal, error) {
	if err := draft.Validate(); err != nil {
		return nutrition.Meal{}, err
	}
	if date == "" {
		date = s.Today()
	} else if _, err := nutrition.ParseDateKey(date, s.loc); err != nil {
		return nutrition.Meal{}, err
	}

	meal := nutrition.Meal{
		ID:        s.newID(),
		Name:      draft.Name,
		Calories:  draft.Calories,
		Protein:   draft.Protein,
		Carbs:     draft.Carbs,
		Fat:       draft.Fat,
		Timestamp: s.now().UnixMilli(),
	}
	s.Dispatch(ctx, AddMealAction{Date: date, Meal: meal})
	return meal, nil
}

// UpdateMeal edits a meal. ErrMealNotFound tells the caller nothing changed.
func (s *Store) UpdateMeal(ctx context.Context, date, mealID string, draft nutrition.MealDraft) (nutrition.Meal, error) {
	if err := draft.Validate(); err != nil {
		return nutrition.Meal{}, err
	}
	if date == "" {
		date = s.Today()
	}

	next := s.Dispatch(ctx, UpdateMealAction{Date: date, MealID: mealID, Draft: draft})
	l := next.Logs[date]
	if i := indexOf(l.Meals, mealID); i >= 0 {
		return l.Meals[i], nil
	}
	return nutrition.Meal{}, ErrMealNotFound
}

// RemoveMeal deletes a meal and reports whether it existed.
func (s *Store) RemoveMeal(ctx context.Context, date, mealID string) bool {
	if date == "" {
		date = s.Today()
	}
	prev, _ := s.commit(ctx, RemoveMealAction{Date: date, MealID: mealID})
	return indexOf(prev.Logs[date].Meals, mealID) >= 0
}

// SetProfile stores a completed profile.
func (s *Store) SetProfile(ctx context.Context, p nutrition.UserProfile) AppState {
	return s.Dispatch(ctx, SetProfileAction{Profile: p})
}

// ClearProfile returns to onboarding.
func (s *Store) ClearProfile(ctx context.Context) AppState {
	return s.Dispatch(ctx, ClearProfileAction{})
}

// SetRecipes replaces recommendations if forProfile is still current.
// A nil forProfile replaces unconditionally. It reports whether the list was applied.
func (s *Store) SetRecipes(ctx context.Context, recipes []nutrition.Recipe, forProfile *nutrition.UserProfile) bool {
	next := s.Dispatch(ctx, SetRecipesAction{Recipes: recipes, ForProfile: forProfile})
	if forProfile == nil {
		return true
	}
	cur, ok := next.Profile.Get()
	return ok && SameProfile(cur, *forProfile)
}

// Reset replaces everything with the default state.
func (s *Store) Reset(ctx context.Context) AppState {
	return s.Dispatch(ctx, ResetAction{})
}

// Subscribe returns a channel receiving the state after each commit. Slow
// readers only see the latest state. Call cancel to stop.
func (s *Store) Subscribe() (<-chan AppState, func()) {
	ch := make(chan AppState, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Store) notify(st AppState) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st.Clone():
		default:
		}
	}
}
