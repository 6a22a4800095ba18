// Package progression owns the player's level and experience and converts
// experience into level-ups along an exponential cost curve.
package progression

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/metrics"
	"github.com/nvallee/cityforge/internal/store"
)

// Service is the level progression engine.
type Service interface {
	// AddExperience banks XP and performs as many level-ups as the new total
	// pays for. One level-up event fires per level gained.
	AddExperience(ctx context.Context, amount int) (*XPAwardResult, error)

	// State returns the current level and banked experience.
	State(ctx context.Context) domain.LevelState

	// ExperienceCost returns the XP needed to advance past the given level.
	ExperienceCost(level int) int
}

// XPAwardResult summarizes one AddExperience call.
type XPAwardResult struct {
	XPGained     int  `json:"xp_gained"`
	NewLevel     int  `json:"new_level"`
	LevelsGained int  `json:"levels_gained"`
	LeveledUp    bool `json:"leveled_up"`
}

// Config holds the curve parameters.
type Config struct {
	XPBase       int
	XPMultiplier float64
}

type service struct {
	mu        sync.Mutex
	state     domain.LevelState
	cfg       Config
	kv        store.KV
	publisher event.Bus
}

// NewService restores level state from the store (defaulting to level 1 / 0 XP
// on absence or corruption) and returns the engine.
func NewService(kv store.KV, publisher event.Bus, cfg Config) Service {
	s := &service{
		state:     domain.DefaultLevelState(),
		cfg:       cfg,
		kv:        kv,
		publisher: publisher,
	}
	s.load()
	return s
}

func (s *service) load() {
	raw, ok := s.kv.Get(store.KeyLevelState)
	if !ok {
		return
	}

	var state domain.LevelState
	if err := json.Unmarshal([]byte(raw), &state); err != nil || state.Level < 1 || state.Experience < 0 {
		logger.FromContext(context.Background()).Warn("Corrupt level state, resetting to defaults", "error", err)
		s.kv.Delete(store.KeyLevelState)
		return
	}
	s.state = state
}

func (s *service) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		logger.FromContext(context.Background()).Error("Failed to serialize level state", "error", err)
		return
	}
	s.kv.Set(store.KeyLevelState, string(data))
}

func (s *service) AddExperience(ctx context.Context, amount int) (*XPAwardResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: experience amount must be >= 0, got %d", domain.ErrInvalidInput, amount)
	}

	s.mu.Lock()
	oldLevel := s.state.Level
	s.state.Experience += amount

	// One XP award can span several levels; pay for each in turn.
	var newLevels []int
	for s.state.Experience >= s.ExperienceCost(s.state.Level) {
		s.state.Experience -= s.ExperienceCost(s.state.Level)
		s.state.Level++
		newLevels = append(newLevels, s.state.Level)
	}

	result := &XPAwardResult{
		XPGained:     amount,
		NewLevel:     s.state.Level,
		LevelsGained: s.state.Level - oldLevel,
		LeveledUp:    s.state.Level > oldLevel,
	}
	s.persist()
	s.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Info("Awarded experience", "xp", amount, "new_level", result.NewLevel, "leveled_up", result.LeveledUp)

	for _, level := range newLevels {
		metrics.LevelUps.Inc()
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, event.NewLevelUpEvent(level)); err != nil {
				log.Warn("Failed to publish level-up event", "level", level, "error", err)
			}
		}
	}

	return result, nil
}

func (s *service) State(ctx context.Context) domain.LevelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExperienceCost implements round(base * multiplier^(level-1)). Strictly
// increasing for multiplier > 1.
func (s *service) ExperienceCost(level int) int {
	return int(math.Round(float64(s.cfg.XPBase) * math.Pow(s.cfg.XPMultiplier, float64(level-1))))
}
