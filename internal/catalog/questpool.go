package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nvallee/cityforge/internal/domain"
)

type questFile struct {
	Areas []questAreaEntry `yaml:"areas" validate:"required,min=1,dive"`
}

type questAreaEntry struct {
	AreaID string              `yaml:"area_id" validate:"required"`
	Quests map[string][]string `yaml:"quests" validate:"required"`
}

// QuestPool serves skip-quest texts keyed by area and difficulty tier.
// Read-only after load.
type QuestPool struct {
	quests map[string]map[domain.QuestTier][]string
}

// LoadQuestPool reads the quest pool file.
func LoadQuestPool(path string) (*QuestPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest pool: %w", err)
	}

	var file questFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse quest pool: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid quest pool: %w", err)
	}

	pool := &QuestPool{quests: make(map[string]map[domain.QuestTier][]string, len(file.Areas))}
	for _, a := range file.Areas {
		tiers := make(map[domain.QuestTier][]string, len(a.Quests))
		for tier, texts := range a.Quests {
			switch t := domain.QuestTier(tier); t {
			case domain.QuestTierEasy, domain.QuestTierMedium, domain.QuestTierHard, domain.QuestTierExpert:
				tiers[t] = texts
			default:
				return nil, fmt.Errorf("%w: unknown quest tier %q in area %q", domain.ErrInvalidInput, tier, a.AreaID)
			}
		}
		pool.quests[a.AreaID] = tiers
	}

	return pool, nil
}

// NewQuestPool builds a pool from already-loaded data. Test helper.
func NewQuestPool(quests map[string]map[domain.QuestTier][]string) *QuestPool {
	return &QuestPool{quests: quests}
}

// GetQuestsForArea returns the quest texts for one area and tier. A missing
// area or tier yields an empty slice; the scheduler falls back to filler text.
func (p *QuestPool) GetQuestsForArea(areaID string, tier domain.QuestTier) []string {
	tiers, ok := p.quests[areaID]
	if !ok {
		return nil
	}
	return tiers[tier]
}
