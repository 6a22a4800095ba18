// Package catalog loads the static game data this core consumes: per-area item
// catalogs and per-area skip-quest pools. Both are read-only after load.
package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nvallee/cityforge/internal/domain"
)

type areaFile struct {
	Areas []areaEntry `yaml:"areas" validate:"required,min=1,dive"`
}

type areaEntry struct {
	AreaID string   `yaml:"area_id" validate:"required"`
	Items  []string `yaml:"items" validate:"required,min=1,dive,required"`
}

// LoadAreas reads the area catalog file. Item order within an area matters: it
// is the order items are fed to the unlock level assigner.
func LoadAreas(path string) ([]domain.AreaCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read area catalog: %w", err)
	}

	var file areaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse area catalog: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid area catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Areas))
	catalogs := make([]domain.AreaCatalog, 0, len(file.Areas))
	for _, a := range file.Areas {
		if seen[a.AreaID] {
			return nil, fmt.Errorf("%w: duplicate area %q", domain.ErrInvalidInput, a.AreaID)
		}
		seen[a.AreaID] = true
		catalogs = append(catalogs, domain.AreaCatalog{AreaID: a.AreaID, Items: a.Items})
	}

	return catalogs, nil
}
