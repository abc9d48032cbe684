package config

import (
	"fmt"
	"os"

	"github.com/coaching-dashboard/internal/table"
	"gopkg.in/yaml.v3"
)

// Presets configures the filter pills and sort order of the dashboard tables
type Presets struct {
	CustomerFilters []string       `yaml:"customer_filters"`
	FollowupFilters []string       `yaml:"followup_filters"`
	Priority        map[string]int `yaml:"priority"`
}

// DefaultPresets returns the presets used when no file is configured
func DefaultPresets() *Presets {
	return &Presets{
		CustomerFilters: []string{
			table.All,
			table.StatusActive,
			table.StatusPending,
			table.StatusExpiringSoon,
			table.StatusExpired,
			table.StatusInactive,
			table.StatusBlocked,
		},
		FollowupFilters: []string{table.All, "Pending", "Contacted", "Converted", "Not Interested"},
		Priority: map[string]int{
			table.StatusExpiringSoon: 1,
			table.StatusActive:       2,
			table.StatusExpired:      3,
		},
	}
}

// LoadPresets reads a YAML presets file over the defaults. An empty path
// returns the defaults. Keys absent from the file keep their default value;
// priority entries are merged into the default ranks.
func LoadPresets(path string) (*Presets, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	if err := yaml.Unmarshal(data, presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}
	return presets, nil
}

// PriorityTable returns the configured sort ranks
func (p *Presets) PriorityTable() table.PriorityTable {
	return table.PriorityTable(p.Priority)
}
