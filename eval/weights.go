package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights is the evaluator's scoring table. All values are in the same
// centipiece-ish unit as search scores. The table is part of the engine's
// configuration surface, not hard-coded policy.
type Weights struct {
	Man             int `yaml:"man"`
	King            int `yaml:"king"`
	LoneKingBonus   int `yaml:"lone_king_bonus"`
	Center          int `yaml:"center"`
	InnerCenter     int `yaml:"inner_center"`
	AdvancementStep int `yaml:"advancement_step"`
	KingCentral     int `yaml:"king_central"`
}

// DefaultWeights returns the standard table.
func DefaultWeights() Weights {
	return Weights{
		Man:             100,
		King:            330,
		LoneKingBonus:   50,
		Center:          6,
		InnerCenter:     6,
		AdvancementStep: 3,
		KingCentral:     4,
	}
}

// Validate rejects tables that would break the search's score arithmetic.
func (w Weights) Validate() error {
	if w.Man <= 0 {
		return fmt.Errorf("man value must be positive, got %d", w.Man)
	}
	if w.King < w.Man {
		return fmt.Errorf("king value %d below man value %d", w.King, w.Man)
	}
	if w.Center < 0 || w.InnerCenter < 0 || w.AdvancementStep < 0 || w.KingCentral < 0 || w.LoneKingBonus < 0 {
		return fmt.Errorf("positional weights must be non-negative: %+v", w)
	}
	return nil
}

// LoadWeights reads a weight table from a YAML file. Fields omitted from
// the file keep their default values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("reading weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parsing weights file %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, fmt.Errorf("weights file %s: %w", path, err)
	}
	return w, nil
}
