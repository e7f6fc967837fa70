package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/graphling/pkg/types"
)

// Dataset bundles snapshot inputs as loaded from a source.
type Dataset struct {
	Entities      []*types.Entity       `yaml:"entities" json:"entities"`
	Relationships []*types.Relationship `yaml:"relationships" json:"relationships"`
	Passages      []*types.Passage      `yaml:"passages" json:"passages"`
}

// LoadFile reads a YAML dataset file. JSON works too since YAML is a
// superset.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes dataset bytes and normalizes entity types.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	for _, e := range ds.Entities {
		if e == nil {
			continue
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("invalid entity %q: %w", e.ID, err)
		}
		e.Type = types.ParseEntityType(string(e.Type))
	}
	for _, p := range ds.Passages {
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid passage %q: %w", p.ID, err)
		}
	}

	return &ds, nil
}
