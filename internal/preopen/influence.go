package preopen

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	UnmappedSector    = "Others"
	UnmappedInfluence = 0.1
)

//go:embed influence.yaml
var defaultInfluenceYAML []byte

type Weight struct {
	Sector    string  `yaml:"sector"`
	Influence float64 `yaml:"influence"`
}

// InfluenceTable maps instrument symbols to their sector and influence weight.
type InfluenceTable map[string]Weight

// Lookup never fails: unmapped symbols are discounted, not skipped.
func (t InfluenceTable) Lookup(symbol string) Weight {
	if w, ok := t[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return w
	}
	return Weight{Sector: UnmappedSector, Influence: UnmappedInfluence}
}

// DefaultInfluenceTable parses the embedded constituent table.
func DefaultInfluenceTable() (InfluenceTable, error) {
	return ParseInfluenceTable(defaultInfluenceYAML)
}

// LoadInfluenceTable reads the table from path, or the embedded default when path is empty.
func LoadInfluenceTable(path string) (InfluenceTable, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultInfluenceTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read influence table: %w", err)
	}
	return ParseInfluenceTable(data)
}

func ParseInfluenceTable(data []byte) (InfluenceTable, error) {
	raw := map[string]Weight{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse influence table: %w", err)
	}
	table := make(InfluenceTable, len(raw))
	for symbol, w := range raw {
		if w.Influence <= 0 {
			return nil, fmt.Errorf("influence for %s must be positive", symbol)
		}
		if w.Sector == "" {
			w.Sector = UnmappedSector
		}
		table[strings.ToUpper(symbol)] = w
	}
	return table, nil
}
