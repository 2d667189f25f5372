package lint

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"dbcatalog/internal/filter"
)

// LinterConfig configures one linter instance. The same id may appear more
// than once, each entry becoming its own instance.
type LinterConfig struct {
	ID string `yaml:"id" json:"id"`
	// Enabled defaults to true. A disabled entry still keeps the linter out
	// of the run-all defaults.
	Enabled  *bool     `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Severity *Severity `yaml:"severity,omitempty" json:"severity,omitempty"`
	// Threshold drops lints of lower severity.
	Threshold Severity `yaml:"threshold" json:"threshold"`

	TableInclusionPattern  string `yaml:"table-inclusion-pattern,omitempty" json:"table_inclusion_pattern,omitempty"`
	TableExclusionPattern  string `yaml:"table-exclusion-pattern,omitempty" json:"table_exclusion_pattern,omitempty"`
	ColumnInclusionPattern string `yaml:"column-inclusion-pattern,omitempty" json:"column_inclusion_pattern,omitempty"`
	ColumnExclusionPattern string `yaml:"column-exclusion-pattern,omitempty" json:"column_exclusion_pattern,omitempty"`

	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// IsEnabled reports whether the entry runs.
func (c LinterConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c LinterConfig) rules() (tables, columns filter.Rule, err error) {
	tables, terr := filter.New(c.TableInclusionPattern, c.TableExclusionPattern)
	if terr != nil {
		terr = fmt.Errorf("table pattern: %w", terr)
	}
	columns, cerr := filter.New(c.ColumnInclusionPattern, c.ColumnExclusionPattern)
	if cerr != nil {
		cerr = fmt.Errorf("column pattern: %w", cerr)
	}
	return tables, columns, errors.Join(terr, cerr)
}

type configFile struct {
	Linters []LinterConfig `yaml:"linters"`
}

// ParseConfigs reads linter configs from YAML: either a bare list or a
// document with a top-level "linters" list. An empty document yields no
// configs and no error.
func ParseConfigs(r io.Reader) ([]LinterConfig, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read linter configs: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse linter configs: %w", err)
	}
	var configs []LinterConfig
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
		err = doc.Decode(&configs)
	} else {
		var f configFile
		err = doc.Decode(&f)
		configs = f.Linters
	}
	if err != nil {
		return nil, fmt.Errorf("decode linter configs: %w", err)
	}
	for i, c := range configs {
		if c.ID == "" {
			return nil, fmt.Errorf("linter config %d: missing id", i)
		}
	}
	return configs, nil
}

// ConfigsFromMaps converts generic maps, as decoded from an application
// config file, into linter configs.
func ConfigsFromMaps(ms []map[string]any) ([]LinterConfig, error) {
	if len(ms) == 0 {
		return nil, nil
	}
	b, err := yaml.Marshal(ms)
	if err != nil {
		return nil, fmt.Errorf("encode linter configs: %w", err)
	}
	return ParseConfigs(bytes.NewReader(b))
}
