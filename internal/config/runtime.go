package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/field"
)

// Runtime is the hot-reloadable part of the configuration.
type Runtime struct {
	QueryManipulation QueryManipulationConfig `yaml:"query_manipulation"`
	Fields            []FieldConfig           `yaml:"fields"`
}

// QueryManipulationConfig holds the enrichment channel settings.
type QueryManipulationConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Blacklist   string `yaml:"blacklist"`
	ExpandQuery *bool  `yaml:"expand_query"` // default: true
}

// FieldConfig declares one logical field.
type FieldConfig struct {
	ID            string             `yaml:"id"`
	DisplayName   string             `yaml:"display_name"`
	Names         []string           `yaml:"names"`
	Type          string             `yaml:"type"` // STRING, NUMBER, DATE, BOOLEAN (default: STRING)
	RedactUnknown bool               `yaml:"redact_unknown"`
	Values        []KnownValueConfig `yaml:"values"`
}

// KnownValueConfig maps a raw backend value onto its display form.
type KnownValueConfig struct {
	Value   string `yaml:"value"`
	Display string `yaml:"display"`
}

// Snapshot is a validated, immutable view of a Runtime.
type Snapshot struct {
	fields   *field.Registry
	settings domain.QueryManipulation
}

// Fields returns the field registry.
func (s *Snapshot) Fields() *field.Registry { return s.fields }

// QueryManipulation returns the enrichment settings.
func (s *Snapshot) QueryManipulation() domain.QueryManipulation { return s.settings }

// LoadRuntime reads and validates a runtime file. An empty path yields the empty snapshot.
func LoadRuntime(path string) (*Snapshot, error) {
	if path == "" {
		return EmptySnapshot(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read runtime config %s: %w", path, err)
	}
	return ParseRuntime(data)
}

// ParseRuntime decodes and validates runtime YAML.
func ParseRuntime(data []byte) (*Snapshot, error) {
	var rt Runtime
	if err := yaml.Unmarshal(expandEnvVars(data), &rt); err != nil {
		return nil, fmt.Errorf("failed to parse runtime config: %w", err)
	}
	return rt.Snapshot()
}

// EmptySnapshot has no fields and enrichment disabled.
func EmptySnapshot() *Snapshot {
	reg, _ := field.NewRegistry()
	return &Snapshot{fields: reg, settings: domain.QueryManipulation{ExpandQuery: true}}
}

// Snapshot validates the runtime configuration.
func (r Runtime) Snapshot() (*Snapshot, error) {
	configs := make([]field.Config, 0, len(r.Fields))
	for i, fc := range r.Fields {
		values := make([]field.KnownValue, 0, len(fc.Values))
		for _, v := range fc.Values {
			values = append(values, field.NewKnownValue(v.Value, v.Display))
		}
		cfg, err := field.New(fc.ID, fc.DisplayName, fc.Names, field.Type(fc.Type), values, fc.RedactUnknown)
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	reg, err := field.NewRegistry(configs...)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}

	expand := true
	if r.QueryManipulation.ExpandQuery != nil {
		expand = *r.QueryManipulation.ExpandQuery
	}
	return &Snapshot{
		fields: reg,
		settings: domain.QueryManipulation{
			Enabled:     r.QueryManipulation.Enabled,
			Blacklist:   r.QueryManipulation.Blacklist,
			ExpandQuery: expand,
		},
	}, nil
}
