// Package config holds the rule configuration consumed by the compiler and
// loads it from YAML or JSON.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"golt/pkg/dsl"
	"golt/pkg/kernel"
	"golt/pkg/layout"
)

// StateField declares one packed per-cell field.
type StateField struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"` // "flag" or "number"
	Length int    `yaml:"length,omitempty"`
}

// NeighbourCount declares one kernel. Name is the mapping key it was listed
// under.
type NeighbourCount struct {
	Name     string      `yaml:"-"`
	Matrix   [][]float64 `yaml:"matrix"`
	ValueFn  string      `yaml:"valuefn"`
	Type     string      `yaml:"type"`
	Overflow string      `yaml:"overflow"`
}

// NeighbourCounts is the `neighbourCounts` mapping in document order. The
// order decides kernel indices, so it is kept explicitly.
type NeighbourCounts []NeighbourCount

// UnmarshalYAML decodes a mapping of name -> kernel, keeping key order.
func (n *NeighbourCounts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: neighbourCounts must be a mapping of name to kernel", node.Line)
	}
	out := make(NeighbourCounts, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var nc NeighbourCount
		if err := val.Decode(&nc); err != nil {
			return fmt.Errorf("neighbourCounts.%s: %w", key.Value, err)
		}
		nc.Name = key.Value
		out = append(out, nc)
	}
	*n = out
	return nil
}

// MarshalYAML writes the kernels back as an ordered mapping.
func (n NeighbourCounts) MarshalYAML() (any, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, nc := range n {
		var val yaml.Node
		if err := val.Encode(nc); err != nil {
			return nil, err
		}
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: nc.Name}, &val)
	}
	return m, nil
}

// Ruleset is a life-like rule: neighbour totals that keep a live cell alive,
// totals that bring a dead cell to life, an optional maximum age and an
// optional starvation delay.
//
// NaturalDeath kills a surviving cell once its age reaches the limit.
// Starve does the opposite for cells the rule would kill: they stay alive
// until their age reaches the delay.
type Ruleset struct {
	Survive      []int `yaml:"survive,flow"`
	Birth        []int `yaml:"birth,flow"`
	NaturalDeath int   `yaml:"natural_death,omitempty"` // 0 disables
	Starve       int   `yaml:"starve,omitempty"`        // 0 disables
}

// Config is the complete input of one compilation.
//
// Exactly one of Program, ProgramFile, Ruleset or Preset supplies the rule;
// Ruleset and Preset also supply State and NeighbourCounts.
type Config struct {
	State           []StateField    `yaml:"state,omitempty"`
	NeighbourCounts NeighbourCounts `yaml:"neighbourCounts,omitempty"`
	Program         string          `yaml:"program,omitempty"`
	ProgramFile     string          `yaml:"program_file,omitempty"`
	Ruleset         *Ruleset        `yaml:"ruleset,omitempty"`
	Preset          string          `yaml:"preset,omitempty"`
}

// FieldSpecs converts the state declaration for the layout packer.
func (c *Config) FieldSpecs() ([]layout.FieldSpec, error) {
	specs := make([]layout.FieldSpec, len(c.State))
	for i, f := range c.State {
		kind, ok := layout.ParseKind(f.Type)
		if !ok {
			return nil, dsl.ConfigErrorf(fmt.Sprintf("state[%d].type", i), "unknown field type %q, expected flag or number", f.Type)
		}
		if kind == layout.Flag && f.Length > 1 {
			return nil, dsl.ConfigErrorf(fmt.Sprintf("state[%d].length", i), "flag %s can not have a length", f.Name)
		}
		specs[i] = layout.FieldSpec{Name: f.Name, Kind: kind, Length: f.Length}
	}
	return specs, nil
}

// KernelSpecs converts the neighbour counts for the kernel compiler.
func (c *Config) KernelSpecs() []kernel.Spec {
	specs := make([]kernel.Spec, len(c.NeighbourCounts))
	for i, nc := range c.NeighbourCounts {
		specs[i] = kernel.Spec{
			Name:     nc.Name,
			Matrix:   nc.Matrix,
			ValueFn:  nc.ValueFn,
			Type:     nc.Type,
			Overflow: nc.Overflow,
		}
	}
	return specs
}
