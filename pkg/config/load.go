package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"golt/pkg/dsl"
	"golt/pkg/utils"
)

// Load reads the configuration at path. A program_file is resolved relative
// to the directory holding the configuration.
func Load(path string) (*Config, error) {
	fullPath, baseDir, err := utils.GetPathInfo(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data, baseDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML (or JSON) configuration and expands rulesets and
// presets. baseDir anchors a relative program_file.
func Parse(data []byte, baseDir string) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, dsl.ConfigErrorf("", "empty configuration")
		}
		return nil, err
	}
	if err := cfg.resolve(baseDir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve(baseDir string) error {
	sources := 0
	for _, set := range []bool{c.Program != "", c.ProgramFile != "", c.Ruleset != nil, c.Preset != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return dsl.ConfigErrorf("", "program, program_file, ruleset and preset are mutually exclusive")
	}

	switch {
	case c.ProgramFile != "":
		src, err := os.ReadFile(utils.ResolveFrom(baseDir, c.ProgramFile))
		if err != nil {
			return dsl.ConfigErrorf("program_file", "%v", err)
		}
		c.Program = string(src)
		c.ProgramFile = ""

	case c.Preset != "":
		rs, ok := Presets[c.Preset]
		if !ok {
			return dsl.ConfigErrorf("preset", "unknown preset %q (available: %s)", c.Preset, PresetNames())
		}
		c.Ruleset = &rs
		c.Preset = ""
		fallthrough

	case c.Ruleset != nil:
		if len(c.State) != 0 || len(c.NeighbourCounts) != 0 {
			return dsl.ConfigErrorf("ruleset", "a ruleset defines its own state and neighbourCounts")
		}
		expanded, err := FromRuleset(*c.Ruleset)
		if err != nil {
			return err
		}
		*c = *expanded
	}
	return nil
}
