package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"golt/pkg/dsl"
	"golt/pkg/layout"
)

const lifeYAML = `
state:
  - name: alive
    type: flag
  - name: age
    type: number
    length: 8
neighbourCounts:
  zeta:
    matrix: [[1, 1, 1], [1, 0, 1], [1, 1, 1]]
    valuefn: "cell.alive ? 1 : 0"
    type: int
    overflow: wrap
  alpha:
    matrix: [[0.5]]
    valuefn: "float(cell.age)"
    type: float
    overflow: zero
program: |
  if (cell.alive) { cell.age += 1; }
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(lifeYAML), "")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(cfg.State) != 2 || cfg.State[1].Length != 8 {
		t.Errorf("unexpected state %+v", cfg.State)
	}
	// Document order, not alphabetical.
	if len(cfg.NeighbourCounts) != 2 || cfg.NeighbourCounts[0].Name != "zeta" || cfg.NeighbourCounts[1].Name != "alpha" {
		t.Fatalf("unexpected kernel order %+v", cfg.NeighbourCounts)
	}
	if cfg.NeighbourCounts[1].Matrix[0][0] != 0.5 || cfg.NeighbourCounts[1].Overflow != "zero" {
		t.Errorf("unexpected kernel %+v", cfg.NeighbourCounts[1])
	}
	if !strings.Contains(cfg.Program, "cell.age += 1;") {
		t.Errorf("unexpected program %q", cfg.Program)
	}

	specs, err := cfg.FieldSpecs()
	if err != nil {
		t.Fatalf("FieldSpecs error = %v", err)
	}
	if specs[0].Kind != layout.Flag || specs[1].Kind != layout.Number || specs[1].Length != 8 {
		t.Errorf("unexpected field specs %+v", specs)
	}
	ks := cfg.KernelSpecs()
	if ks[0].Name != "zeta" || ks[0].ValueFn != "cell.alive ? 1 : 0" {
		t.Errorf("unexpected kernel specs %+v", ks)
	}
}

func TestParse_JSON(t *testing.T) {
	src := `{
  "state": [{"name": "alive", "type": "flag"}],
  "neighbourCounts": {
    "direct": {"matrix": [[1, 1, 1], [1, 0, 1], [1, 1, 1]], "valuefn": "cell.alive", "type": "int", "overflow": "wrap"}
  },
  "program": "if (cell.alive) { cell.alive = false; }"
}`
	cfg, err := Parse([]byte(src), "")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(cfg.NeighbourCounts) != 1 || cfg.NeighbourCounts[0].Name != "direct" {
		t.Errorf("unexpected kernels %+v", cfg.NeighbourCounts)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"empty", "", "empty configuration"},
		{"unknown key", "stat: []\n", "field stat not found"},
		{"kernels as list", "neighbourCounts: [1, 2]\n", "must be a mapping"},
		{"two sources", "program: x\npreset: gol\n", "mutually exclusive"},
		{"unknown preset", "preset: nope\n", "unknown preset"},
		{"ruleset with state", "ruleset: {survive: [2], birth: [3]}\nstate: [{name: a, type: flag}]\n", "defines its own state"},
		{"bad ruleset", "ruleset: {survive: [9], birth: [3]}\n", "out of range"},
		{"missing program file", "program_file: does-not-exist.glr\n", "program_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), t.TempDir())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}
}

func TestFieldSpecs_Errors(t *testing.T) {
	cfg := &Config{State: []StateField{{Name: "a", Type: "byte"}}}
	_, err := cfg.FieldSpecs()
	var ce *dsl.ConfigError
	if !errors.As(err, &ce) || ce.Path != "state[0].type" {
		t.Errorf("expected ConfigError at state[0].type, got %v", err)
	}
}

func TestLoad_ProgramFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "rules"), 0o755); err != nil {
		t.Fatal(err)
	}
	prog := "if (cell.alive) { cell.alive = false; }\n"
	if err := os.WriteFile(filepath.Join(dir, "rules", "blink.glr"), []byte(prog), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "blink.yaml")
	src := "state:\n  - {name: alive, type: flag}\nprogram_file: rules/blink.glr\n"
	if err := os.WriteFile(cfgPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Program != prog {
		t.Errorf("Program = %q, want %q", cfg.Program, prog)
	}
	if cfg.ProgramFile != "" {
		t.Errorf("ProgramFile should be cleared after loading, got %q", cfg.ProgramFile)
	}
}

func TestPreset(t *testing.T) {
	cfg, err := Parse([]byte("preset: densemaze\n"), "")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(cfg.State) != 2 || cfg.State[0].Name != "alive" || cfg.State[1].Name != "age" {
		t.Errorf("unexpected state %+v", cfg.State)
	}
	if len(cfg.NeighbourCounts) != 1 || cfg.NeighbourCounts[0].Name != "neighbours" {
		t.Errorf("unexpected kernels %+v", cfg.NeighbourCounts)
	}
	if cfg.Ruleset != nil || cfg.Preset != "" {
		t.Error("expanded config should not keep the rule source")
	}
	for _, want := range []string{
		"if (!(neighbours == 2 || neighbours == 3)) {",
		"        if (cell.age < 3) {\n            cell.age += 1;\n        } else {\n            cell.alive = false;",
		"} else if (cell.age < 255) {",
		"if (neighbours == 2) {",
	} {
		if !strings.Contains(cfg.Program, want) {
			t.Errorf("program does not contain %q:\n%s", want, cfg.Program)
		}
	}
}

func TestFromRuleset_NaturalDeath(t *testing.T) {
	cfg, err := FromRuleset(Ruleset{Survive: []int{2, 3}, Birth: []int{3}, NaturalDeath: 7})
	if err != nil {
		t.Fatalf("FromRuleset error = %v", err)
	}
	if !strings.Contains(cfg.Program, "if (!((neighbours == 2 || neighbours == 3) && cell.age < 7)) {") {
		t.Errorf("natural death must limit survival:\n%s", cfg.Program)
	}
	if strings.Contains(cfg.Program, "if (cell.age < 7) {") {
		t.Errorf("natural death must not delay dying cells:\n%s", cfg.Program)
	}
}

func TestFromRuleset_Errors(t *testing.T) {
	tests := []struct {
		name string
		rs   Ruleset
		path string
	}{
		{"survive range", Ruleset{Survive: []int{9}}, "ruleset.survive"},
		{"birth range", Ruleset{Birth: []int{-1}}, "ruleset.birth"},
		{"natural death range", Ruleset{NaturalDeath: 256}, "ruleset.natural_death"},
		{"starve range", Ruleset{Starve: -2}, "ruleset.starve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRuleset(tt.rs)
			var ce *dsl.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *dsl.ConfigError", err)
			}
			if ce.Path != tt.path {
				t.Errorf("path = %q, want %q", ce.Path, tt.path)
			}
		})
	}
}

func TestFromRuleset_EmptyLists(t *testing.T) {
	cfg, err := FromRuleset(Presets["seeds"])
	if err != nil {
		t.Fatalf("FromRuleset error = %v", err)
	}
	if !strings.Contains(cfg.Program, "if (!(false)) {") {
		t.Errorf("empty survive list should never survive:\n%s", cfg.Program)
	}
}

func TestPresets_Parse(t *testing.T) {
	for name, rs := range Presets {
		t.Run(name, func(t *testing.T) {
			cfg, err := FromRuleset(rs)
			if err != nil {
				t.Fatalf("FromRuleset error = %v", err)
			}
			if _, err := dsl.ParseProgram(cfg.Program); err != nil {
				t.Errorf("generated program does not parse: %v", err)
			}
		})
	}
}

func TestNeighbourCounts_MarshalKeepsOrder(t *testing.T) {
	cfg, err := Parse([]byte(lifeYAML), "")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	text := string(out)
	if strings.Index(text, "zeta:") > strings.Index(text, "alpha:") {
		t.Errorf("kernel order lost:\n%s", text)
	}
	again, err := Parse(out, "")
	if err != nil {
		t.Fatalf("re-Parse error = %v\n%s", err, text)
	}
	if again.NeighbourCounts[1].Name != "alpha" || again.Program != cfg.Program {
		t.Errorf("re-parsed config differs:\n%s", text)
	}
}
