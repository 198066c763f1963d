package config

import (
	"fmt"
	"slices"
	"strings"

	"golt/pkg/dsl"
)

// MaxAge is the largest value the generated `age` field can hold.
const MaxAge = 255

// Presets are the named life-like rules available through `preset:`.
var Presets = map[string]Ruleset{
	"custom":    {Survive: []int{1, 2, 3, 4, 5}, Birth: []int{3}},
	"gol":       {Survive: []int{2, 3}, Birth: []int{3}},
	"twotwo":    {Survive: []int{1, 2, 5}, Birth: []int{3, 6}},
	"dnn":       {Survive: []int{3, 4, 5, 7, 8}, Birth: []int{3, 6, 7, 8}},
	"diam":      {Survive: []int{5}, Birth: []int{3, 4, 5}},
	"seeds":     {Survive: []int{}, Birth: []int{2}},
	"castle":    {Survive: []int{2, 3, 4, 5}, Birth: []int{4, 5, 6, 7, 8}},
	"densemaze": {Survive: []int{2, 3}, Birth: []int{2}, Starve: 3},
	"maze":      {Survive: []int{1, 2, 3, 4, 5}, Birth: []int{3}},
}

// PresetNames lists the presets in alphabetical order.
func PresetNames() string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// FromRuleset expands a life-like rule into a full configuration: an
// `alive` flag, an 8-bit `age`, the Moore neighbourhood as `neighbours` and
// a program applying the rule.
func FromRuleset(rs Ruleset) (*Config, error) {
	for _, set := range []struct {
		name string
		vals []int
	}{{"survive", rs.Survive}, {"birth", rs.Birth}} {
		for _, n := range set.vals {
			if n < 0 || n > 8 {
				return nil, dsl.ConfigErrorf("ruleset."+set.name, "neighbour total %d out of range 0..8", n)
			}
		}
	}
	if rs.NaturalDeath < 0 || rs.NaturalDeath > MaxAge {
		return nil, dsl.ConfigErrorf("ruleset.natural_death", "natural death age %d out of range 0..%d", rs.NaturalDeath, MaxAge)
	}
	if rs.Starve < 0 || rs.Starve > MaxAge {
		return nil, dsl.ConfigErrorf("ruleset.starve", "starvation delay %d out of range 0..%d", rs.Starve, MaxAge)
	}

	return &Config{
		State: []StateField{
			{Name: "alive", Type: "flag"},
			{Name: "age", Type: "number", Length: 8},
		},
		NeighbourCounts: NeighbourCounts{{
			Name:     "neighbours",
			Matrix:   [][]float64{{1, 1, 1}, {1, 0, 1}, {1, 1, 1}},
			ValueFn:  "cell.alive ? 1 : 0",
			Type:     "int",
			Overflow: "wrap",
		}},
		Program: rulesetProgram(rs),
	}, nil
}

func anyOf(counts []int) string {
	if len(counts) == 0 {
		return "false"
	}
	terms := make([]string, len(counts))
	for i, n := range counts {
		terms[i] = fmt.Sprintf("neighbours == %d", n)
	}
	return strings.Join(terms, " || ")
}

// rulesetProgram writes the rule as a program. The age of a live cell counts
// the generations since its birth, saturating at MaxAge.
func rulesetProgram(rs Ruleset) string {
	survive := anyOf(rs.Survive)
	if rs.NaturalDeath > 0 {
		survive = fmt.Sprintf("(%s) && cell.age < %d", survive, rs.NaturalDeath)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "if (cell.alive) {\n")
	fmt.Fprintf(&sb, "    if (!(%s)) {\n", survive)
	if rs.Starve > 0 {
		fmt.Fprintf(&sb, "        if (cell.age < %d) {\n", rs.Starve)
		fmt.Fprintf(&sb, "            cell.age += 1;\n")
		fmt.Fprintf(&sb, "        } else {\n")
		fmt.Fprintf(&sb, "            cell.alive = false;\n")
		fmt.Fprintf(&sb, "            cell.age = 0;\n")
		fmt.Fprintf(&sb, "        }\n")
	} else {
		fmt.Fprintf(&sb, "        cell.alive = false;\n")
		fmt.Fprintf(&sb, "        cell.age = 0;\n")
	}
	fmt.Fprintf(&sb, "    } else if (cell.age < %d) {\n", MaxAge)
	fmt.Fprintf(&sb, "        cell.age += 1;\n")
	fmt.Fprintf(&sb, "    }\n")
	fmt.Fprintf(&sb, "} else {\n")
	fmt.Fprintf(&sb, "    cell.age = 0;\n")
	fmt.Fprintf(&sb, "    if (%s) {\n", anyOf(rs.Birth))
	fmt.Fprintf(&sb, "        cell.alive = true;\n")
	fmt.Fprintf(&sb, "    }\n")
	fmt.Fprintf(&sb, "}\n")
	return sb.String()
}
