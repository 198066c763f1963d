package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"golt/pkg/config"
	"golt/pkg/dsl"
	"golt/pkg/layout"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func formatSpans(spans []layout.Span) string {
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = fmt.Sprintf("byte %d [%d..%d]", s.Byte, s.From, s.To)
	}
	return strings.Join(parts, ", ")
}

func newLayoutCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout CONFIG",
		Short: "Show how the state fields are packed into a cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := root.compileFile(cmd, args[0])
			if err != nil {
				return err
			}
			t := newTable("FIELD", "KIND", "BITS", "SPANS")
			for _, f := range res.Layout.Fields {
				t.Row(f.Name, f.Kind.String(), strconv.Itoa(f.Width()), formatSpans(f.Spans))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d/%d bits used", res.Layout.Bits, layout.MaxBits)))
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

func newKernelsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kernels CONFIG",
		Short: "Show the neighbour-count kernels and the shared weight table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := root.compileFile(cmd, args[0])
			if err != nil {
				return err
			}
			ks := res.Kernels
			t := newTable("LAYER", "NAME", "SIZE", "TYPE", "OVERFLOW", "VALUE")
			for _, k := range ks.Kernels {
				t.Row(strconv.Itoa(k.Index), k.Name, fmt.Sprintf("%dx%d", k.Width, k.Height),
					k.GLSLType(), k.Overflow.String(), k.Value.String())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("weight table %dx%dx%d", ks.Width, ks.Height, len(ks.Kernels))))
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

func formatCounts(counts []int) string {
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, len(counts))
	for i, n := range counts {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func formatAge(age int) string {
	if age <= 0 {
		return "-"
	}
	return strconv.Itoa(age)
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [NAME]",
		Short: "List the life-like presets, or print one expanded to a full configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names := make([]string, 0, len(config.Presets))
				for name := range config.Presets {
					names = append(names, name)
				}
				slices.Sort(names)

				t := newTable("PRESET", "SURVIVE", "BIRTH", "NATURAL DEATH", "STARVE")
				for _, name := range names {
					rs := config.Presets[name]
					t.Row(name, formatCounts(rs.Survive), formatCounts(rs.Birth),
						formatAge(rs.NaturalDeath), formatAge(rs.Starve))
				}
				fmt.Fprintln(out, t.Render())
				return nil
			}

			rs, ok := config.Presets[args[0]]
			if !ok {
				return dsl.ConfigErrorf("preset", "unknown preset %q, expected one of %s", args[0], config.PresetNames())
			}
			cfg, err := config.FromRuleset(rs)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
