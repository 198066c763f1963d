package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCompileCmd(root *rootOptions) *cobra.Command {
	var outPath, weightsPath string
	cmd := &cobra.Command{
		Use:   "compile CONFIG",
		Short: "Generate the fragment shader for a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := root.compileFile(cmd, args[0])
			if err != nil {
				return err
			}

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), res.Shader)
			} else {
				if err := os.WriteFile(outPath, []byte(res.Shader), 0o644); err != nil {
					return fmt.Errorf("failed to write shader %q: %w", outPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "generated %d bytes -> %s\n", len(res.Shader), outPath)
			}

			if weightsPath != "" {
				data, err := json.MarshalIndent(res.WeightTable(), "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(weightsPath, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("failed to write weight table %q: %w", weightsPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "weight table %dx%dx%d -> %s\n",
					res.Kernels.Width, res.Kernels.Height, len(res.Kernels.Kernels), weightsPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the shader to this file instead of stdout")
	cmd.Flags().StringVar(&weightsPath, "weights", "", "write the neighbour-count weight table as JSON")
	return cmd
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check CONFIG",
		Short: "Validate a rule without printing the shader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := root.compileFile(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d state fields (%d bits), %d neighbour counts\n",
				len(res.Layout.Fields), res.Layout.Bits, len(res.Kernels.Kernels))
			return nil
		},
	}
}
