package main

import (
	"io"
	"log"

	"github.com/spf13/cobra"

	"golt/pkg/compiler"
	"golt/pkg/config"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "golt",
		Short: "Compile cellular-automaton rules to GLSL fragment shaders",
		Long: `golt compiles a cellular-automaton rule (state fields, neighbour-count
kernels and a rule program) into a GLSL ES 3.00 fragment shader that
computes one generation of the board.`,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log each compilation stage to stderr")

	rootCmd.AddCommand(
		newCompileCmd(opts),
		newCheckCmd(opts),
		newLayoutCmd(opts),
		newKernelsCmd(opts),
		newSimulateCmd(opts),
		newRulesCmd(),
	)
	return rootCmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *log.Logger {
	var w io.Writer = io.Discard
	if o.verbose {
		w = cmd.ErrOrStderr()
	}
	return log.New(w, "golt: ", 0)
}

// compileFile loads the configuration at path and runs the whole pipeline.
func (o *rootOptions) compileFile(cmd *cobra.Command, path string) (*compiler.Result, error) {
	logger := o.logger(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Printf("loaded %s", path)
	return compiler.Compile(cfg, compiler.WithLogger(logger))
}
