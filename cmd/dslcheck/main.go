package main

import (
	"fmt"
	"os"

	"golt/pkg/compiler"
	"golt/pkg/config"
	"golt/pkg/dsl"
	"golt/pkg/kernel"
	"golt/pkg/layout"
)

const testConfig = `state:
  - name: alive
    type: flag
neighbourCounts:
  neighbours:
    matrix: [[1, 1, 1], [1, 0, 1], [1, 1, 1]]
    valuefn: "cell.alive ? 1 : 0"
    type: int
    overflow: wrap
program: |
  int n = neighbours;
  cell.alive = n == 3 || (prev.alive && n == 2);
`

func main() {
	var cfg *config.Config
	var err error
	if len(os.Args) > 1 {
		cfg, err = config.Load(os.Args[1])
	} else {
		cfg, err = config.Parse([]byte(testConfig), ".")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	fmt.Printf("Program:\n%s\n", cfg.Program)

	// Lex
	tokens, err := dsl.Lex(cfg.Program)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}
	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Layout and kernels
	fields, err := cfg.FieldSpecs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "layout error:", err)
		os.Exit(1)
	}
	l, err := layout.Pack(fields)
	if err != nil {
		fmt.Fprintln(os.Stderr, "layout error:", err)
		os.Exit(1)
	}
	fmt.Println("Layout")
	fmt.Print(l)
	fmt.Println()

	ks, err := kernel.Compile(cfg.KernelSpecs(), l.CellType())
	if err != nil {
		fmt.Fprintln(os.Stderr, "kernel error:", err)
		os.Exit(1)
	}
	fmt.Println("Kernels")
	fmt.Print(ks)
	fmt.Println()

	// Parse
	prog, err := dsl.ParseProgram(cfg.Program)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}
	fmt.Println("AST")
	for _, s := range prog.Body {
		fmt.Println(" ", s)
	}
	fmt.Println()

	// Check
	root := compiler.RootScope(l, ks)
	if err := dsl.CheckProgram(prog, root); err != nil {
		fmt.Fprintln(os.Stderr, "type error:", err)
		os.Exit(1)
	}
	fmt.Println("Root scope")
	fmt.Print(root)
	fmt.Println()
	fmt.Println("Declarations")
	for _, s := range prog.Body {
		printDeclarations(s)
	}
	fmt.Println()

	// code Generation
	shader, err := compiler.Generate(l, ks, prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		os.Exit(1)
	}
	fmt.Println("Generated Shader")
	fmt.Print(shader)
}

func printDeclarations(s dsl.Stmt) {
	switch n := s.(type) {
	case *dsl.Block:
		for _, child := range n.Body {
			printDeclarations(child)
		}
	case *dsl.Declaration:
		fmt.Printf("  %-8s %-20s %s\n", n.Pos, n.Name, n.VarType)
	case *dsl.Conditional:
		printDeclarations(n.Consequent)
		if n.Alternate != nil {
			printDeclarations(n.Alternate)
		}
	}
}
