package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"golt/pkg/eval"
	"golt/pkg/layout"
)

type simulateOptions struct {
	width, height int
	steps         int
	density       float64
	seed          int64
	seedImage     string
	field         string
	pngPath       string
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	o := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate CONFIG",
		Short: "Run a rule on the CPU reference evaluator and print the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.width <= 0 || o.height <= 0 {
				return fmt.Errorf("board size must be positive, got %dx%d", o.width, o.height)
			}
			if o.steps < 0 {
				return fmt.Errorf("steps must not be negative, got %d", o.steps)
			}

			res, err := root.compileFile(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := displayField(res.Layout, o.field)
			if err != nil {
				return err
			}

			board := eval.NewBoard(o.width, o.height)
			if o.seedImage != "" {
				err = seedFromImage(board, f, o.seedImage)
			} else {
				seedRandom(board, f, o.density, o.seed)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			m := eval.New(res.Layout, res.Kernels, res.Program)
			fmt.Fprintf(out, "generation 0: %d\n", board.Count(f))
			for i := 1; i <= o.steps; i++ {
				if board, err = m.Step(board); err != nil {
					return err
				}
				fmt.Fprintf(out, "generation %d: %d\n", i, board.Count(f))
			}
			fmt.Fprint(out, renderBoard(board, f))

			if o.pngPath != "" {
				return writeBoardPNG(o.pngPath, board, f)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&o.width, "width", 32, "board width in cells")
	cmd.Flags().IntVar(&o.height, "height", 16, "board height in cells")
	cmd.Flags().IntVar(&o.steps, "steps", 1, "number of generations to compute")
	cmd.Flags().Float64Var(&o.density, "density", 0.3, "fraction of cells seeded when no image is given")
	cmd.Flags().Int64Var(&o.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&o.seedImage, "seed-image", "", "seed the board from an image (png, jpeg, gif, bmp, webp)")
	cmd.Flags().StringVar(&o.field, "field", "", "state field to seed and display (default: the first field)")
	cmd.Flags().StringVar(&o.pngPath, "png", "", "write the final board as a PNG image")
	return cmd
}

func displayField(l *layout.Layout, name string) (*layout.Field, error) {
	if name == "" {
		if len(l.Fields) == 0 {
			return nil, fmt.Errorf("the rule declares no state fields")
		}
		return l.Fields[0], nil
	}
	f, ok := l.Field(name)
	if !ok {
		return nil, fmt.Errorf("no state field named %q", name)
	}
	return f, nil
}

func seedRandom(b *eval.Board, f *layout.Field, density float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range b.Cells {
		if rng.Float64() < density {
			f.Set(&b.Cells[i], 1)
		}
	}
}

func seedFromImage(b *eval.Board, f *layout.Field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return seedFromReader(b, f, file)
}

// seedFromReader scales the image to the board and sets f on every cell
// whose pixel is light.
func seedFromReader(b *eval.Board, f *layout.Field, r io.Reader) error {
	src, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("failed to decode seed image: %w", err)
	}
	dst := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if dst.GrayAt(x, y).Y >= 128 {
				b.Set(x, y, f, 1)
			}
		}
	}
	return nil
}

func renderBoard(b *eval.Board, f *layout.Field) string {
	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if f.Get(b.At(x, y)) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeBoardPNG(path string, b *eval.Board, f *layout.Field) error {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if f.Get(b.At(x, y)) != 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
