// Package compiler turns a rule configuration into a GLSL ES 3.00 fragment
// shader that advances every cell of a board by one generation.
//
// The generated shader expects this harness contract:
//
//	board                    usampler2D, RGBA8UI, one texel per cell (previous generation)
//	neighbour_count_texture  sampler2DArray, R32F, one layer per kernel (Result.WeightTable)
//	board_size               ivec2, board width and height in cells
//	next_state               uvec4 output, the packed next generation of the fragment's cell
//
// Cells are read only through `board`, so every fragment can run in parallel.
package compiler
