package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 64 cols
		{0, 64, 0, 0},
		{1, 64, 1, 0},
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{65, 64, 1, 1},
		{127, 64, 63, 1},
		{128, 64, 0, 2},
		{1023, 64, 63, 15},

		// 5 cols (odd board)
		{0, 5, 0, 0},
		{4, 5, 4, 0},
		{5, 5, 0, 1},
		{24, 5, 4, 4},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
		if back := Index(gotX, gotY, tc.cols); back != tc.index {
			t.Errorf("Index(%d, %d, %d) = %d; want %d", gotX, gotY, tc.cols, back, tc.index)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		i, size, want int
	}{
		{0, 8, 0},
		{7, 8, 7},
		{8, 8, 0},
		{-1, 8, 7},
		{-8, 8, 0},
		{-9, 8, 7},
		{17, 8, 1},
		{-2, 1, 0},
	}
	for _, tc := range tests {
		if got := Wrap(tc.i, tc.size); got != tc.want {
			t.Errorf("Wrap(%d, %d) = %d; want %d", tc.i, tc.size, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		i, size, want int
	}{
		{-3, 8, 0},
		{0, 8, 0},
		{5, 8, 5},
		{8, 8, 7},
		{100, 8, 7},
	}
	for _, tc := range tests {
		if got := Clamp(tc.i, tc.size); got != tc.want {
			t.Errorf("Clamp(%d, %d) = %d; want %d", tc.i, tc.size, got, tc.want)
		}
	}
}

func TestInBounds(t *testing.T) {
	if !InBounds(0, 0, 3, 2) || !InBounds(2, 1, 3, 2) {
		t.Error("corner cells should be in bounds")
	}
	if InBounds(3, 0, 3, 2) || InBounds(0, -1, 3, 2) {
		t.Error("off-board cells should be out of bounds")
	}
}
