package viz

import (
	"strings"

	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set marks a sub-pixel at (x, y). The canvas size in sub-pixels is
// (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) String() string {
	var sb strings.Builder
	for _, row := range c.Grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SpaceTime draws the depletion front across the trajectory: time runs left
// to right, depth top (center) to bottom (interface), and a dot marks every
// layer whose free ligand still exceeds the level threshold.
func SpaceTime(res *dynamo.Result, n int, level float64, width, height int) string {
	c := NewCanvas(width, height)
	cols := width * 2
	rows := height * 4

	steps := len(res.States)
	if steps == 0 {
		return c.String()
	}

	for px := 0; px < cols; px++ {
		k := px * (steps - 1) / max(cols-1, 1)
		ligand, _, _, err := polymer.Unpack(res.States[k], n)
		if err != nil {
			continue
		}
		for py := 0; py < rows; py++ {
			i := py * (n - 1) / max(rows-1, 1)
			if ligand[i] > level {
				c.Set(px, py)
			}
		}
	}

	return c.String()
}
