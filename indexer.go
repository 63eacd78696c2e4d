package main

import (
	"fmt"
	"strconv"
)

// Numbering selects where clue numbers come from.
type Numbering int

const (
	// NumberDerive ignores numbers in the source and numbers word starts in
	// row-major order.
	NumberDerive Numbering = iota
	// NumberTrust uses the numbers embedded in the source cells.
	NumberTrust
)

func (n Numbering) String() string {
	if n == NumberTrust {
		return "trust"
	}
	return "derive"
}

// ParseNumbering maps a configuration value to a Numbering. Empty means derive.
func ParseNumbering(s string) (Numbering, error) {
	switch s {
	case "", "derive":
		return NumberDerive, nil
	case "trust":
		return NumberTrust, nil
	}
	return NumberDerive, fmt.Errorf("unknown numbering mode %q (want derive or trust)", s)
}

// WordIndex is the word topology of a grid keyed by clue number.
type WordIndex struct {
	AcrossStarts  map[string]Coord
	DownStarts    map[string]Coord
	AcrossLengths map[string]int
	DownLengths   map[string]int
	// Grid carries the numbers the index was built from. Under NumberDerive it
	// is a copy of the input with derived numbers.
	Grid [][]Cell
}

// IndexWords computes word starts and lengths for grid.
// Words of length one are never recorded.
func IndexWords(grid [][]Cell, mode Numbering) WordIndex {
	idx := WordIndex{
		AcrossStarts:  make(map[string]Coord),
		DownStarts:    make(map[string]Coord),
		AcrossLengths: make(map[string]int),
		DownLengths:   make(map[string]int),
		Grid:          grid,
	}
	if mode == NumberDerive {
		idx.Grid = copyGrid(grid)
	}

	next := 1
	for y := range idx.Grid {
		for x := range idx.Grid[y] {
			cell := &idx.Grid[y][x]
			if cell.Block {
				continue
			}
			across := startsWord(idx.Grid, x, y, Across)
			down := startsWord(idx.Grid, x, y, Down)

			if mode == NumberDerive {
				if !across && !down {
					cell.Number = ""
					continue
				}
				cell.Number = strconv.Itoa(next)
				next++
			}
			if cell.Number == "" {
				continue
			}

			pos := Coord{X: x, Y: y}
			if across {
				idx.AcrossStarts[cell.Number] = pos
				idx.AcrossLengths[cell.Number] = runLength(idx.Grid, x, y, Across)
			}
			if down {
				idx.DownStarts[cell.Number] = pos
				idx.DownLengths[cell.Number] = runLength(idx.Grid, x, y, Down)
			}
		}
	}
	return idx
}

// startsWord reports whether (x, y) begins a word of at least two letters in d.
func startsWord(grid [][]Cell, x, y int, d Direction) bool {
	if isBlockAt(grid, x, y) {
		return false
	}
	if d == Across {
		return isBlockAt(grid, x-1, y) && !isBlockAt(grid, x+1, y)
	}
	return isBlockAt(grid, x, y-1) && !isBlockAt(grid, x, y+1)
}

func runLength(grid [][]Cell, x, y int, d Direction) int {
	n := 0
	for !isBlockAt(grid, x, y) {
		n++
		if d == Across {
			x++
		} else {
			y++
		}
	}
	return n
}

func isBlockAt(grid [][]Cell, x, y int) bool {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return true
	}
	return grid[y][x].Block
}

func copyGrid(grid [][]Cell) [][]Cell {
	cp := make([][]Cell, len(grid))
	for i, row := range grid {
		cp[i] = make([]Cell, len(row))
		copy(cp[i], row)
	}
	return cp
}
