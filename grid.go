package main

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Coord is a zero-based grid position. X is the column, Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is the axis a word runs along.
type Direction int

const (
	Across Direction = iota
	Down
)

// Other returns the perpendicular direction.
func (d Direction) Other() Direction {
	if d == Across {
		return Down
	}
	return Across
}

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "across"
}

// ParseDirection accepts "across"/"down" and their one-letter forms.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "across", "a", "A":
		return Across, nil
	case "down", "d", "D":
		return Down, nil
	}
	return Across, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Cell is a single grid square: a block, or a letter cell where the solver writes.
// Number is set only when the cell starts an across or down word.
type Cell struct {
	Block    bool   `json:"block"`
	Solution string `json:"solution,omitempty"`
	Number   string `json:"number,omitempty"`
}

// Clue is one entry of the across or down list.
type Clue struct {
	Number      string `json:"number"`
	Text        string `json:"text"`
	Enumeration string `json:"enumeration,omitempty"`
	Length      int    `json:"length"`
}

// Puzzle is the parsed crossword. It is not modified after parsing and may be
// shared freely between sessions.
type Puzzle struct {
	ID           string           `json:"id"`
	Title        string           `json:"title,omitempty"`
	Author       string           `json:"author,omitempty"`
	Width        int              `json:"width"`
	Height       int              `json:"height"`
	Grid         [][]Cell         `json:"grid"`
	CluesAcross  []Clue           `json:"clues_across"`
	CluesDown    []Clue           `json:"clues_down"`
	AcrossStarts map[string]Coord `json:"across_starts"`
	DownStarts   map[string]Coord `json:"down_starts"`
	Warnings     []string         `json:"warnings,omitempty"`
}

func emptyPuzzle() *Puzzle {
	return &Puzzle{
		Grid:         [][]Cell{},
		CluesAcross:  []Clue{},
		CluesDown:    []Clue{},
		AcrossStarts: map[string]Coord{},
		DownStarts:   map[string]Coord{},
	}
}

// InBounds reports whether c lies inside the grid.
func (p *Puzzle) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < p.Width && c.Y >= 0 && c.Y < p.Height
}

// IsBlock reports whether c is a block. Positions outside the grid count as blocks.
func (p *Puzzle) IsBlock(c Coord) bool {
	if !p.InBounds(c) {
		return true
	}
	return p.Grid[c.Y][c.X].Block
}

// Cell returns the cell at c, or a block for positions outside the grid.
func (p *Puzzle) Cell(c Coord) Cell {
	if !p.InBounds(c) {
		return Cell{Block: true}
	}
	return p.Grid[c.Y][c.X]
}

// LetterCells returns every letter cell in row-major order.
func (p *Puzzle) LetterCells() []Coord {
	var cells []Coord
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if !p.Grid[y][x].Block {
				cells = append(cells, Coord{X: x, Y: y})
			}
		}
	}
	return cells
}

// FirstLetterCell returns the first letter cell in row-major order.
func (p *Puzzle) FirstLetterCell() (Coord, bool) {
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if !p.Grid[y][x].Block {
				return Coord{X: x, Y: y}, true
			}
		}
	}
	return Coord{}, false
}

// Starts returns the clue-number to start-position map for d.
func (p *Puzzle) Starts(d Direction) map[string]Coord {
	if d == Down {
		return p.DownStarts
	}
	return p.AcrossStarts
}

// Clues returns the clue list for d.
func (p *Puzzle) Clues(d Direction) []Clue {
	if d == Down {
		return p.CluesDown
	}
	return p.CluesAcross
}

// ClueByNumber finds the clue numbered number in the d list.
func (p *Puzzle) ClueByNumber(d Direction, number string) (Clue, bool) {
	for _, cl := range p.Clues(d) {
		if cl.Number == number {
			return cl, true
		}
	}
	return Clue{}, false
}

// WithoutSolutions returns a shallow copy whose grid carries no solutions,
// for handing to clients that should not see answers.
func (p *Puzzle) WithoutSolutions() *Puzzle {
	cp := *p
	cp.Grid = make([][]Cell, len(p.Grid))
	for y, row := range p.Grid {
		cp.Grid[y] = make([]Cell, len(row))
		for x, c := range row {
			c.Solution = ""
			cp.Grid[y][x] = c
		}
	}
	return &cp
}

// numberLess orders clue numbers numerically, falling back to string order for
// labels that are not integers.
func numberLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
