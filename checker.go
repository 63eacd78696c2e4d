package main

import (
	"encoding/json"
	"strings"
)

// Verdict is the result of checking one entered letter.
type Verdict int

const (
	VerdictEmpty Verdict = iota
	VerdictMatch
	VerdictMismatch
)

func (v Verdict) String() string {
	switch v {
	case VerdictMatch:
		return "match"
	case VerdictMismatch:
		return "mismatch"
	}
	return "empty"
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// CellVerdict pairs a cell with its verdict.
type CellVerdict struct {
	Coord   Coord   `json:"coord"`
	Verdict Verdict `json:"verdict"`
}

// CheckCell compares the entered letter at c with the solution. An empty entry
// is not wrong, it has no verdict.
func CheckCell(p *Puzzle, letters LetterState, c Coord) Verdict {
	if p.IsBlock(c) {
		return VerdictEmpty
	}
	actual := strings.TrimSpace(letters.Letter(c))
	if actual == "" {
		return VerdictEmpty
	}
	if foldCompare(actual) == foldCompare(p.Cell(c).Solution) {
		return VerdictMatch
	}
	return VerdictMismatch
}

// CheckWord checks each cell in order.
func CheckWord(p *Puzzle, letters LetterState, cells []Coord) []CellVerdict {
	out := make([]CellVerdict, 0, len(cells))
	for _, c := range cells {
		out = append(out, CellVerdict{Coord: c, Verdict: CheckCell(p, letters, c)})
	}
	return out
}

// CheckGrid checks every letter cell.
func CheckGrid(p *Puzzle, letters LetterState) []CellVerdict {
	return CheckWord(p, letters, p.LetterCells())
}
