package main

import "strings"

// ClueStatus says whether the word of one clue is fully filled.
type ClueStatus struct {
	Number    string    `json:"number"`
	Direction Direction `json:"direction"`
	Complete  bool      `json:"complete"`
}

// IsWordComplete reports whether every cell of the word through start in d
// holds a letter. Correctness is not considered.
func IsWordComplete(p *Puzzle, letters LetterState, start Coord, d Direction) bool {
	cells := wordCells(p, start, d)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if strings.TrimSpace(letters.Letter(c)) == "" {
			return false
		}
	}
	return true
}

// ClueCompletion reports every clue of both lists, across first.
func ClueCompletion(p *Puzzle, letters LetterState) []ClueStatus {
	out := make([]ClueStatus, 0, len(p.CluesAcross)+len(p.CluesDown))
	for _, d := range []Direction{Across, Down} {
		starts := p.Starts(d)
		for _, cl := range p.Clues(d) {
			st := ClueStatus{Number: cl.Number, Direction: d}
			if pos, ok := starts[cl.Number]; ok {
				st.Complete = IsWordComplete(p, letters, pos, d)
			}
			out = append(out, st)
		}
	}
	return out
}

// IsSolved reports whether every letter cell matches its solution.
func IsSolved(p *Puzzle, letters LetterState) bool {
	cells := p.LetterCells()
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if CheckCell(p, letters, c) != VerdictMatch {
			return false
		}
	}
	return true
}
