package main

// LetterState is the solver's entered letters. The renderer that owns the
// visible grid implements it; the engine only reads and writes through it.
type LetterState interface {
	Letter(c Coord) string
	SetLetter(c Coord, ch string)
}

// FeedbackResetter is implemented by letter states that show answer feedback
// (right/wrong colouring) which must be cleared when letters are reloaded.
type FeedbackResetter interface {
	ResetFeedback(c Coord)
}

// Letters is an in-memory LetterState sized to a puzzle.
type Letters struct {
	width, height int
	cells         [][]string
	feedback      map[Coord]Verdict
}

// NewLetters creates an empty letter state for p.
func NewLetters(p *Puzzle) *Letters {
	cells := make([][]string, p.Height)
	for y := range cells {
		cells[y] = make([]string, p.Width)
	}
	return &Letters{
		width:    p.Width,
		height:   p.Height,
		cells:    cells,
		feedback: make(map[Coord]Verdict),
	}
}

func (l *Letters) inBounds(c Coord) bool {
	return c.X >= 0 && c.X < l.width && c.Y >= 0 && c.Y < l.height
}

// Letter returns the letter at c, or "" when unset or out of range.
func (l *Letters) Letter(c Coord) string {
	if !l.inBounds(c) {
		return ""
	}
	return l.cells[c.Y][c.X]
}

// SetLetter stores ch at c. Writes outside the grid are ignored.
func (l *Letters) SetLetter(c Coord, ch string) {
	if !l.inBounds(c) {
		return
	}
	l.cells[c.Y][c.X] = ch
}

// MarkFeedback records a verdict shown on a cell.
func (l *Letters) MarkFeedback(c Coord, v Verdict) {
	if l.inBounds(c) && v != VerdictEmpty {
		l.feedback[c] = v
	}
}

// Feedback returns the verdict currently shown on c.
func (l *Letters) Feedback(c Coord) Verdict {
	return l.feedback[c]
}

// ResetFeedback clears any verdict shown on c.
func (l *Letters) ResetFeedback(c Coord) {
	delete(l.feedback, c)
}

// ClearFeedback removes every verdict.
func (l *Letters) ClearFeedback() {
	clear(l.feedback)
}

// Snapshot returns a copy of the letters, row-major.
func (l *Letters) Snapshot() [][]string {
	cp := make([][]string, len(l.cells))
	for i, row := range l.cells {
		cp[i] = make([]string, len(row))
		copy(cp[i], row)
	}
	return cp
}
