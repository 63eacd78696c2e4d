package main

// Motion is one arrow-key step.
type Motion int

const (
	MotionUp Motion = iota
	MotionDown
	MotionLeft
	MotionRight
)

func (m Motion) String() string {
	switch m {
	case MotionUp:
		return "up"
	case MotionDown:
		return "down"
	case MotionLeft:
		return "left"
	}
	return "right"
}

// ParseMotion maps "up"/"down"/"left"/"right" to a Motion.
func ParseMotion(s string) (Motion, bool) {
	switch s {
	case "up":
		return MotionUp, true
	case "down":
		return MotionDown, true
	case "left":
		return MotionLeft, true
	case "right":
		return MotionRight, true
	}
	return MotionRight, false
}

func (m Motion) apply(c Coord) Coord {
	switch m {
	case MotionUp:
		c.Y--
	case MotionDown:
		c.Y++
	case MotionLeft:
		c.X--
	case MotionRight:
		c.X++
	}
	return c
}

func forward(d Direction) Motion {
	if d == Down {
		return MotionDown
	}
	return MotionRight
}

func backward(d Direction) Motion {
	if d == Down {
		return MotionUp
	}
	return MotionLeft
}

// CursorState is the selected cell and typing direction of one session.
type CursorState struct {
	Selected  *Coord    `json:"selected"`
	Direction Direction `json:"direction"`
}

// ActiveClue is the clue the cursor sits in.
type ActiveClue struct {
	Number    string    `json:"number"`
	Direction Direction `json:"direction"`
	Clue      *Clue     `json:"clue,omitempty"`
}

// Engine is the cursor state machine for one solving session. It is not safe
// for concurrent use; callers serialise input events.
type Engine struct {
	puzzle  *Puzzle
	letters LetterState

	selected  *Coord
	direction Direction
}

// NewEngine starts with nothing selected, typing across.
func NewEngine(p *Puzzle, letters LetterState) *Engine {
	return &Engine{puzzle: p, letters: letters, direction: Across}
}

// State returns a copy of the cursor state.
func (e *Engine) State() CursorState {
	st := CursorState{Direction: e.direction}
	if e.selected != nil {
		c := *e.selected
		st.Selected = &c
	}
	return st
}

func (e *Engine) Selected() (Coord, bool) {
	if e.selected == nil {
		return Coord{}, false
	}
	return *e.selected, true
}

func (e *Engine) Direction() Direction { return e.direction }

// SelectCell focuses c. Selecting the focused cell again flips the direction.
// Landing on a cell that only forms a word in the other orientation switches
// to that orientation.
func (e *Engine) SelectCell(c Coord) {
	if e.puzzle.IsBlock(c) {
		return
	}
	if e.selected != nil && *e.selected == c {
		e.direction = e.direction.Other()
		return
	}
	e.selected = &c
	cur := len(e.WordCells(c, e.direction))
	if cur <= 1 {
		if other := len(e.WordCells(c, e.direction.Other())); other > cur {
			e.direction = e.direction.Other()
		}
	}
}

// SelectFirst focuses the first letter cell in row-major order.
func (e *Engine) SelectFirst() bool {
	c, ok := e.puzzle.FirstLetterCell()
	if ok {
		e.SelectCell(c)
	}
	return ok
}

// SelectClue puts the cursor on the first cell of the numbered word in d.
func (e *Engine) SelectClue(number string, d Direction) bool {
	start, ok := e.puzzle.Starts(d)[number]
	if !ok {
		return false
	}
	e.direction = d
	if e.selected != nil && *e.selected == start {
		return true
	}
	e.SelectCell(start)
	return true
}

// ToggleDirection flips across/down without moving.
func (e *Engine) ToggleDirection() {
	e.direction = e.direction.Other()
}

// WordCells returns the maximal run of letter cells through c in d, in
// increasing index order. It is empty when c is a block.
func (e *Engine) WordCells(c Coord, d Direction) []Coord {
	return wordCells(e.puzzle, c, d)
}

func wordCells(p *Puzzle, c Coord, d Direction) []Coord {
	if p.IsBlock(c) {
		return nil
	}
	back, fwd := backward(d), forward(d)
	start := c
	for prev := back.apply(start); !p.IsBlock(prev); prev = back.apply(prev) {
		start = prev
	}
	var cells []Coord
	for cur := start; !p.IsBlock(cur); cur = fwd.apply(cur) {
		cells = append(cells, cur)
	}
	return cells
}

// Move steps the cursor one cell. It reports false, leaving the selection
// alone, when the target is off the grid or a block.
func (e *Engine) Move(m Motion) bool {
	if e.selected == nil {
		return false
	}
	next := m.apply(*e.selected)
	if e.puzzle.IsBlock(next) {
		return false
	}
	e.SelectCell(next)
	return true
}

// AutoAdvance moves forward after a letter is typed. At the end of a word it
// flips direction and tries once more in the new direction.
func (e *Engine) AutoAdvance() {
	if e.Move(forward(e.direction)) {
		return
	}
	e.direction = e.direction.Other()
	e.Move(forward(e.direction))
}

// MoveBack is the backspace policy: clear a filled cell in place, otherwise
// step back and clear the cell landed on.
func (e *Engine) MoveBack() {
	if e.selected == nil {
		return
	}
	if e.letters.Letter(*e.selected) != "" {
		e.letters.SetLetter(*e.selected, "")
		return
	}
	if e.Move(backward(e.direction)) {
		e.letters.SetLetter(*e.selected, "")
	}
}

// TypeLetter writes a folded letter in the current cell and advances. Input
// that does not fold to A–Z is ignored.
func (e *Engine) TypeLetter(s string) bool {
	if e.selected == nil {
		return false
	}
	ch := FoldLetter(s)
	if ch == "" {
		return false
	}
	e.letters.SetLetter(*e.selected, ch)
	e.AutoAdvance()
	return true
}

// ClearCurrent empties the current cell without moving.
func (e *Engine) ClearCurrent() {
	if e.selected != nil {
		e.letters.SetLetter(*e.selected, "")
	}
}

// HighlightedCells is the current word.
func (e *Engine) HighlightedCells() []Coord {
	if e.selected == nil {
		return nil
	}
	return e.WordCells(*e.selected, e.direction)
}

// CurrentClue is the clue for the current word in the current direction.
func (e *Engine) CurrentClue() (ActiveClue, bool) {
	return e.CurrentClueFor(e.direction)
}

// CurrentClueFor is the clue of the word through the cursor in d. The number
// is taken from the word's first cell.
func (e *Engine) CurrentClueFor(d Direction) (ActiveClue, bool) {
	if e.selected == nil {
		return ActiveClue{}, false
	}
	cells := e.WordCells(*e.selected, d)
	if len(cells) == 0 {
		return ActiveClue{}, false
	}
	number := e.puzzle.Cell(cells[0]).Number
	if number == "" {
		return ActiveClue{}, false
	}
	ac := ActiveClue{Number: number, Direction: d}
	if cl, ok := e.puzzle.ClueByNumber(d, number); ok {
		ac.Clue = &cl
	}
	return ac, true
}
