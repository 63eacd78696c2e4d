package main

import (
	"fmt"
	"sync"
	"time"
)

// Scope selects how much of the grid a check or reveal covers.
type Scope string

const (
	ScopeCell Scope = "cell"
	ScopeWord Scope = "word"
	ScopeGrid Scope = "grid"
)

func parseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeCell, ScopeWord, ScopeGrid:
		return Scope(s), nil
	case "":
		return ScopeWord, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// View is what a renderer needs to draw a session after an event.
type View struct {
	SessionID   string        `json:"session_id"`
	PuzzleID    string        `json:"puzzle_id"`
	Cursor      CursorState   `json:"cursor"`
	Letters     string        `json:"letters"`
	Highlighted []Coord       `json:"highlighted"`
	Clue        *ActiveClue   `json:"clue,omitempty"`
	Completion  []ClueStatus  `json:"completion"`
	Feedback    []CellVerdict `json:"feedback,omitempty"`
	Solved      bool          `json:"solved"`
}

// Session is one solver working through one puzzle.
type Session struct {
	ID        string    `json:"id"`
	PuzzleID  string    `json:"puzzle_id"`
	CreatedAt time.Time `json:"created_at"`

	puzzle  *Puzzle
	letters *Letters
	engine  *Engine
	mu      sync.Mutex
}

// NewSession starts a blank session on p with the first letter cell selected.
func NewSession(id string, p *Puzzle) *Session {
	letters := NewLetters(p)
	s := &Session{
		ID:        id,
		PuzzleID:  p.ID,
		CreatedAt: time.Now(),
		puzzle:    p,
		letters:   letters,
		engine:    NewEngine(p, letters),
	}
	s.engine.SelectFirst()
	return s
}

// Apply runs one command and returns the resulting view. edited reports
// whether letters may have changed.
func (s *Session) Apply(cmd Command) (v View, edited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.letters.ClearFeedback()
	cmd.apply(s.engine)
	return s.viewLocked(), editsLetters(cmd)
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		SessionID:   s.ID,
		PuzzleID:    s.PuzzleID,
		Cursor:      s.engine.State(),
		Letters:     Serialize(s.puzzle, s.letters),
		Highlighted: s.engine.HighlightedCells(),
		Completion:  ClueCompletion(s.puzzle, s.letters),
		Solved:      IsSolved(s.puzzle, s.letters),
	}
	if v.Highlighted == nil {
		v.Highlighted = []Coord{}
	}
	if ac, ok := s.engine.CurrentClue(); ok {
		v.Clue = &ac
	}
	for _, c := range s.puzzle.LetterCells() {
		if fb := s.letters.Feedback(c); fb != VerdictEmpty {
			v.Feedback = append(v.Feedback, CellVerdict{Coord: c, Verdict: fb})
		}
	}
	return v
}

// Check compares letters with the solution over scope and marks the verdicts
// as feedback until the next command.
func (s *Session) Check(scope Scope) []CellVerdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.letters.ClearFeedback()
	verdicts := CheckWord(s.puzzle, s.letters, s.scopeCells(scope))
	for _, cv := range verdicts {
		s.letters.MarkFeedback(cv.Coord, cv.Verdict)
	}
	return verdicts
}

// Reveal writes the solution into every cell of scope.
func (s *Session) Reveal(scope Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.letters.ClearFeedback()
	for _, c := range s.scopeCells(scope) {
		if ch := FoldLetter(firstRune(s.puzzle.Cell(c).Solution)); ch != "" {
			s.letters.SetLetter(c, ch)
		}
	}
}

func (s *Session) scopeCells(scope Scope) []Coord {
	switch scope {
	case ScopeCell:
		if c, ok := s.engine.Selected(); ok {
			return []Coord{c}
		}
		return nil
	case ScopeGrid:
		return s.puzzle.LetterCells()
	}
	return s.engine.HighlightedCells()
}

// Clear empties every letter cell.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	Deserialize(s.puzzle, s.letters, "")
}

// Progress is the serialized letter string persisted between visits.
func (s *Session) Progress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Serialize(s.puzzle, s.letters)
}

// LoadProgress restores persisted progress. Corrupt input leaves the grid as it was.
func (s *Session) LoadProgress(serialized string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ApplySerialized(s.puzzle, s.letters, serialized)
}

// ShareCode returns the share-link encoding of the current letters.
func (s *Session) ShareCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EncodeShareCode(s.puzzle, s.letters)
}

// LoadShareCode restores letters from a share code. Corrupt codes leave the
// grid as it was.
func (s *Session) LoadShareCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ApplyShareCode(s.puzzle, s.letters, code)
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
