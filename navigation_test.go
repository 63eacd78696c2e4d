package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *Letters) {
	t.Helper()
	p := tinyPuzzle(t)
	letters := NewLetters(p)
	return NewEngine(p, letters), letters
}

func requireSelected(t *testing.T, e *Engine, want Coord) {
	t.Helper()
	got, ok := e.Selected()
	require.True(t, ok, "nothing selected")
	require.Equal(t, want, got)
}

func TestEngineInitialState(t *testing.T) {
	e, _ := newTestEngine(t)

	st := e.State()
	assert.Nil(t, st.Selected)
	assert.Equal(t, Across, st.Direction)
	assert.Nil(t, e.HighlightedCells())
	assert.False(t, e.Move(MotionRight), "moving with no selection does nothing")

	_, ok := e.CurrentClue()
	assert.False(t, ok)
}

func TestWordCellsStopAtBlocks(t *testing.T) {
	p := rowsPuzzle(t, "#..#AB#CD#")

	cells := wordCells(p, Coord{X: 4, Y: 0}, Across)
	assert.Equal(t, []Coord{{4, 0}, {5, 0}}, cells)

	cells = wordCells(p, Coord{X: 8, Y: 0}, Across)
	assert.Equal(t, []Coord{{7, 0}, {8, 0}}, cells)

	assert.Empty(t, wordCells(p, Coord{X: 3, Y: 0}, Across), "a block has no word")
	assert.Equal(t, []Coord{{4, 0}}, wordCells(p, Coord{X: 4, Y: 0}, Down))
}

func TestWordCellsDown(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Equal(t, []Coord{{2, 0}, {2, 1}, {2, 2}}, e.WordCells(Coord{X: 2, Y: 1}, Down))
	assert.Equal(t, []Coord{{0, 2}, {1, 2}, {2, 2}}, e.WordCells(Coord{X: 1, Y: 2}, Across))
}

func TestSelectCell(t *testing.T) {
	e, _ := newTestEngine(t)

	e.SelectCell(Coord{X: 1, Y: 1})
	assert.Nil(t, e.State().Selected, "blocks cannot be selected")

	e.SelectCell(Coord{X: 1, Y: 0})
	requireSelected(t, e, Coord{X: 1, Y: 0})
	assert.Equal(t, Across, e.Direction())

	e.SelectCell(Coord{X: 1, Y: 0})
	requireSelected(t, e, Coord{X: 1, Y: 0})
	assert.Equal(t, Down, e.Direction(), "reselecting flips direction")

	e.SelectCell(Coord{X: 1, Y: 0})
	assert.Equal(t, Across, e.Direction())
}

func TestSelectCellResolvesDirection(t *testing.T) {
	e, _ := newTestEngine(t)

	// (0,1) sits only in the left column word.
	e.SelectCell(Coord{X: 0, Y: 1})
	assert.Equal(t, Down, e.Direction())
	assert.Equal(t, []Coord{{0, 0}, {0, 1}, {0, 2}}, e.HighlightedCells())

	// (1,2) has a down run of one, so typing switches back to across.
	e.SelectCell(Coord{X: 1, Y: 2})
	assert.Equal(t, Across, e.Direction())
}

func TestSelectCellKeepsDirectionWhenBothShort(t *testing.T) {
	p := rowsPuzzle(t, ".#", "#.")
	e := NewEngine(p, NewLetters(p))

	e.SelectCell(Coord{X: 1, Y: 1})
	assert.Equal(t, Across, e.Direction())
	assert.Equal(t, []Coord{{1, 1}}, e.HighlightedCells())
}

func TestMove(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SelectCell(Coord{X: 0, Y: 0})

	assert.False(t, e.Move(MotionLeft), "edge")
	assert.False(t, e.Move(MotionUp), "edge")
	requireSelected(t, e, Coord{X: 0, Y: 0})

	assert.True(t, e.Move(MotionRight))
	requireSelected(t, e, Coord{X: 1, Y: 0})

	assert.False(t, e.Move(MotionDown), "block")
	requireSelected(t, e, Coord{X: 1, Y: 0})

	assert.True(t, e.Move(MotionRight))
	assert.True(t, e.Move(MotionDown))
	requireSelected(t, e, Coord{X: 2, Y: 1})
	assert.Equal(t, Down, e.Direction(), "landing on a down-only cell resolves direction")
}

func TestAutoAdvance(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SelectCell(Coord{X: 1, Y: 0})

	e.AutoAdvance()
	requireSelected(t, e, Coord{X: 2, Y: 0})
	assert.Equal(t, Across, e.Direction())

	// End of the across word: flip to down and step.
	e.AutoAdvance()
	requireSelected(t, e, Coord{X: 2, Y: 1})
	assert.Equal(t, Down, e.Direction())
}

func TestAutoAdvanceStuck(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SelectCell(Coord{X: 2, Y: 2})
	require.Equal(t, Across, e.Direction())

	e.AutoAdvance()
	requireSelected(t, e, Coord{X: 2, Y: 2})
	assert.Equal(t, Down, e.Direction(), "direction flips even when the cursor cannot move")
}

func TestTypeLetter(t *testing.T) {
	e, letters := newTestEngine(t)

	assert.False(t, e.TypeLetter("a"), "no selection")

	e.SelectCell(Coord{X: 0, Y: 0})
	assert.True(t, e.TypeLetter("é"))
	assert.Equal(t, "E", letters.Letter(Coord{X: 0, Y: 0}))
	requireSelected(t, e, Coord{X: 1, Y: 0})

	assert.False(t, e.TypeLetter("7"))
	assert.False(t, e.TypeLetter("ab"))
	assert.Empty(t, letters.Letter(Coord{X: 1, Y: 0}))
	requireSelected(t, e, Coord{X: 1, Y: 0})
}

func TestMoveBack(t *testing.T) {
	e, letters := newTestEngine(t)
	e.SelectCell(Coord{X: 1, Y: 0})
	letters.SetLetter(Coord{X: 0, Y: 0}, "A")
	letters.SetLetter(Coord{X: 1, Y: 0}, "B")

	// Filled: clear in place.
	e.MoveBack()
	requireSelected(t, e, Coord{X: 1, Y: 0})
	assert.Empty(t, letters.Letter(Coord{X: 1, Y: 0}))
	assert.Equal(t, "A", letters.Letter(Coord{X: 0, Y: 0}))

	// Empty: step back and clear.
	e.MoveBack()
	requireSelected(t, e, Coord{X: 0, Y: 0})
	assert.Empty(t, letters.Letter(Coord{X: 0, Y: 0}))

	// Empty at the start of the word: nothing happens.
	e.MoveBack()
	requireSelected(t, e, Coord{X: 0, Y: 0})
	assert.Equal(t, Across, e.Direction())
}

func TestMoveBackDown(t *testing.T) {
	e, letters := newTestEngine(t)
	e.SelectClue("2", Down)
	e.Move(MotionDown)
	letters.SetLetter(Coord{X: 2, Y: 0}, "C")

	e.MoveBack()
	requireSelected(t, e, Coord{X: 2, Y: 0})
	assert.Empty(t, letters.Letter(Coord{X: 2, Y: 0}))
}

func TestClearCurrent(t *testing.T) {
	e, letters := newTestEngine(t)
	e.SelectCell(Coord{X: 2, Y: 0})
	letters.SetLetter(Coord{X: 2, Y: 0}, "C")

	e.ClearCurrent()
	assert.Empty(t, letters.Letter(Coord{X: 2, Y: 0}))
	requireSelected(t, e, Coord{X: 2, Y: 0})
}

func TestSelectClue(t *testing.T) {
	e, _ := newTestEngine(t)

	require.True(t, e.SelectClue("2", Down))
	requireSelected(t, e, Coord{X: 2, Y: 0})
	assert.Equal(t, Down, e.Direction())

	require.True(t, e.SelectClue("1", Across))
	require.True(t, e.SelectClue("1", Down))
	requireSelected(t, e, Coord{X: 0, Y: 0})
	assert.Equal(t, Down, e.Direction(), "selecting a clue at the cursor does not toggle")

	assert.False(t, e.SelectClue("2", Across))
	assert.False(t, e.SelectClue("99", Down))
}

func TestCurrentClue(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SelectCell(Coord{X: 1, Y: 2})

	ac, ok := e.CurrentClue()
	require.True(t, ok)
	assert.Equal(t, "3", ac.Number)
	assert.Equal(t, Across, ac.Direction)
	require.NotNil(t, ac.Clue)
	assert.Equal(t, "Last row", ac.Clue.Text)

	_, ok = e.CurrentClueFor(Down)
	assert.False(t, ok, "a one-letter run has no clue")

	e.SelectCell(Coord{X: 2, Y: 1})
	ac, ok = e.CurrentClue()
	require.True(t, ok)
	assert.Equal(t, "2", ac.Number)
	assert.Equal(t, Down, ac.Direction)
}

func TestParseMotion(t *testing.T) {
	for _, m := range []Motion{MotionUp, MotionDown, MotionLeft, MotionRight} {
		got, ok := ParseMotion(m.String())
		require.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMotion("sideways")
	assert.False(t, ok)
}
