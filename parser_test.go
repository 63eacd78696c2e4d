package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// puzzleXML wraps grid cells and clue groups in a minimal document.
func puzzleXML(width, height int, cells, clues string) string {
	return fmt.Sprintf(`<crossword-compiler><rectangular-puzzle><crossword>
<grid width="%d" height="%d">%s</grid>%s
</crossword></rectangular-puzzle></crossword-compiler>`, width, height, cells, clues)
}

func TestParseTwoLetterWord(t *testing.T) {
	doc := puzzleXML(2, 1,
		`<cell x="1" y="1" type="letter" solution="A" number="1"/><cell x="2" y="1" type="letter" solution="T"/>`,
		`<clues ordering="normal"><clue number="1" format="(2)">Cat</clue></clues><clues ordering="normal"></clues>`)

	for _, mode := range []Numbering{NumberDerive, NumberTrust} {
		t.Run(mode.String(), func(t *testing.T) {
			p, err := ParsePuzzle(doc, mode)
			require.NoError(t, err)

			require.Len(t, p.CluesAcross, 1)
			assert.Equal(t, "Cat", p.CluesAcross[0].Text)
			assert.Equal(t, "(2)", p.CluesAcross[0].Enumeration)
			assert.Equal(t, 2, p.CluesAcross[0].Length)
			assert.Equal(t, Coord{X: 0, Y: 0}, p.AcrossStarts["1"])
			assert.Empty(t, p.CluesDown, "empty group is not an error")
			assert.Empty(t, p.DownStarts)
		})
	}
}

func TestParseTinyPuzzle(t *testing.T) {
	p := tinyPuzzle(t)

	assert.Equal(t, "Tiny", p.Title)
	assert.Equal(t, "Setter", p.Author, "creator stands in for a missing author")
	assert.Equal(t, 3, p.Width)
	assert.Equal(t, 3, p.Height)
	assert.True(t, p.Grid[1][1].Block)
	assert.Equal(t, "E", p.Grid[1][2].Solution)
	assert.Empty(t, p.Warnings)

	assert.Equal(t, map[string]Coord{"1": {0, 0}, "3": {0, 2}}, p.AcrossStarts)
	assert.Equal(t, map[string]Coord{"1": {0, 0}, "2": {2, 0}}, p.DownStarts)

	require.Len(t, p.CluesAcross, 2)
	assert.Equal(t, "First row", p.CluesAcross[0].Text)
	assert.Equal(t, "3", p.CluesAcross[0].Enumeration)
	assert.Equal(t, 3, p.CluesAcross[1].Length)
	require.Len(t, p.CluesDown, 2)
	assert.Equal(t, "Right column", p.CluesDown[1].Text)
}

func TestParseDeriveIgnoresSourceNumbers(t *testing.T) {
	doc := puzzleXML(2, 2,
		`<cell x="1" y="1" solution="O" number="7"/><cell x="2" y="1" solution="N" number="8"/>`+
			`<cell x="1" y="2" solution="E" number="9"/><cell x="2" y="2" type="block"/>`,
		`<clues ordering="normal"><clue number="1">Single</clue></clues>`+
			`<clues ordering="normal"><clue number="1">Vowel pair</clue></clues>`)

	derived, err := ParsePuzzle(doc, NumberDerive)
	require.NoError(t, err)
	assert.Equal(t, "1", derived.Grid[0][0].Number)
	assert.Empty(t, derived.Grid[0][1].Number, "cell (1,0) starts no word of two letters")
	assert.Empty(t, derived.Grid[1][0].Number)
	assert.Equal(t, 2, derived.CluesAcross[0].Length)
	assert.Equal(t, 2, derived.CluesDown[0].Length)

	trusted, err := ParsePuzzle(doc, NumberTrust)
	require.NoError(t, err)
	assert.Equal(t, Coord{X: 0, Y: 0}, trusted.AcrossStarts["7"])
	assert.NotContains(t, trusted.AcrossStarts, "1")
	assert.Zero(t, trusted.CluesAcross[0].Length, "clue 1 matches no trusted number")
}

func TestParseSortsCluesInDeriveMode(t *testing.T) {
	doc := strings.Replace(tinyXML,
		`<clue number="1" format="3">First row</clue>
<clue number="3" format="3">Last row</clue>`,
		`<clue number="3" format="3">Last row</clue>
<clue number="1" format="3">First row</clue>`, 1)

	p, err := ParsePuzzle(doc, NumberDerive)
	require.NoError(t, err)
	assert.Equal(t, "1", p.CluesAcross[0].Number)
	assert.Equal(t, "3", p.CluesAcross[1].Number)

	p, err = ParsePuzzle(doc, NumberTrust)
	require.NoError(t, err)
	assert.Equal(t, "3", p.CluesAcross[0].Number, "trust mode keeps document order")
}

func TestParseClueMarkup(t *testing.T) {
	doc := puzzleXML(2, 1,
		`<cell x="1" y="1" solution="G"/><cell x="2" y="1" solution="O"/>`,
		`<clues><clue number="1">Move <i>along</i>, <b>now</b></clue></clues><clues/>`)

	p, err := ParsePuzzle(doc, NumberDerive)
	require.NoError(t, err)
	assert.Equal(t, "Move along, now", p.CluesAcross[0].Text)
}

func TestParseSkipsNonNormalClueGroups(t *testing.T) {
	doc := puzzleXML(2, 1,
		`<cell x="1" y="1" solution="G"/><cell x="2" y="1" solution="O"/>`,
		`<clues ordering="random"><clue number="1">Ignored</clue></clues>`+
			`<clues ordering="normal"><clue number="1">Leave</clue></clues>`+
			`<clues ordering="normal"></clues>`)

	p, err := ParsePuzzle(doc, NumberDerive)
	require.NoError(t, err)
	require.Len(t, p.CluesAcross, 1)
	assert.Equal(t, "Leave", p.CluesAcross[0].Text)
}

func TestParseMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":     "",
		"truncated": `<crossword-compiler><grid width="2"`,
		"unclosed":  `<crossword-compiler><grid width="2" height="1"></crossword-compiler>`,
		"text only": "not xml at all",
	} {
		t.Run(name, func(t *testing.T) {
			p, err := ParsePuzzle(doc, NumberDerive)
			require.ErrorIs(t, err, ErrMalformedXML)
			require.NotNil(t, p)
			assert.Zero(t, p.Width)
			assert.Empty(t, p.Grid)
			assert.Empty(t, p.CluesAcross)
			assert.Empty(t, p.CluesDown)
		})
	}
}

func TestParseMissingGrid(t *testing.T) {
	doc := `<crossword-compiler><crossword><clues><clue number="1">Lost</clue></clues></crossword></crossword-compiler>`

	p, err := ParsePuzzle(doc, NumberDerive)
	require.ErrorIs(t, err, ErrMissingGrid)
	assert.Zero(t, p.Width)
	assert.Empty(t, p.CluesAcross, "clues are dropped with the grid")
}

func TestParseBadDimensions(t *testing.T) {
	for _, dims := range [][2]string{{"0", "3"}, {"x", "3"}, {"3", "-1"}, {"300", "3"}} {
		doc := fmt.Sprintf(`<crossword-compiler><grid width=%q height=%q></grid><clues/></crossword-compiler>`, dims[0], dims[1])
		_, err := ParsePuzzle(doc, NumberDerive)
		assert.ErrorIs(t, err, ErrMissingGrid, "dimensions %v", dims)
	}
}

func TestParseMissingClues(t *testing.T) {
	doc := puzzleXML(2, 1, `<cell x="1" y="1" solution="G"/><cell x="2" y="1" solution="O"/>`, "")

	p, err := ParsePuzzle(doc, NumberDerive)
	require.ErrorIs(t, err, ErrMissingClues)
	assert.Equal(t, 2, p.Width, "grid survives missing clues")
	assert.Empty(t, p.CluesAcross)
	assert.Empty(t, p.CluesDown)
	assert.Equal(t, Coord{X: 0, Y: 0}, p.AcrossStarts["1"])
}

func TestParseSingleClueGroup(t *testing.T) {
	doc := puzzleXML(2, 1,
		`<cell x="1" y="1" solution="G"/><cell x="2" y="1" solution="O"/>`,
		`<clues><clue number="1">Leave</clue></clues>`)

	p, err := ParsePuzzle(doc, NumberDerive)
	require.NoError(t, err)
	assert.Len(t, p.CluesAcross, 1)
	assert.Empty(t, p.CluesDown)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], "one clue group")
}

func TestParseCellAnomalies(t *testing.T) {
	doc := puzzleXML(3, 1,
		`<cell x="1" y="1" solution="a"/><cell x="2" y="1" solution="b"/>`+
			`<cell x="9" y="1" solution="Z"/><cell x="one" y="1" solution="Z"/>`,
		`<clues><clue number="1">Pair</clue></clues><clues/>`)

	p, err := ParsePuzzle(doc, NumberDerive)
	require.NoError(t, err)

	assert.Equal(t, "A", p.Grid[0][0].Solution, "solutions are uppercased")
	assert.True(t, p.Grid[0][2].Block, "a position with no cell becomes a block")
	assert.Equal(t, 2, p.CluesAcross[0].Length)
	assert.Len(t, p.Warnings, 3)
}
