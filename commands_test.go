package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	for payload, want := range map[string]Command{
		`{"type":"move","motion":"left"}`:                  MoveCursor{Motion: MotionLeft},
		`{"type":"type","letter":"q"}`:                     TypeLetter{Letter: "q"},
		`{"type":"backspace"}`:                             Backspace{},
		`{"type":"delete"}`:                                Delete{},
		`{"type":"select","x":0,"y":2}`:                    SelectCell{Coord: Coord{X: 0, Y: 2}},
		`{"type":"toggle"}`:                                ToggleDirection{},
		`{"type":"clue","number":"12","direction":"down"}`: SelectClue{Number: "12", Direction: Down},
	} {
		got, err := DecodeCommand([]byte(payload))
		require.NoError(t, err, payload)
		assert.Equal(t, want, got, payload)
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	for _, payload := range []string{
		`{"type":"jump"}`,
		`{"type":"move","motion":"north"}`,
		`{"type":"select","x":1}`,
		`{"type":"clue","number":"1","direction":"diagonal"}`,
	} {
		_, err := DecodeCommand([]byte(payload))
		assert.ErrorIs(t, err, ErrUnknownCommand, payload)
	}

	_, err := DecodeCommand([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEditsLetters(t *testing.T) {
	assert.True(t, editsLetters(TypeLetter{Letter: "A"}))
	assert.True(t, editsLetters(Backspace{}))
	assert.True(t, editsLetters(Delete{}))
	assert.False(t, editsLetters(MoveCursor{Motion: MotionUp}))
	assert.False(t, editsLetters(SelectClue{Number: "1"}))
}

func TestCommandsDriveEngine(t *testing.T) {
	e, letters := newTestEngine(t)

	for _, cmd := range []Command{
		SelectCell{Coord: Coord{X: 0, Y: 0}},
		TypeLetter{Letter: "a"},
		TypeLetter{Letter: "b"},
		ToggleDirection{},
		MoveCursor{Motion: MotionLeft},
		Backspace{},
	} {
		cmd.apply(e)
	}

	requireSelected(t, e, Coord{X: 1, Y: 0})
	assert.Equal(t, Across, e.Direction(), "(1,0) has no down word, so the move resolves back to across")
	assert.Equal(t, "A", letters.Letter(Coord{X: 0, Y: 0}))
	assert.Empty(t, letters.Letter(Coord{X: 1, Y: 0}))
}
