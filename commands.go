package main

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is an input event already normalised by the UI layer. Raw key and
// pointer events never reach the engine.
type Command interface {
	apply(e *Engine)
}

type MoveCursor struct{ Motion Motion }
type TypeLetter struct{ Letter string }
type Backspace struct{}
type Delete struct{}
type SelectCell struct{ Coord Coord }
type ToggleDirection struct{}
type SelectClue struct {
	Number    string
	Direction Direction
}

func (c MoveCursor) apply(e *Engine) { e.Move(c.Motion) }
func (c TypeLetter) apply(e *Engine) { e.TypeLetter(c.Letter) }
func (Backspace) apply(e *Engine) { e.MoveBack() }
func (Delete) apply(e *Engine) { e.ClearCurrent() }
func (c SelectCell) apply(e *Engine) { e.SelectCell(c.Coord) }
func (ToggleDirection) apply(e *Engine) { e.ToggleDirection() }
func (c SelectClue) apply(e *Engine) { e.SelectClue(c.Number, c.Direction) }

// editsLetters reports whether cmd may change letter state, so callers know
// when progress needs saving.
func editsLetters(cmd Command) bool {
	switch cmd.(type) {
	case TypeLetter, Backspace, Delete:
		return true
	}
	return false
}

// commandPayload is the JSON form posted by browser clients:
//
//	{"type":"move","motion":"left"}
//	{"type":"type","letter":"a"}
//	{"type":"select","x":3,"y":0}
//	{"type":"clue","number":"12","direction":"down"}
type commandPayload struct {
	Type      string `json:"type"`
	Motion    string `json:"motion"`
	Letter    string `json:"letter"`
	X         *int   `json:"x"`
	Y         *int   `json:"y"`
	Number    string `json:"number"`
	Direction string `json:"direction"`
}

// DecodeCommand parses a JSON command payload.
func DecodeCommand(data []byte) (Command, error) {
	var p commandPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	switch p.Type {
	case "move":
		m, ok := ParseMotion(p.Motion)
		if !ok {
			return nil, fmt.Errorf("%w: bad motion %q", ErrUnknownCommand, p.Motion)
		}
		return MoveCursor{Motion: m}, nil
	case "type":
		return TypeLetter{Letter: p.Letter}, nil
	case "backspace":
		return Backspace{}, nil
	case "delete":
		return Delete{}, nil
	case "select":
		if p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("%w: select needs x and y", ErrUnknownCommand)
		}
		return SelectCell{Coord: Coord{X: *p.X, Y: *p.Y}}, nil
	case "toggle":
		return ToggleDirection{}, nil
	case "clue":
		d, err := ParseDirection(p.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownCommand, err)
		}
		return SelectClue{Number: p.Number, Direction: d}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, p.Type)
}
