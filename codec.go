package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxRunLength caps a single RLE run; no grid has more cells than this.
const maxRunLength = maxGridSide * maxGridSide

var ErrCorruptState = errors.New("corrupt saved state")

// Serialize emits one character per letter cell in row-major order, a space
// for an empty cell. Blocks are skipped.
func Serialize(p *Puzzle, letters LetterState) string {
	var b strings.Builder
	for _, c := range p.LetterCells() {
		ch := letters.Letter(c)
		if ch == "" {
			ch = " "
		}
		b.WriteString(ch[:1])
	}
	return b.String()
}

// Deserialize writes s back into letters, one character per letter cell. Cells
// past the end of s, or holding a space, are cleared. Answer feedback on every
// letter cell is reset.
func Deserialize(p *Puzzle, letters LetterState, s string) {
	fr, _ := letters.(FeedbackResetter)
	for i, c := range p.LetterCells() {
		ch := ""
		if i < len(s) && s[i] != ' ' {
			ch = s[i : i+1]
		}
		letters.SetLetter(c, ch)
		if fr != nil {
			fr.ResetFeedback(c)
		}
	}
}

// RLEEncode run-length encodes s: each run is written as its length (omitted
// when 1) followed by the character, so "AAAB" becomes "3AB".
func RLEEncode(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	count := 1
	for i := 1; i <= len(s); i++ {
		if i < len(s) && s[i] == s[i-1] {
			count++
			continue
		}
		if count > 1 {
			b.WriteString(strconv.Itoa(count))
		}
		b.WriteByte(s[i-1])
		count = 1
	}
	return b.String()
}

// RLEDecode reverses RLEEncode. A count with no character after it, or a run
// longer than any grid, is an error.
func RLEDecode(s string) (string, error) {
	var b strings.Builder
	count := 0
	digits := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= '0' && ch <= '9' {
			count = count*10 + int(ch-'0')
			digits = true
			if count > maxRunLength {
				return "", fmt.Errorf("%w: run length exceeds %d", ErrCorruptState, maxRunLength)
			}
			continue
		}
		if !digits {
			count = 1
		}
		b.WriteString(strings.Repeat(string(ch), count))
		count, digits = 0, false
	}
	if digits {
		return "", fmt.Errorf("%w: dangling run length", ErrCorruptState)
	}
	return b.String(), nil
}

// EncodeShareCode packs the letters into the string carried by share links:
// base64 of the run-length encoded serialization.
func EncodeShareCode(p *Puzzle, letters LetterState) string {
	return base64.StdEncoding.EncodeToString([]byte(RLEEncode(Serialize(p, letters))))
}

// DecodeShareCode unpacks a share code into a serialized letter string and
// checks it fits p. Standard, URL-safe and unpadded base64 are all accepted.
func DecodeShareCode(p *Puzzle, code string) (string, error) {
	code = strings.TrimSpace(strings.TrimPrefix(code, "#"))
	raw, err := decodeBase64(code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	s, err := RLEDecode(string(raw))
	if err != nil {
		return "", err
	}
	return s, validateSerialized(p, s)
}

// ApplyShareCode loads a share code into letters. The code is fully decoded and
// validated first, so a corrupt code leaves letters untouched.
func ApplyShareCode(p *Puzzle, letters LetterState, code string) error {
	s, err := DecodeShareCode(p, code)
	if err != nil {
		return err
	}
	Deserialize(p, letters, s)
	return nil
}

// ApplySerialized loads locally persisted progress with the same checks as
// ApplyShareCode.
func ApplySerialized(p *Puzzle, letters LetterState, s string) error {
	if err := validateSerialized(p, s); err != nil {
		return err
	}
	Deserialize(p, letters, s)
	return nil
}

func validateSerialized(p *Puzzle, s string) error {
	if n := len(p.LetterCells()); len(s) > n {
		return fmt.Errorf("%w: %d characters for %d letter cells", ErrCorruptState, len(s), n)
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != ' ' && (ch < 'A' || ch > 'Z') {
			return fmt.Errorf("%w: unexpected character %q at %d", ErrCorruptState, ch, i)
		}
	}
	return nil
}

func decodeBase64(s string) ([]byte, error) {
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
