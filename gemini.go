package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const analyzePrompt = `Analyse this photo of a crossword grid (black squares and white squares, clues listed beside it).

Extract it as JSON with this exact shape:
{
  "title": "<title if printed, else empty>",
  "author": "<author if printed, else empty>",
  "rows": ["AB#C.", "..."],
  "across": [{"number": "1", "text": "Clue text", "enumeration": "(5)"}],
  "down":   [{"number": "1", "text": "Clue text", "enumeration": "(3)"}]
}

Rules:
- "rows" has one string per grid row, top to bottom, all the same length.
- Use "#" for a black square.
- Use the printed letter for a filled white square, "." for an empty white square.
- Ignore the small clue numbers printed in squares.
- Copy clue numbers and texts exactly; "enumeration" is the bracketed length hint, or empty.
- Reply with the JSON only, no commentary or markdown.`

// photoGrid is the JSON shape the model is asked to produce.
type photoGrid struct {
	Title  string      `json:"title"`
	Author string      `json:"author"`
	Rows   []string    `json:"rows"`
	Across []photoClue `json:"across"`
	Down   []photoClue `json:"down"`
}

type photoClue struct {
	Number      string `json:"number"`
	Text        string `json:"text"`
	Enumeration string `json:"enumeration"`
}

// AnalyzeImage sends a photo to Gemini and returns the puzzle it describes.
// Numbers are always derived from the grid since the photo's own numbers are
// not read.
func (g *GeminiClient) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (*Puzzle, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: analyzePrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	var pg photoGrid
	if err := json.Unmarshal([]byte(text), &pg); err != nil {
		return nil, fmt.Errorf("parse grid JSON: %w\nraw response: %s", err, text)
	}
	return puzzleFromPhoto(pg)
}

// puzzleFromPhoto builds a Puzzle from the model's row strings and clue lists.
func puzzleFromPhoto(pg photoGrid) (*Puzzle, error) {
	height := len(pg.Rows)
	if height == 0 {
		return nil, fmt.Errorf("invalid grid: no rows")
	}
	width := len([]rune(pg.Rows[0]))
	if width == 0 || width > maxGridSide || height > maxGridSide {
		return nil, fmt.Errorf("invalid grid: %dx%d", width, height)
	}

	p := emptyPuzzle()
	p.Title = strings.TrimSpace(pg.Title)
	p.Author = strings.TrimSpace(pg.Author)
	p.Width, p.Height = width, height
	p.Grid = make([][]Cell, height)
	for y, row := range pg.Rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("invalid grid: row %d has %d cells, want %d", y+1, len(runes), width)
		}
		p.Grid[y] = make([]Cell, width)
		for x, r := range runes {
			switch r {
			case '#':
				p.Grid[y][x] = Cell{Block: true}
			case '.', ' ', '?':
				p.Grid[y][x] = Cell{}
			default:
				p.Grid[y][x] = Cell{Solution: FoldLetter(string(r))}
			}
		}
	}

	idx := IndexWords(p.Grid, NumberDerive)
	p.Grid = idx.Grid
	p.AcrossStarts = idx.AcrossStarts
	p.DownStarts = idx.DownStarts
	p.CluesAcross = photoClues(pg.Across, idx.AcrossLengths)
	p.CluesDown = photoClues(pg.Down, idx.DownLengths)

	for _, cl := range p.CluesAcross {
		if cl.Length == 0 {
			p.warnf("across clue %s has no matching word in the grid", cl.Number)
		}
	}
	for _, cl := range p.CluesDown {
		if cl.Length == 0 {
			p.warnf("down clue %s has no matching word in the grid", cl.Number)
		}
	}
	return p, nil
}

func photoClues(in []photoClue, lengths map[string]int) []Clue {
	out := make([]Clue, 0, len(in))
	for _, c := range in {
		num := strings.TrimSpace(c.Number)
		out = append(out, Clue{
			Number:      num,
			Text:        strings.TrimSpace(c.Text),
			Enumeration: strings.TrimSpace(c.Enumeration),
			Length:      lengths[num],
		})
	}
	sortClues(out)
	return out
}
