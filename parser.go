package main

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// maxGridSide bounds declared grid dimensions so a hostile document cannot
// make the parser allocate an enormous grid.
const maxGridSide = 256

var (
	ErrMalformedXML = errors.New("malformed puzzle XML")
	ErrMissingGrid  = errors.New("puzzle has no usable grid")
	ErrMissingClues = errors.New("puzzle has no clue groups")
)

type xmlCell struct {
	x, y     string
	typ      string
	solution string
	number   string
}

type xmlClue struct {
	number string
	format string
	text   string
}

// xmlDocument is the subset of a crossword-interchange document the parser reads.
type xmlDocument struct {
	hasGrid       bool
	width, height string
	cells         []xmlCell
	groups        [][]xmlClue
	title         string
	author        string
	creator       string
}

// ParsePuzzle converts crossword-interchange XML into a Puzzle.
//
// The returned puzzle is never nil. On structural failure it is an empty
// puzzle (no grid, no clues) and the error says why; when only the clue groups
// are missing the grid is still returned alongside ErrMissingClues. Recoverable
// anomalies are logged and collected in Puzzle.Warnings.
func ParsePuzzle(xmlText string, mode Numbering) (*Puzzle, error) {
	doc, err := scanDocument(xmlText)
	if err != nil {
		logWarn("puzzle parse failed", "error", err)
		return emptyPuzzle(), fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	p := emptyPuzzle()
	p.Title = strings.TrimSpace(doc.title)
	p.Author = strings.TrimSpace(doc.author)
	if p.Author == "" {
		p.Author = strings.TrimSpace(doc.creator)
	}

	if err := buildGrid(p, doc); err != nil {
		logWarn("puzzle grid unusable", "error", err)
		return emptyPuzzle(), err
	}

	var clueErr error
	switch len(doc.groups) {
	case 0:
		clueErr = ErrMissingClues
		logWarn("puzzle has no clue groups")
	case 1:
		p.CluesAcross = buildClues(doc.groups[0])
		p.warnf("only one clue group found; down clues are empty")
	default:
		p.CluesAcross = buildClues(doc.groups[0])
		p.CluesDown = buildClues(doc.groups[1])
		if len(doc.groups) > 2 {
			p.warnf("%d clue groups found; only the first two are used", len(doc.groups))
		}
	}

	idx := IndexWords(p.Grid, mode)
	if mode == NumberDerive {
		if n := numberingDisagreements(p.Grid, idx.Grid); n > 0 {
			logDebug("derived numbering differs from source", "cells", n)
		}
		p.Grid = idx.Grid
		sortClues(p.CluesAcross)
		sortClues(p.CluesDown)
	}
	p.AcrossStarts = idx.AcrossStarts
	p.DownStarts = idx.DownStarts
	for i := range p.CluesAcross {
		p.CluesAcross[i].Length = idx.AcrossLengths[p.CluesAcross[i].Number]
	}
	for i := range p.CluesDown {
		p.CluesDown[i].Length = idx.DownLengths[p.CluesDown[i].Number]
	}

	return p, clueErr
}

func (p *Puzzle) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.Warnings = append(p.Warnings, msg)
	logWarn("puzzle: " + msg)
}

func buildGrid(p *Puzzle, doc *xmlDocument) error {
	if !doc.hasGrid {
		return ErrMissingGrid
	}
	width, werr := strconv.Atoi(strings.TrimSpace(doc.width))
	height, herr := strconv.Atoi(strings.TrimSpace(doc.height))
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %q x %q", ErrMissingGrid, doc.width, doc.height)
	}
	if width > maxGridSide || height > maxGridSide {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrMissingGrid, width, height, maxGridSide)
	}

	p.Width, p.Height = width, height
	p.Grid = make([][]Cell, height)
	visited := make([][]bool, height)
	for y := range p.Grid {
		p.Grid[y] = make([]Cell, width)
		visited[y] = make([]bool, width)
	}

	for _, c := range doc.cells {
		x, xerr := strconv.Atoi(strings.TrimSpace(c.x))
		y, yerr := strconv.Atoi(strings.TrimSpace(c.y))
		if xerr != nil || yerr != nil {
			p.warnf("cell with unreadable coordinates x=%q y=%q skipped", c.x, c.y)
			continue
		}
		x, y = x-1, y-1
		if x < 0 || x >= width || y < 0 || y >= height {
			p.warnf("cell (%d,%d) outside %dx%d grid skipped", x+1, y+1, width, height)
			continue
		}
		visited[y][x] = true
		if c.typ == "block" {
			p.Grid[y][x] = Cell{Block: true}
			continue
		}
		p.Grid[y][x] = Cell{
			Solution: strings.ToUpper(strings.TrimSpace(c.solution)),
			Number:   strings.TrimSpace(c.number),
		}
	}

	missing := 0
	for y := range visited {
		for x := range visited[y] {
			if !visited[y][x] {
				p.Grid[y][x] = Cell{Block: true}
				missing++
			}
		}
	}
	if missing > 0 {
		p.warnf("%d grid positions had no cell and were made blocks", missing)
	}
	return nil
}

func buildClues(group []xmlClue) []Clue {
	clues := make([]Clue, 0, len(group))
	for _, c := range group {
		clues = append(clues, Clue{
			Number:      strings.TrimSpace(c.number),
			Text:        strings.TrimSpace(c.text),
			Enumeration: strings.TrimSpace(c.format),
		})
	}
	return clues
}

func sortClues(clues []Clue) {
	slices.SortStableFunc(clues, func(a, b Clue) int {
		switch {
		case numberLess(a.Number, b.Number):
			return -1
		case numberLess(b.Number, a.Number):
			return 1
		}
		return 0
	})
}

func numberingDisagreements(src, derived [][]Cell) int {
	n := 0
	for y := range src {
		for x := range src[y] {
			if s := src[y][x].Number; s != "" && s != derived[y][x].Number {
				n++
			}
		}
	}
	return n
}

// scanDocument walks the token stream and picks out the elements the parser
// needs, wherever they sit in the tree.
func scanDocument(xmlText string) (*xmlDocument, error) {
	dec := xml.NewDecoder(strings.NewReader(xmlText))
	dec.Strict = true

	doc := &xmlDocument{}
	var (
		stack    []string
		sawRoot  bool
		capture  *strings.Builder
		capDepth int
		clue     *xmlClue
		inGroup  bool
		metaText = map[string]*string{
			"title":   &doc.title,
			"author":  &doc.author,
			"creator": &doc.creator,
		}
		metaTarget *string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			name := t.Name.Local
			stack = append(stack, name)
			if capture != nil {
				continue
			}
			switch name {
			case "grid":
				if !doc.hasGrid {
					doc.hasGrid = true
					doc.width = attr(t, "width")
					doc.height = attr(t, "height")
				}
			case "cell":
				doc.cells = append(doc.cells, xmlCell{
					x:        attr(t, "x"),
					y:        attr(t, "y"),
					typ:      attr(t, "type"),
					solution: attr(t, "solution"),
					number:   attr(t, "number"),
				})
			case "clues":
				ordering := attr(t, "ordering")
				inGroup = ordering == "" || ordering == "normal"
				if inGroup {
					doc.groups = append(doc.groups, []xmlClue{})
				}
			case "clue":
				if inGroup {
					clue = &xmlClue{number: attr(t, "number"), format: attr(t, "format")}
					capture, capDepth = &strings.Builder{}, len(stack)
				}
			case "title", "author", "creator":
				if slices.Contains(stack, "metadata") && *metaText[name] == "" {
					metaTarget = metaText[name]
					capture, capDepth = &strings.Builder{}, len(stack)
				}
			}

		case xml.CharData:
			if capture != nil {
				capture.Write(t)
			}

		case xml.EndElement:
			if capture != nil && len(stack) == capDepth {
				switch {
				case clue != nil:
					clue.text = capture.String()
					last := len(doc.groups) - 1
					doc.groups[last] = append(doc.groups[last], *clue)
					clue = nil
				case metaTarget != nil:
					*metaTarget = capture.String()
					metaTarget = nil
				}
				capture = nil
			}
			if t.Name.Local == "clues" {
				inGroup = false
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !sawRoot {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
