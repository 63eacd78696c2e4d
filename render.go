package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	renderTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	renderBlockStyle = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	renderCellStyle  = lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0"))
	renderPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	renderDoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderOptions controls RenderPuzzle.
type RenderOptions struct {
	Letters      LetterState // nil renders an empty grid
	ShowSolution bool
}

// RenderPuzzle draws the grid beside the clue lists for printing in a terminal.
func RenderPuzzle(p *Puzzle, opts RenderOptions) string {
	var rows []string
	for y := 0; y < p.Height; y++ {
		var cells []string
		for x := 0; x < p.Width; x++ {
			c := Coord{X: x, Y: y}
			cell := p.Cell(c)
			if cell.Block {
				cells = append(cells, renderBlockStyle.Render("   "))
				continue
			}
			ch := "·"
			switch {
			case opts.ShowSolution && cell.Solution != "":
				ch = firstRune(cell.Solution)
			case opts.Letters != nil && opts.Letters.Letter(c) != "":
				ch = opts.Letters.Letter(c)
			}
			cells = append(cells, renderCellStyle.Render(" "+ch+" "))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	grid := renderPanelStyle.Render(strings.Join(rows, "\n"))

	var status map[string]bool
	if opts.Letters != nil {
		status = make(map[string]bool)
		for _, st := range ClueCompletion(p, opts.Letters) {
			status[st.Direction.String()+st.Number] = st.Complete
		}
	}
	clues := lipgloss.JoinVertical(lipgloss.Left,
		renderClueList(p, Across, status),
		"",
		renderClueList(p, Down, status),
	)

	header := p.Title
	if header == "" {
		header = fmt.Sprintf("%dx%d crossword", p.Width, p.Height)
	}
	if p.Author != "" {
		header += " by " + p.Author
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", clues)
	return lipgloss.JoinVertical(lipgloss.Left, renderTitleStyle.Render(header), body)
}

func renderClueList(p *Puzzle, d Direction, status map[string]bool) string {
	lines := []string{renderTitleStyle.Render(strings.ToUpper(d.String()))}
	for _, cl := range p.Clues(d) {
		line := fmt.Sprintf("%3s %s %s", cl.Number, cl.Text, clueHint(cl))
		if status[d.String()+cl.Number] {
			line = renderDoneStyle.Render(line + " ✓")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
