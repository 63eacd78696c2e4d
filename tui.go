package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	tuiCellW = 4
	tuiCellH = 2

	pageMain    = "main"
	pageConfirm = "confirm"
)

var (
	styleBlock     = tcell.StyleDefault.Background(tcell.ColorDimGray)
	styleLetter    = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleWord      = tcell.StyleDefault.Background(tcell.ColorLightSkyBlue).Foreground(tcell.ColorBlack)
	styleSelected  = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	colorMatch     = tcell.ColorGreen
	colorMismatch  = tcell.ColorRed
	colorClueFaint = "gray"
)

// Player is the terminal renderer. It turns key and mouse events into
// commands and redraws from the session view.
type Player struct {
	app      *tview.Application
	pages    *tview.Pages
	board    *tview.Box
	clue     *tview.TextView
	across   *tview.TextView
	down     *tview.TextView
	status   *tview.TextView
	session  *Session
	puzzle   *Puzzle
	progress ProgressStore
	view     View
}

// NewPlayer builds the terminal UI for one session.
func NewPlayer(sess *Session, p *Puzzle, progress ProgressStore) *Player {
	pl := &Player{
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		board:    tview.NewBox(),
		clue:     tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		across:   tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		down:     tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		status:   tview.NewTextView().SetDynamicColors(true),
		session:  sess,
		puzzle:   p,
		progress: progress,
	}

	title := p.Title
	if title == "" {
		title = "Crossword"
	}
	if p.Author != "" {
		title += " by " + p.Author
	}
	pl.board.SetBorder(true).SetTitle(" " + title + " ")
	pl.board.SetDrawFunc(pl.drawBoard)
	pl.board.SetMouseCapture(pl.handleMouse)
	pl.across.SetBorder(true).SetTitle(" Across ")
	pl.down.SetBorder(true).SetTitle(" Down ")
	pl.clue.SetBorder(true)

	boardW := p.Width*tuiCellW + 2
	boardH := p.Height*tuiCellH + 2
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(pl.board, boardH, 0, true).
		AddItem(pl.clue, 4, 0, false).
		AddItem(nil, 0, 1, false)
	clues := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(pl.across, 0, 1, false).
		AddItem(pl.down, 0, 1, false)
	body := tview.NewFlex().
		AddItem(left, boardW, 0, true).
		AddItem(clues, 0, 1, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(pl.status, 1, 0, false)

	pl.pages.AddPage(pageMain, root, true, true)
	pl.app.SetRoot(pl.pages, true).EnableMouse(true)
	pl.app.SetInputCapture(pl.handleKey)

	pl.setStatus(keyHelp)
	pl.refresh(sess.View())
	return pl
}

const keyHelp = "[::b]arrows[::-] move  [::b]tab[::-] direction  [::b]^E/^W/^G[::-] check cell/word/grid  " +
	"[::b]^R/^V[::-] reveal word/grid  [::b]^S[::-] copy share code  [::b]^X[::-] clear  [::b]esc[::-] quit"

// Run blocks until the player quits.
func (pl *Player) Run() error {
	return pl.app.Run()
}

// commandForKey maps a terminal key to an engine command.
func commandForKey(ev *tcell.EventKey) (Command, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return MoveCursor{Motion: MotionUp}, true
	case tcell.KeyDown:
		return MoveCursor{Motion: MotionDown}, true
	case tcell.KeyLeft:
		return MoveCursor{Motion: MotionLeft}, true
	case tcell.KeyRight:
		return MoveCursor{Motion: MotionRight}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Backspace{}, true
	case tcell.KeyDelete:
		return Delete{}, true
	case tcell.KeyTab, tcell.KeyBacktab:
		return ToggleDirection{}, true
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return ToggleDirection{}, true
		}
		if ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) != 0 {
			return nil, false
		}
		if FoldLetter(string(ev.Rune())) != "" {
			return TypeLetter{Letter: string(ev.Rune())}, true
		}
	}
	return nil, false
}

func (pl *Player) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if name, _ := pl.pages.GetFrontPage(); name == pageConfirm {
		return ev
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		pl.app.Stop()
		return nil
	case tcell.KeyCtrlE:
		pl.check(ScopeCell)
		return nil
	case tcell.KeyCtrlW:
		pl.check(ScopeWord)
		return nil
	case tcell.KeyCtrlG:
		pl.check(ScopeGrid)
		return nil
	case tcell.KeyCtrlR:
		pl.confirm("Reveal the answer for this clue?", func() { pl.reveal(ScopeWord) })
		return nil
	case tcell.KeyCtrlV:
		pl.confirm("Reveal the entire grid?", func() { pl.reveal(ScopeGrid) })
		return nil
	case tcell.KeyCtrlS:
		pl.copyShareCode()
		return nil
	case tcell.KeyCtrlX:
		pl.confirm("Clear all progress on this puzzle?", pl.clearProgress)
		return nil
	}

	cmd, ok := commandForKey(ev)
	if !ok {
		return ev
	}
	view, edited := pl.session.Apply(cmd)
	if edited {
		pl.save()
	}
	pl.refresh(view)
	if view.Solved && edited {
		pl.setStatus("[green::b]Solved![-::-] " + keyHelp)
	}
	return nil
}

func (pl *Player) handleMouse(action tview.MouseAction, ev *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
	if action != tview.MouseLeftDown {
		return action, ev
	}
	mx, my := ev.Position()
	ix, iy, _, _ := pl.board.GetInnerRect()
	if mx < ix || my < iy {
		return action, ev
	}
	c := Coord{X: (mx - ix) / tuiCellW, Y: (my - iy) / tuiCellH}
	if !pl.puzzle.InBounds(c) {
		return action, ev
	}
	view, _ := pl.session.Apply(SelectCell{Coord: c})
	pl.refresh(view)
	return tview.MouseConsumed, nil
}

func (pl *Player) check(scope Scope) {
	verdicts := pl.session.Check(scope)
	wrong := 0
	for _, v := range verdicts {
		if v.Verdict == VerdictMismatch {
			wrong++
		}
	}
	pl.refresh(pl.session.View())
	pl.setStatus(fmt.Sprintf("Checked %s: %d wrong.  %s", scope, wrong, keyHelp))
}

func (pl *Player) reveal(scope Scope) {
	pl.session.Reveal(scope)
	pl.save()
	pl.refresh(pl.session.View())
}

func (pl *Player) clearProgress() {
	pl.session.Clear()
	if pl.progress != nil {
		if err := pl.progress.Delete(context.Background(), ProgressKey(pl.session.PuzzleID)); err != nil {
			logError("delete progress failed", "puzzle", pl.session.PuzzleID, "error", err)
		}
	}
	pl.refresh(pl.session.View())
}

func (pl *Player) copyShareCode() {
	code := pl.session.ShareCode()
	if err := clipboard.WriteAll(code); err != nil {
		logWarn("clipboard unavailable", "error", err)
		pl.setStatus("Share code: " + code)
		return
	}
	pl.setStatus("[green]Share code copied![-]  " + keyHelp)
}

func (pl *Player) save() {
	if pl.progress == nil {
		return
	}
	if err := pl.progress.Save(context.Background(), ProgressKey(pl.session.PuzzleID), pl.session.Progress()); err != nil {
		logError("save progress failed", "puzzle", pl.session.PuzzleID, "error", err)
	}
}

// confirm shows a yes/no dialog and runs onYes when accepted.
func (pl *Player) confirm(msg string, onYes func()) {
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			pl.pages.RemovePage(pageConfirm)
			if label == "Yes" {
				onYes()
			}
		})
	pl.pages.AddPage(pageConfirm, modal, false, true)
}

func (pl *Player) setStatus(text string) {
	pl.status.SetText(text)
}

func (pl *Player) refresh(v View) {
	pl.view = v

	if v.Clue != nil {
		text := ""
		if v.Clue.Clue != nil {
			text = v.Clue.Clue.Text + " " + clueHint(*v.Clue.Clue)
		}
		pl.clue.SetTitle(fmt.Sprintf(" %s %s ", v.Clue.Number, v.Clue.Direction))
		pl.clue.SetText(tview.Escape(text))
	} else {
		pl.clue.SetTitle("")
		pl.clue.SetText("")
	}

	complete := make(map[string]bool, len(v.Completion))
	for _, st := range v.Completion {
		complete[st.Direction.String()+st.Number] = st.Complete
	}
	pl.across.SetText(pl.clueList(Across, complete))
	pl.down.SetText(pl.clueList(Down, complete))
}

func (pl *Player) clueList(d Direction, complete map[string]bool) string {
	var b strings.Builder
	for _, cl := range pl.puzzle.Clues(d) {
		line := fmt.Sprintf("%3s %s %s", cl.Number, tview.Escape(cl.Text), clueHint(cl))
		active := pl.view.Clue != nil && pl.view.Clue.Direction == d && pl.view.Clue.Number == cl.Number
		switch {
		case active:
			fmt.Fprintf(&b, "[black:yellow]%s[-:-]\n", line)
		case complete[d.String()+cl.Number]:
			fmt.Fprintf(&b, "[%s]%s[-]\n", colorClueFaint, line)
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// clueHint is the enumeration, or the word length when the source has none.
func clueHint(cl Clue) string {
	if cl.Enumeration != "" {
		if strings.HasPrefix(cl.Enumeration, "(") {
			return cl.Enumeration
		}
		return "(" + cl.Enumeration + ")"
	}
	return fmt.Sprintf("(%d)", cl.Length)
}

func (pl *Player) drawBoard(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	ix, iy, iw, ih := pl.board.GetInnerRect()

	letters := make(map[Coord]string)
	for i, c := range pl.puzzle.LetterCells() {
		if i < len(pl.view.Letters) && pl.view.Letters[i] != ' ' {
			letters[c] = pl.view.Letters[i : i+1]
		}
	}
	highlighted := make(map[Coord]bool, len(pl.view.Highlighted))
	for _, c := range pl.view.Highlighted {
		highlighted[c] = true
	}
	feedback := make(map[Coord]Verdict, len(pl.view.Feedback))
	for _, fb := range pl.view.Feedback {
		feedback[fb.Coord] = fb.Verdict
	}

	for cy := 0; cy < pl.puzzle.Height; cy++ {
		for cx := 0; cx < pl.puzzle.Width; cx++ {
			c := Coord{X: cx, Y: cy}
			px, py := ix+cx*tuiCellW, iy+cy*tuiCellH
			if px+tuiCellW > ix+iw || py+tuiCellH > iy+ih {
				continue
			}
			cell := pl.puzzle.Cell(c)

			style := styleLetter
			switch {
			case cell.Block:
				style = styleBlock
			case pl.view.Cursor.Selected != nil && *pl.view.Cursor.Selected == c:
				style = styleSelected
			case highlighted[c]:
				style = styleWord
			}
			letterStyle := style.Bold(true)
			switch feedback[c] {
			case VerdictMatch:
				letterStyle = letterStyle.Foreground(colorMatch)
			case VerdictMismatch:
				letterStyle = letterStyle.Foreground(colorMismatch)
			}

			top := []rune(fmt.Sprintf("%-*s", tuiCellW, cell.Number))
			bottom := []rune(strings.Repeat(" ", tuiCellW))
			if ch, ok := letters[c]; ok {
				bottom[tuiCellW/2-1] = []rune(ch)[0]
			}
			for i := 0; i < tuiCellW; i++ {
				screen.SetContent(px+i, py, top[i], nil, style.Dim(true))
				screen.SetContent(px+i, py+1, bottom[i], nil, letterStyle)
			}
		}
	}
	return ix, iy, iw, ih
}
