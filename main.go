package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// styles
var (
	borderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	editBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cursorStyle     = lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	scrollbarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	thumbStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
)

const inputBoxHeight = 3 // one text line plus the box border

type mode int

const (
	modeNormal mode = iota
	modeEditing
)

// scrollState tracks which slice of the rendered grid is in view.
type scrollState struct {
	offset         int
	contentLength  int
	viewportHeight int
}

func (s *scrollState) down() {
	// No upper clamp: offsets past the end are absorbed at render
	// time (see gridSlice). TODO: decide whether down should stop at
	// contentLength instead.
	s.offset++
}

func (s *scrollState) up() {
	if s.offset >= 1 {
		s.offset--
	}
}

type model struct {
	width  int
	height int

	mode mode
	keys keyMap
	buf  inputBuffer

	exec    *executor
	results *resultSet
	table   renderedTable
	scroll  scrollState

	// last engine or render failure, shown inline in the result
	// region; empty after a successful run
	errMsg string
}

func initialModel(exec *executor) model {
	return model{
		mode: modeNormal,
		keys: defaultKeyMap(),
		exec: exec,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll.viewportHeight = m.resultInnerHeight()
		m.refresh()
		return m, nil
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.scroll.down()
		case tea.MouseButtonWheelUp:
			m.scroll.up()
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.mode == modeEditing {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Edit):
		m.mode = modeEditing
	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll.down()
	case key.Matches(msg, m.keys.ScrollUp):
		m.scroll.up()
	}
	m.refresh()
	return m, nil
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.submit()
	case key.Matches(msg, m.keys.Back):
		m.mode = modeNormal
	case key.Matches(msg, m.keys.Backspace):
		m.buf.deleteBeforeCursor()
	case key.Matches(msg, m.keys.Left):
		m.buf.moveLeft()
	case key.Matches(msg, m.keys.Right):
		m.buf.moveRight()
	default:
		switch msg.Type {
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.buf.insert(r)
			}
		case tea.KeySpace:
			m.buf.insert(' ')
		}
	}
	m.refresh()
	return m, nil
}

// submit runs the buffer's text against the engine. Success replaces
// the result set and consumes the input; failure keeps both exactly
// as they were and leaves the error for the result region.
func (m *model) submit() {
	rs, err := m.exec.execute(context.Background(), m.buf.snapshot())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.results = rs
	m.errMsg = ""
	m.buf.clear()
	m.scroll.offset = 0
}

// refresh recomputes the rendered grid and recalibrates the scroll
// content length. Runs once per processed event.
func (m *model) refresh() {
	rt, err := render(m.results)
	if err != nil {
		m.errMsg = err.Error()
		m.table = renderedTable{}
	} else {
		m.table = rt
	}
	m.scroll.contentLength = m.table.lines
}

// --- View ---

func (m model) resultInnerHeight() int {
	h := m.height - inputBoxHeight - 1 - 2 // input box, help line, result border
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewInput())
	b.WriteString("\n")
	b.WriteString(m.viewResult())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpLine()))
	return b.String()
}

func (m model) viewInput() string {
	st := borderStyle
	if m.mode == modeEditing {
		st = editBorderStyle
	}
	return titledBox("SQL", []string{m.inputLine()}, m.width, inputBoxHeight, st)
}

// inputLine shows the buffer with a block cursor at the edit point,
// windowed so the cursor stays visible when the text outgrows the box.
func (m model) inputLine() string {
	vw := m.width - 4
	if vw < 1 {
		vw = 1
	}
	t := m.buf.text
	cur := m.buf.cursor

	start := 0
	if cur >= vw {
		start = cur - vw + 1
	}
	end := start + vw
	if end > len(t) {
		end = len(t)
	}

	if m.mode != modeEditing {
		return string(t[start:end])
	}
	before := string(t[start:cur])
	if cur < end {
		return before + cursorStyle.Render(string(t[cur])) + string(t[cur+1:end])
	}
	return before + cursorStyle.Render(" ")
}

func (m model) viewResult() string {
	inner := m.scroll.viewportHeight
	if inner < 1 {
		inner = 1
	}
	innerW := m.width - 2
	if innerW < 2 {
		innerW = 2
	}

	var body []string
	gridHeight := inner
	if m.errMsg != "" {
		msg := runewidth.Truncate("error: "+m.errMsg, innerW-1, "…")
		body = append(body, errorStyle.Render(msg))
		gridHeight--
	}

	lines := gridSlice(m.table.grid, m.scroll.offset, gridHeight)
	bar := renderScrollbar(gridHeight, m.scroll.contentLength, m.scroll.offset)
	for i := 0; i < gridHeight; i++ {
		line := ""
		if i < len(lines) {
			line = runewidth.Truncate(lines[i], innerW-1, "…")
		}
		line += strings.Repeat(" ", innerW-1-runewidth.StringWidth(line))
		body = append(body, line+bar[i])
	}

	title := "Result"
	if n := m.results.rowCount(); n > 0 {
		title = fmt.Sprintf("Result (%d rows)", n)
	}
	return titledBox(title, body, m.width, inner+2, borderStyle)
}

func (m model) helpLine() string {
	if m.mode == modeEditing {
		return " enter run  ←/→ cursor  esc normal mode"
	}
	return " e edit  q quit  ↑/↓ scroll"
}

// gridSlice returns up to height lines of grid starting at offset.
// Offsets past the end yield nothing rather than an error; the scroll
// state deliberately has no upper bound.
func gridSlice(grid string, offset, height int) []string {
	if grid == "" || height <= 0 {
		return nil
	}
	lines := strings.Split(grid, "\n")
	if offset >= len(lines) {
		return nil
	}
	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return lines[offset:end]
}

// renderScrollbar draws the right-edge column: arrow caps and a
// proportional thumb on a plain track. Out-of-range offsets are
// clamped here and only here.
func renderScrollbar(height, contentLength, offset int) []string {
	bar := make([]string, height)
	for i := range bar {
		bar[i] = scrollbarStyle.Render("│")
	}
	if height >= 2 {
		bar[0] = scrollbarStyle.Render("↑")
		bar[height-1] = scrollbarStyle.Render("↓")
	}
	track := height - 2
	if track < 1 || contentLength <= track {
		return bar
	}

	thumb := track * track / contentLength
	if thumb < 1 {
		thumb = 1
	}
	maxOffset := contentLength - track
	pos := offset
	if pos > maxOffset {
		pos = maxOffset
	}
	start := 1 + pos*(track-thumb)/maxOffset
	for i := start; i < start+thumb && i <= track; i++ {
		bar[i] = thumbStyle.Render("█")
	}
	return bar
}

// titledBox hand-draws a bordered region with the label in the top
// border.
func titledBox(title string, body []string, width, height int, st lipgloss.Style) string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}

	fill := inner - runewidth.StringWidth(title) - 3
	if fill < 0 {
		fill = 0
	}
	var sb strings.Builder
	sb.WriteString(st.Render("┌─ " + title + " " + strings.Repeat("─", fill) + "┐"))

	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		if n := inner - lipgloss.Width(line); n > 0 {
			line += strings.Repeat(" ", n)
		}
		sb.WriteString("\n")
		sb.WriteString(st.Render("│") + line + st.Render("│"))
	}

	sb.WriteString("\n")
	sb.WriteString(st.Render("└" + strings.Repeat("─", inner) + "┘"))
	return sb.String()
}

func main() {
	exec, err := openExecutor()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(exec), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()
	exec.close()
	if runErr != nil {
		fmt.Printf("error: %v\n", runErr)
		os.Exit(1)
	}
}
