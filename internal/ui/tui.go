// Package ui provides the terminal dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/spec-view-go/internal/scanner"
	"github.com/nibzard/spec-view-go/internal/spec"
)

// ScanFunc produces a fresh scan result.
type ScanFunc func() (*scanner.Result, error)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	changes <-chan struct{}
	style   string
}

// WithChanges makes the dashboard rescan whenever a value arrives on ch.
func WithChanges(ch <-chan struct{}) TUIOption {
	return func(c *tuiConfig) {
		c.changes = ch
	}
}

// WithMarkdownStyle selects the glamour style for document bodies.
func WithMarkdownStyle(style string) TUIOption {
	return func(c *tuiConfig) {
		if style != "" {
			c.style = style
		}
	}
}

// RunTUI starts the dashboard and blocks until the user quits or ctx is done.
func RunTUI(ctx context.Context, scan ScanFunc, opts ...TUIOption) error {
	c := &tuiConfig{style: autoStyle}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(scan, c)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

type tuiModel struct {
	scan    ScanFunc
	changes <-chan struct{}
	style   string

	result  *scanner.Result
	loadErr error
	scans   int

	rows     []row
	cursor   int
	filter   spec.Status
	showHelp bool

	detail       *spec.Group
	detailText   string
	detailScroll int

	width, height int
}

type scanMsg struct {
	result *scanner.Result
	err    error
}

type changeMsg struct{}

func newTUIModel(scan ScanFunc, c *tuiConfig) *tuiModel {
	return &tuiModel{
		scan:    scan,
		changes: c.changes,
		style:   c.style,
		width:   100,
		height:  30,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{scanCmd(m.scan)}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

func scanCmd(scan ScanFunc) tea.Cmd {
	return func() tea.Msg {
		result, err := scan()
		return scanMsg{result: result, err: err}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeMsg{}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.renderDetail()
		return m, nil
	case scanMsg:
		m.applyScan(msg)
		return m, nil
	case changeMsg:
		return m, tea.Batch(scanCmd(m.scan), waitForChange(m.changes))
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r", "f5":
		return m, scanCmd(m.scan)
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	if m.detail != nil {
		switch msg.String() {
		case "esc", "backspace", "h", "left":
			m.detail = nil
			m.detailText = ""
		case "down", "j":
			m.scrollDetail(1)
		case "up", "k":
			m.scrollDetail(-1)
		case "pgdown", " ":
			m.scrollDetail(m.bodyHeight())
		case "pgup":
			m.scrollDetail(-m.bodyHeight())
		}
		return m, nil
	}

	switch msg.String() {
	case "down", "j":
		m.moveCursor(1)
	case "up", "k":
		m.moveCursor(-1)
	case "enter", "l", "right":
		if g := m.selected(); g != nil {
			m.detail = g
			m.detailScroll = 0
			m.renderDetail()
		}
	case "0":
		m.setFilter("")
	case "1", "2", "3", "4", "5":
		statuses := spec.Statuses()
		m.setFilter(statuses[int(msg.String()[0]-'1')])
	}
	return m, nil
}

// applyScan installs a new result, keeping the selection and any open
// detail pane on the same group name.
func (m *tuiModel) applyScan(msg scanMsg) {
	m.scans++
	if msg.err != nil {
		m.loadErr = msg.err
		return
	}
	m.loadErr = nil

	selected := ""
	if g := m.selected(); g != nil {
		selected = g.Name
	}
	m.result = msg.result
	m.rebuildRows(selected)

	if m.detail != nil {
		m.detail = m.result.Group(m.detail.Name)
		m.renderDetail()
	}
}

func (m *tuiModel) groups() []*spec.Group {
	if m.result == nil {
		return nil
	}
	return m.result.Groups
}

func (m *tuiModel) rebuildRows(selected string) {
	m.rows = buildRows(m.groups(), m.filter)
	m.cursor = -1
	for i, r := range m.rows {
		if r.kind == rowGroup && r.group.Name == selected {
			m.cursor = i
			break
		}
	}
	if m.cursor < 0 {
		m.cursor = 0
		m.moveCursor(0)
	}
}

func (m *tuiModel) setFilter(status spec.Status) {
	m.filter = status
	selected := ""
	if g := m.selected(); g != nil {
		selected = g.Name
	}
	m.rebuildRows(selected)
}

// moveCursor moves by delta group rows, skipping headers. A delta of 0
// snaps to the nearest group row at or after the cursor.
func (m *tuiModel) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	step := 1
	if delta < 0 {
		step = -1
	}
	remaining := delta * step
	i := m.cursor
	if remaining == 0 {
		for j := i; j < len(m.rows); j++ {
			if m.rows[j].kind == rowGroup {
				m.cursor = j
				return
			}
		}
		return
	}
	for remaining > 0 {
		j := i + step
		for j >= 0 && j < len(m.rows) && m.rows[j].kind != rowGroup {
			j += step
		}
		if j < 0 || j >= len(m.rows) {
			break
		}
		i = j
		remaining--
	}
	m.cursor = i
}

func (m *tuiModel) selected() *spec.Group {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].group
}

func (m *tuiModel) renderDetail() {
	if m.detail == nil {
		m.detailText = ""
		return
	}
	root := ""
	if m.result != nil {
		root = m.result.Root
	}
	m.detailText = renderDetail(m.detail, root, m.style, m.width-4)
	m.scrollDetail(0)
}

func (m *tuiModel) bodyHeight() int {
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m *tuiModel) scrollDetail(delta int) {
	lines := strings.Count(m.detailText, "\n") + 1
	maxScroll := lines - m.bodyHeight()
	if maxScroll < 0 {
		maxScroll = 0
	}
	m.detailScroll += delta
	if m.detailScroll > maxScroll {
		m.detailScroll = maxScroll
	}
	if m.detailScroll < 0 {
		m.detailScroll = 0
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.result)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.detail != nil)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error scanning specs:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
	}
	if m.result == nil {
		if m.loadErr == nil {
			b.WriteString("Scanning...\n\n")
		}
		writeFooter(&b, false)
		return b.String()
	}

	if m.detail != nil {
		writeWindow(&b, m.detailText, m.detailScroll, m.bodyHeight())
	} else {
		if m.filter != "" {
			b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", m.filter))
		}
		m.writeList(&b)
	}

	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render(progressBar(scanner.Summarize(m.groups()).Progress, barWidth) + " " + statusBarText(m.groups())))
	b.WriteString("\n")
	if n := len(m.result.Skipped); n > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d file(s) skipped", n)) + "\n")
	}
	writeFooter(&b, m.detail != nil)
	return b.String()
}

// writeList writes the rows visible around the cursor.
func (m *tuiModel) writeList(b *strings.Builder) {
	height := m.bodyHeight()
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := start; i < end; i++ {
		r := m.rows[i]
		switch r.kind {
		case rowEmpty:
			b.WriteString(dimStyle.Render("  "+r.text) + "\n")
		case rowHeader:
			b.WriteString(strings.Repeat("  ", r.depth) + headerStyle.Render(r.text) + "\n")
		case rowGroup:
			line := strings.Repeat("  ", r.depth) + groupLabel(r.group)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}
}

func writeWindow(b *strings.Builder, text string, offset, height int) {
	lines := strings.Split(text, "\n")
	if offset > len(lines) {
		offset = len(lines)
	}
	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}
	b.WriteString(strings.Join(lines[offset:end], "\n"))
	b.WriteString("\n")
}

func writeTitle(b *strings.Builder, result *scanner.Result) {
	title := "spec-view"
	if result != nil && result.Root != "" {
		title += "  " + result.Root
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c      Quit\n")
	b.WriteString("  r, F5          Rescan spec files\n")
	b.WriteString("  j/k, up/down   Move selection or scroll\n")
	b.WriteString("  enter, l       Open selected spec\n")
	b.WriteString("  esc, h         Back to the list\n")
	b.WriteString("  ?              Toggle this help screen\n")
	b.WriteString("  1              Filter by draft\n")
	b.WriteString("  2              Filter by ready\n")
	b.WriteString("  3              Filter by in-progress\n")
	b.WriteString("  4              Filter by done\n")
	b.WriteString("  5              Filter by blocked\n")
	b.WriteString("  0              Clear filter\n\n")
}

func writeFooter(b *strings.Builder, inDetail bool) {
	text := "? help | enter open | r rescan | q quit"
	if inDetail {
		text = "? help | esc back | j/k scroll | q quit"
	}
	b.WriteString(footerStyle.Render(text) + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
