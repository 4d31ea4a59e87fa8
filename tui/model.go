package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/debug"
	"go-pianoroll/midi"
	"go-pianoroll/music"
	"go-pianoroll/project"
	"go-pianoroll/sequencer"
	"go-pianoroll/sketch"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

// Rows around the grid: header, blank, then status and help below
const (
	headerRows = 2
	footerRows = 3
	gutterCols = 5 // pitch labels
)

// layout holds the last grid placement, in terminal cells
type layout struct {
	termW, termH int
	cols, rows   int
	win          sketch.Window
}

type Model struct {
	Manager   *sequencer.Manager
	Editor    *sequencer.Editor
	DeviceMgr *midi.DeviceManager
	Store     *project.Store
	Project   string
	Theme     *theme.Theme
	Octave    int

	ctx      context.Context
	keys     widgets.KeyMap
	help     help.Model
	spin     spinner.Model
	showAll  bool
	quitting bool
	message  string
	lay      *layout
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// generateMsg reports whether a continuation request was accepted
type generateMsg struct{ err error }

// fileMsg reports a save or export
type fileMsg struct {
	text string
	err  error
}

func NewModel(ctx context.Context, manager *sequencer.Manager, deviceMgr *midi.DeviceManager, store *project.Store, projectName string, th *theme.Theme) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Accent())
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(th.Accent())
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(th.Muted())
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc
	return Model{
		Manager:   manager,
		Editor:    sequencer.NewEditor(manager.State()),
		DeviceMgr: deviceMgr,
		Store:     store,
		Project:   projectName,
		Theme:     th,
		ctx:       ctx,
		keys:      widgets.DefaultKeyMap(),
		help:      h,
		spin:      sp,
		lay:       &layout{},
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event := <-deviceMgr.Events()
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
		m.spin.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.lay.termW, m.lay.termH = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.relayout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if p, ok := m.pointAt(msg.X, msg.Y); ok {
				m.Editor.Click(p)
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case UpdateMsg:
		m.relayout()
		return m, ListenForUpdates(m.Manager)

	case generateMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
		}

	case fileMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
			debug.Error("tui", msg.err, "file")
		} else {
			m.message = msg.text
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			if event.Controller.Type() == midi.ControllerKeyboard {
				m.Manager.SetMIDIInput(event.Controller)
				m.message = "keyboard connected: " + event.ID
			}
		case midi.DeviceDisconnected:
			m.message = "keyboard disconnected: " + event.ID
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.Manager.Status()
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		m.Manager.Stop()
		return m, tea.Quit
	case key.Matches(msg, k.Play):
		m.Manager.TogglePlay()
	case key.Matches(msg, k.Generate):
		return m, m.generate()
	case key.Matches(msg, k.Clicks):
		m.Manager.ToggleClicks()
	case key.Matches(msg, k.Record):
		m.Manager.ToggleRecording()
	case key.Matches(msg, k.TempoDown):
		m.Manager.SetTempo(st.Tempo - 5)
	case key.Matches(msg, k.TempoUp):
		m.Manager.SetTempo(st.Tempo + 5)
	case key.Matches(msg, k.TempDown):
		m.Manager.SetTemp(st.Temp - 0.1)
	case key.Matches(msg, k.TempUp):
		m.Manager.SetTemp(st.Temp + 0.1)
	case key.Matches(msg, k.OctDown):
		if m.Octave > -4 {
			m.Octave--
		}
	case key.Matches(msg, k.OctUp):
		if m.Octave < 4 {
			m.Octave++
		}
	case key.Matches(msg, k.Save):
		return m, m.save()
	case key.Matches(msg, k.Export):
		return m, m.export()
	case key.Matches(msg, k.Dismiss):
		m.message = ""
		m.Manager.ClearError()
	case key.Matches(msg, k.Help):
		m.showAll = !m.showAll
		m.relayout()
	default:
		if m.Editor.HandleKey(msg.String()) {
			m.relayout()
			return m, nil
		}
		if p, ok := midi.KeyToMidi(msg.String(), m.Octave); ok {
			m.Manager.PlayKey(p)
		}
	}
	return m, nil
}

func (m Model) generate() tea.Cmd {
	mgr, ctx := m.Manager, m.ctx
	return func() tea.Msg {
		err := mgr.Generate(ctx)
		if errors.Is(err, sequencer.ErrBusy) {
			err = nil
		}
		return generateMsg{err: err}
	}
}

func (m Model) save() tea.Cmd {
	store, name := m.Store, m.Project
	seq, cfg := m.Manager.State().Sequence(), m.Manager.State().Config()
	return func() tea.Msg {
		if store == nil {
			return fileMsg{err: errors.New("no project store")}
		}
		file, err := store.SaveProject(name, "", seq, cfg)
		return fileMsg{text: "saved " + file, err: err}
	}
}

func (m Model) export() tea.Cmd {
	store, name := m.Store, m.Project
	seq := m.Manager.State().Sequence()
	return func() tea.Msg {
		if store == nil {
			return fileMsg{err: errors.New("no project store")}
		}
		path, err := store.ExportPath(name)
		if err != nil {
			return fileMsg{err: err}
		}
		return fileMsg{text: "exported " + path, err: project.ExportMIDI(path, seq)}
	}
}

// footerHeight counts the rows below the grid
func (m Model) footerHeight() int {
	if !m.showAll {
		return footerRows
	}
	tallest := 0
	for _, col := range m.keys.FullHelp() {
		tallest = max(tallest, len(col))
	}
	return footerRows - 1 + tallest
}

// relayout fits the grid to the terminal: one row per visible pitch and a
// whole number of columns per step when there is room. The state only
// hears about it when the size actually changes.
func (m Model) relayout() {
	if m.lay.termW <= 0 || m.lay.termH <= 0 {
		return
	}
	seq, cfg := m.Manager.State().Sequence(), m.Manager.State().Config()
	numSteps := seq.NumSteps()
	numNotes := len(sketch.PitchRange(cfg.MidiMin, cfg.MidiMax))

	availCols := m.lay.termW - gutterCols
	availRows := m.lay.termH - headerRows - m.footerHeight()
	cols, rows := availCols, availRows
	if numSteps > 0 && availCols >= numSteps {
		cols = numSteps * (availCols / numSteps)
	}
	if numNotes > 0 && rows > numNotes {
		rows = numNotes
	}
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	m.lay.cols, m.lay.rows = cols, rows

	win := sketch.Window{Width: float64(cols + 2*sketch.Margin), Height: float64(rows + 2*sketch.Margin)}
	if win != m.lay.win {
		m.lay.win = win
		m.Manager.State().SetWindow(win.Width, win.Height)
	}
}

// pointAt converts a terminal cell to a geometry point at the cell center
func (m Model) pointAt(x, y int) (sketch.Point, bool) {
	col, row := x-gutterCols, y-headerRows
	if col < 0 || row < 0 || col >= m.lay.cols || row >= m.lay.rows {
		return sketch.Point{}, false
	}
	g := m.Manager.State().Geometry()
	return sketch.Point{
		X: g.GridPos.X + float64(col) + 0.5,
		Y: g.GridPos.Y + float64(row) + 0.5,
	}, true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Manager.Status()
	seq, _, g := m.Manager.State().Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if st.Playing {
		playState = "PLAY"
	}
	flags := ""
	if st.Clicks {
		flags += " CLICK"
	}
	if st.Recording {
		flags += warnStyle.Render(" REC")
	}
	name := m.Project
	if name == "" {
		name = "untitled"
	}
	header := headerStyle.Render(fmt.Sprintf("go-pianoroll  %s  %3.0fbpm  %dbars  temp:%.1f  oct:%+d  %s",
		playState, st.Tempo, seq.NumBars, st.Temp, m.Octave, name)) + flags

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.renderGrid(seq, g, st.Step))
	out.WriteString("\n")

	// Status line
	switch {
	case st.Generating:
		out.WriteString(m.spin.View() + " generating...")
	case st.Err != nil:
		out.WriteString(warnStyle.Render("error: " + st.Err.Error()))
	case m.message != "":
		out.WriteString(dimStyle.Render(m.message))
	default:
		out.WriteString(dimStyle.Render(m.selectedInfo(seq)))
	}
	out.WriteString("\n")

	if m.showAll {
		out.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		out.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return out.String()
}

func (m Model) selectedInfo(seq music.Sequence) string {
	c := m.Editor.Cursor
	info := fmt.Sprintf("step %d  %s", c.Step+1, music.PitchName(c.Midi))
	if i := m.Editor.Selected(); i >= 0 && i < len(seq.Notes) {
		n := seq.Notes[i]
		info += fmt.Sprintf("  note %s start:%g len:%g", music.PitchName(n.Midi), n.Start, n.Duration())
	}
	return info
}

// renderGrid draws the piano roll: rows are pitches, highest on top, and
// columns are sampled through the geometry's scales
func (m Model) renderGrid(seq music.Sequence, g sketch.Geometry, playStep int) string {
	sym := m.Theme.Symbols
	muted, accent := m.Theme.Muted(), m.Theme.Accent()
	cursor, active := m.Theme.Cursor(), m.Theme.Active()
	labelStyle := lipgloss.NewStyle().Foreground(muted)

	if m.lay.cols == 0 || m.lay.rows == 0 || g.NumSteps == 0 {
		return labelStyle.Render("(window too small)") + "\n"
	}

	stepsPerQuarter := seq.StepsPerQuarter
	stepsPerBar := seq.StepsPerQuarter * seq.QuartersPerBar

	var lines []string
	for row := 0; row < m.lay.rows; row++ {
		pitch, ok := g.YScale.Invert(g.GridPos.Y + float64(row) + 0.5)
		if !ok {
			continue
		}
		style := labelStyle
		if pitch%12 == 0 {
			style = style.Foreground(accent)
		}
		label := style.Render(fmt.Sprintf("%-*s", gutterCols, music.PitchName(pitch)))

		syms := make([]rune, 0, m.lay.cols)
		colors := make([]lipgloss.Color, 0, m.lay.cols)
		prevStep := -1
		for col := 0; col < m.lay.cols; col++ {
			x := g.XScale.Invert(g.GridPos.X + float64(col) + 0.5)
			step := int(x)
			first := step != prevStep
			prevStep = step

			r, c := sym.StepEmpty, muted
			if first && stepsPerQuarter > 0 && step%stepsPerQuarter == 0 {
				r = sym.StepBeat
				if stepsPerBar > 0 && step%stepsPerBar == 0 {
					c = accent
				}
			}
			if step == playStep {
				r, c = sym.StepPlayhead, active
			}
			if i := seq.NoteAt(x, pitch); i >= 0 {
				n := seq.Notes[i]
				r, c = sym.NoteHold, m.Theme.NoteColor(pitch)
				if first && int(n.Start) == step {
					r = sym.NoteStart
				}
			}
			if step == m.Editor.Cursor.Step && pitch == m.Editor.Cursor.Midi {
				c = cursor
				if r != sym.NoteStart && r != sym.NoteHold {
					r = sym.Cursor
				}
			}
			syms = append(syms, r)
			colors = append(colors, c)
		}
		lines = append(lines, label+widgets.RenderCellRow(syms, colors))
	}
	return strings.Join(lines, "\n")
}
