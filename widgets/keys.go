package widgets

import "github.com/charmbracelet/bubbles/key"

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []key.Binding
}

// KeyMap holds the app-wide bindings. Editing keys are listed for help
// only; the editor matches them itself.
type KeyMap struct {
	Play      key.Binding
	Generate  key.Binding
	Clicks    key.Binding
	Record    key.Binding
	TempoDown key.Binding
	TempoUp   key.Binding
	TempDown  key.Binding
	TempUp    key.Binding
	OctDown   key.Binding
	OctUp     key.Binding
	Save      key.Binding
	Export    key.Binding
	Dismiss   key.Binding
	Help      key.Binding
	Quit      key.Binding

	Move      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Resize    key.Binding
	Shift     key.Binding
	Transpose key.Binding
	VertStep  key.Binding
	Bars      key.Binding
	Scroll    key.Binding
	Jump      key.Binding
	Clear     key.Binding
	Notes     key.Binding
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Play:      key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/stop")),
		Generate:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "continue melody")),
		Clicks:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "metronome")),
		Record:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
		TempoDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "tempo -5")),
		TempoUp:   key.NewBinding(key.WithKeys("="), key.WithHelp("=", "tempo +5")),
		TempDown:  key.NewBinding(key.WithKeys("_"), key.WithHelp("_", "temperature -0.1")),
		TempUp:    key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "temperature +0.1")),
		OctDown:   key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "octave down")),
		OctUp:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "octave up")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Export:    key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export .mid")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Move:      key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("arrows", "move cursor")),
		Toggle:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter/click", "add/remove note")),
		Delete:    key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("bksp", "delete note")),
		Resize:    key.NewBinding(key.WithKeys("shift+left", "shift+right"), key.WithHelp("shift+←→", "shorter/longer")),
		Shift:     key.NewBinding(key.WithKeys("ctrl+left", "ctrl+right"), key.WithHelp("ctrl+←→", "move note")),
		Transpose: key.NewBinding(key.WithKeys("shift+up", "shift+down"), key.WithHelp("shift+↑↓", "transpose")),
		VertStep:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "semitone/octave")),
		Bars:      key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[ / ]", "bars -/+")),
		Scroll:    key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll octave")),
		Jump:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next/prev note")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Notes:     key.NewBinding(key.WithKeys("a", "s", "d", "f", "g", "h", "j", "k", "l", ";"), key.WithHelp("a..;", "play notes")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Generate, k.Record, k.Toggle, k.Notes, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Generate, k.Clicks, k.Record, k.TempoDown, k.TempoUp, k.TempDown, k.TempUp},
		{k.Move, k.Toggle, k.Delete, k.Resize, k.Shift, k.Transpose, k.VertStep},
		{k.Bars, k.Scroll, k.Jump, k.Clear, k.Notes, k.OctDown, k.OctUp},
		{k.Save, k.Export, k.Dismiss, k.Help, k.Quit},
	}
}

// Sections groups the bindings for RenderKeyHelp
func (k KeyMap) Sections() []KeySection {
	return []KeySection{
		{Title: "Transport", Keys: []key.Binding{k.Play, k.Clicks, k.Record, k.TempoDown, k.TempoUp}},
		{Title: "Continue", Keys: []key.Binding{k.Generate, k.TempDown, k.TempUp}},
		{Title: "Edit", Keys: []key.Binding{k.Move, k.Toggle, k.Delete, k.Resize, k.Shift, k.Transpose, k.VertStep, k.Clear}},
		{Title: "View", Keys: []key.Binding{k.Bars, k.Scroll, k.Jump}},
		{Title: "Play", Keys: []key.Binding{k.Notes, k.OctDown, k.OctUp}},
		{Title: "File", Keys: []key.Binding{k.Save, k.Export, k.Quit}},
	}
}
