package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Edit", Keys: []key.Binding{
			key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		}},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if lines[0] != "Edit" {
		t.Errorf("title = %q", lines[0])
	}
	if !strings.Contains(lines[1], "c") || !strings.Contains(lines[1], "clear") {
		t.Errorf("binding line = %q", lines[1])
	}
}

func TestRenderCellRow(t *testing.T) {
	out := RenderCellRow([]rune{'a', 'b'}, []lipgloss.Color{"#ff0000", "#00ff00"})
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Errorf("row = %q", out)
	}
}

func TestKeyMapMatches(t *testing.T) {
	k := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		bind key.Binding
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, k.Generate},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, k.Quit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, k.Quit},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, k.Save},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, k.Play},
	}
	for _, tt := range tests {
		if !key.Matches(tt.msg, tt.bind) {
			t.Errorf("%q does not match %v", tt.msg.String(), tt.bind.Keys())
		}
	}
}

func TestSectionsCoverFullHelp(t *testing.T) {
	k := DefaultKeyMap()
	inSections := make(map[string]bool)
	for _, sec := range k.Sections() {
		for _, b := range sec.Keys {
			inSections[b.Help().Key] = true
		}
	}
	for _, col := range k.FullHelp() {
		for _, b := range col {
			switch b.Help().Key {
			case "esc", "?":
				continue
			}
			if !inSections[b.Help().Key] {
				t.Errorf("%q missing from Sections", b.Help().Key)
			}
		}
	}
}
