package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette // UI chrome
	Notes   *Palette // one color per pitch class
	Symbols Symbols
}

type Symbols struct {
	StepEmpty    rune // · empty cell
	StepBeat     rune // ┊ empty cell on a quarter boundary
	NoteStart    rune // █ first step of a note
	NoteHold     rune // ▓ sustained step
	StepPlayhead rune // │ current playing column
	Cursor       rune // ◆ cursor on empty cell
}

func New(palette, notes *Palette) *Theme {
	if palette == nil {
		palette = DefaultUIPalette()
	}
	if notes == nil {
		notes = NotePalette()
	}
	return &Theme{
		Palette: palette,
		Notes:   notes,
		Symbols: Symbols{
			StepEmpty:    '·',
			StepBeat:     '┊',
			NoteStart:    '█',
			NoteHold:     '▓',
			StepPlayhead: '│',
			Cursor:       '◆',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// NoteColor returns the lipgloss color for a pitch
func (t *Theme) NoteColor(midi int) lipgloss.Color {
	return rgbToLipgloss(t.Notes.PitchColor(midi))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
