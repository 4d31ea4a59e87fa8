package project

import (
	"fmt"
	"os"
	"path/filepath"

	"go-pianoroll/music"
)

// ExportMIDI writes seq as a standard MIDI file
func ExportMIDI(path string, seq music.Sequence) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := music.WriteSMF(f, seq); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

// ImportMIDI reads a standard MIDI file into a sequence
func ImportMIDI(path string) (music.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return music.Sequence{}, err
	}
	defer f.Close()
	seq, err := music.ReadSMF(f)
	if err != nil {
		return music.Sequence{}, fmt.Errorf("import %s: %w", path, err)
	}
	return seq, nil
}

// ExportPath returns where a project's MIDI export goes
func (s *Store) ExportPath(projectName string) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}
	dir, err := s.ProjectDir(projectName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sanitizeFilename(projectName)+".mid"), nil
}
