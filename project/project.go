package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-pianoroll/debug"
	"go-pianoroll/music"
)

// timestampLayout prefixes every save file name
const timestampLayout = "2006-01-02_15-04-05"

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// File is the on-disk save format
type File struct {
	Version  int                `json:"version"`
	Sequence music.Sequence     `json:"sequence"`
	Config   music.PlayerConfig `json:"config"`
}

const fileVersion = 1

// ErrBadName is returned for project names that do not name a folder of
// their own inside the store
var ErrBadName = errors.New("invalid project name")

// Store keeps projects as folders of timestamped JSON saves under Dir
type Store struct {
	Dir string
	now func() time.Time
}

// DefaultDir returns ~/.config/go-pianoroll/projects
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll", "projects"), nil
}

// Open returns a store rooted at dir, or at DefaultDir when dir is empty
func Open(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Store{Dir: dir, now: time.Now}, nil
}

// ProjectDir returns the path to a specific project
func (s *Store) ProjectDir(projectName string) (string, error) {
	name := sanitizeFilename(projectName)
	switch name {
	case "", ".", "..":
		return "", fmt.Errorf("%w %q", ErrBadName, projectName)
	}
	return filepath.Join(s.Dir, name), nil
}

// ListProjects returns all project folder names
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (s *Store) ListSaves(projectName string) ([]SaveInfo, error) {
	dir, err := s.ProjectDir(projectName)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		// 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
		baseName := strings.TrimSuffix(name, ".json")
		if len(baseName) < len(timestampLayout) {
			continue
		}
		ts, err := time.Parse(timestampLayout, baseName[:len(timestampLayout)])
		if err != nil {
			continue
		}

		saveName := ""
		if len(baseName) > 20 && baseName[19] == '_' {
			saveName = baseName[20:]
		}

		saves = append(saves, SaveInfo{
			Filename:  name,
			Name:      saveName,
			Timestamp: ts,
		})
	}

	// newest first; same-second saves by name
	sort.Slice(saves, func(i, j int) bool {
		if !saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Timestamp.After(saves[j].Timestamp)
		}
		return saves[i].Filename > saves[j].Filename
	})

	return saves, nil
}

// SaveProject writes seq and cfg to a new timestamped file and returns its name
func (s *Store) SaveProject(projectName, saveName string, seq music.Sequence, cfg music.PlayerConfig) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}
	dir, err := s.ProjectDir(projectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	// runtime-only flag
	cfg.Recording = false
	data, err := json.MarshalIndent(File{Version: fileVersion, Sequence: seq, Config: cfg}, "", "  ")
	if err != nil {
		return "", err
	}

	filename := s.now().Format(timestampLayout)
	if saveName != "" {
		filename += "_" + sanitizeFilename(saveName)
	}
	filename += ".json"
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", err
	}
	debug.Log("project", "saved %s/%s (%d notes)", projectName, filename, len(seq.Notes))
	return filename, nil
}

// LoadProject loads a specific save (or most recent if filename empty)
func (s *Store) LoadProject(projectName, filename string) (File, error) {
	if filename == "" {
		saves, err := s.ListSaves(projectName)
		if err != nil {
			return File{}, err
		}
		if len(saves) == 0 {
			return File{}, fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}

	dir, err := s.ProjectDir(projectName)
	if err != nil {
		return File{}, err
	}
	return ReadFile(filepath.Join(dir, filepath.Base(filename)))
}

// ReadFile reads a save file from any path
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	f := File{Sequence: music.DefaultSequence(), Config: music.DefaultPlayerConfig()}
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if f.Version > fileVersion {
		return File{}, fmt.Errorf("%s: unsupported save version %d", filepath.Base(path), f.Version)
	}
	f.Config.Recording = false
	f.Sequence.SortNotes()
	return f, nil
}

// CreateProject creates a new empty project folder
func (s *Store) CreateProject(name string) error {
	dir, err := s.ProjectDir(name)
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DeleteSave deletes a specific save file
func (s *Store) DeleteSave(projectName, filename string) error {
	dir, err := s.ProjectDir(projectName)
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filepath.Base(filename)))
}

// RenameSave renames a save file (changes the name part, keeps timestamp)
func (s *Store) RenameSave(projectName, oldFilename, newName string) (string, error) {
	oldFilename = filepath.Base(oldFilename)
	baseName := strings.TrimSuffix(oldFilename, ".json")
	if len(baseName) < len(timestampLayout) {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}
	tsStr := baseName[:len(timestampLayout)]
	if _, err := time.Parse(timestampLayout, tsStr); err != nil {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := tsStr + ".json"
	if newName != "" {
		newFilename = tsStr + "_" + sanitizeFilename(newName) + ".json"
	}

	dir, err := s.ProjectDir(projectName)
	if err != nil {
		return "", err
	}
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	debug.Log("project", "renamed %s/%s -> %s", projectName, oldFilename, newFilename)
	return newFilename, nil
}

// DeleteProject deletes entire project folder
func (s *Store) DeleteProject(name string) error {
	dir, err := s.ProjectDir(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	debug.Log("project", "deleting %s", dir)
	return os.RemoveAll(dir)
}

// RenameProject renames a project folder. The target must not exist.
func (s *Store) RenameProject(oldName, newName string) error {
	from, err := s.ProjectDir(oldName)
	if err != nil {
		return err
	}
	to, err := s.ProjectDir(newName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(to); err == nil {
		return fmt.Errorf("project %s already exists", newName)
	}
	return os.Rename(from, to)
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}
