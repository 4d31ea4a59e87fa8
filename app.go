package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-pianoroll/audio"
	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/markov"
	"go-pianoroll/midi"
	"go-pianoroll/music"
	"go-pianoroll/project"
	"go-pianoroll/sequencer"
	"go-pianoroll/sketch"
	"go-pianoroll/theme"
	"go-pianoroll/tui"
	"go-pianoroll/widgets"
	"go-pianoroll/worker"
)

// output is the playback sink plus its cleanup
type output struct {
	sampler audio.Sampler
	kit     audio.DrumKit
	close   func()
}

// enableDebug turns on the debug log for every command when --debug is set
func enableDebug(cmd *cobra.Command, args []string) error {
	if !opts.debug {
		return nil
	}
	return debug.Enable()
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cfg)

	store, err := project.Open("")
	if err != nil {
		return err
	}

	seq, pc, err := initialSequence(store, cfg, args)
	if err != nil {
		return err
	}
	state := sketch.NewState(seq, pc)

	out := openOutput(cfg)
	defer out.close()

	model := markov.New(cfg.Model.Source)
	w := worker.NewWithQueue(model, cfg.Model.Queue)
	manager := sequencer.NewManager(state, out.sampler, out.kit, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	var deviceMgr *midi.DeviceManager
	if !opts.noMIDI {
		deviceMgr = midi.NewDeviceManager(cfg.IgnoredPorts()...)
		go deviceMgr.Run(ctx)
	}

	th := theme.New(theme.LoadGPLOr(cfg.Palette, theme.DefaultUIPalette()), nil)
	m := tui.NewModel(ctx, manager, deviceMgr, store, cfg.UI.Project, th)
	m.Octave = cfg.UI.Octave

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, runErr := p.Run()
	cancel()

	if fm, ok := final.(tui.Model); ok {
		cfg.UI.Octave = fm.Octave
	}
	if deviceMgr != nil {
		rememberKeyboards(cfg, deviceMgr)
	}
	cfg.Remember(state.Sequence(), state.Config())
	if err := cfg.Save(); err != nil {
		debug.Error("config", err, "save")
	}
	return runErr
}

// applyFlags overrides config with explicitly set flags
func applyFlags(cfg *config.Config) {
	if opts.project != "" {
		cfg.UI.Project = opts.project
	}
	if opts.synth != "" {
		cfg.SynthOutput.Engine = opts.synth
	}
	if opts.port != "" {
		cfg.SynthOutput.PortName = opts.port
	}
	if opts.channel >= 1 && opts.channel <= 16 {
		cfg.SynthOutput.Channel = opts.channel
	}
	if opts.model != "" {
		cfg.Model.Source = opts.model
	}
	if opts.palette != "" {
		cfg.Palette = opts.palette
	}
}

// initialSequence picks the starting melody: an imported .mid, the latest
// save when resuming, or the default with the remembered tempo
func initialSequence(store *project.Store, cfg *config.Config, args []string) (music.Sequence, music.PlayerConfig, error) {
	pc := cfg.PlayerConfig()
	if len(args) == 1 {
		seq, err := project.ImportMIDI(args[0])
		if err != nil {
			return music.Sequence{}, pc, err
		}
		if seq.NumBars > sequencer.MaxBars {
			seq.NumBars = sequencer.MaxBars
		}
		return seq, pc, nil
	}
	if opts.resume {
		f, err := store.LoadProject(cfg.UI.Project, "")
		if err != nil {
			return music.Sequence{}, pc, err
		}
		return f.Sequence, f.Config, nil
	}
	seq := music.DefaultSequence()
	if cfg.UI.LastTempo >= sequencer.MinTempo && cfg.UI.LastTempo <= sequencer.MaxTempo {
		seq.QPM = cfg.UI.LastTempo
	}
	return seq, pc, nil
}

// openOutput opens the configured engine. A failed device falls back to
// silence so the editor still works.
func openOutput(cfg *config.Config) output {
	switch cfg.SynthOutput.Engine {
	case config.EngineMIDI:
		send, name, err := midi.OpenOut(cfg.SynthOutput.PortName)
		if err != nil {
			debug.Error("audio", err, "midi output")
			fmt.Fprintf(os.Stderr, "midi output: %v (continuing silent)\n", err)
			break
		}
		cfg.SynthOutput.PortName = name
		return output{
			sampler: audio.NewMIDISampler(send, uint8(cfg.SynthOutput.Channel-1)),
			kit:     audio.NewMIDIDrums(send),
			close:   midi.Close,
		}
	case config.EngineSynth:
		synth := audio.NewSynth(audio.DefaultSampleRate)
		if err := synth.Open(); err != nil {
			debug.Error("audio", err, "synth")
			fmt.Fprintf(os.Stderr, "audio device: %v (continuing silent)\n", err)
			break
		}
		return output{sampler: synth, kit: synth, close: func() {
			synth.Close()
			midi.Close()
		}}
	}
	return output{sampler: audio.Silent{}, kit: audio.Silent{}, close: midi.Close}
}

// rememberKeyboards saves newly seen keyboards so they can be disabled
// later by editing config.json
func rememberKeyboards(cfg *config.Config, dm *midi.DeviceManager) {
	for _, kb := range dm.Keyboards() {
		if cfg.FindController(kb.ID()) != nil {
			continue
		}
		cfg.AddController(config.ControllerConfig{
			PortName:    kb.ID(),
			Type:        config.ControllerKeyboard,
			AutoConnect: true,
		})
	}
}

func printKeys(w io.Writer) {
	fmt.Fprintln(w, widgets.RenderKeyHelp(widgets.DefaultKeyMap().Sections()))
}

func printPorts(w io.Writer) error {
	type result struct{ ins, outs []string }
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: midi.InPorts(), outs: midi.OutPorts()}
	}()

	select {
	case r := <-ch:
		fmt.Fprintln(w, "=== MIDI Input Ports ===")
		for i, p := range r.ins {
			fmt.Fprintf(w, "  %d: %s\n", i, p)
		}
		fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Fprintf(w, "  %d: %s\n", i, p)
		}
	case <-time.After(3 * time.Second):
		return fmt.Errorf("timed out listing MIDI ports")
	}
	midi.Close()
	return nil
}

// withStore opens the project store for a projects subcommand
func withStore(fn func(w io.Writer, store *project.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := project.Open("")
		if err != nil {
			return err
		}
		return fn(cmd.OutOrStdout(), store, args)
	}
}

// printProjects lists projects, or the saves of args[0]
func printProjects(w io.Writer, store *project.Store, args []string) error {
	if len(args) == 0 {
		projects, err := store.ListProjects()
		if err != nil {
			return err
		}
		for _, p := range projects {
			fmt.Fprintln(w, p)
		}
		return nil
	}
	saves, err := store.ListSaves(args[0])
	if err != nil {
		return err
	}
	for _, s := range saves {
		fmt.Fprintf(w, "%s  %-20s %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.Name, s.Filename)
	}
	return nil
}

func createProject(w io.Writer, store *project.Store, args []string) error {
	if err := store.CreateProject(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(w, "created", args[0])
	return nil
}

// removeProject deletes a project, or one save when a file is given
func removeProject(w io.Writer, store *project.Store, args []string) error {
	if len(args) == 2 {
		if err := store.DeleteSave(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(w, "removed %s/%s\n", args[0], args[1])
		return nil
	}
	if err := store.DeleteProject(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(w, "removed", args[0])
	return nil
}

// moveProject renames a project, or the name part of one save
func moveProject(w io.Writer, store *project.Store, args []string) error {
	if len(args) == 3 {
		renamed, err := store.RenameSave(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s/%s -> %s\n", args[0], args[1], renamed)
		return nil
	}
	if err := store.RenameProject(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s -> %s\n", args[0], args[1])
	return nil
}

func trainCheckpoint(w io.Writer, outPath string, sources []string) error {
	var seqs []music.Sequence
	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			seq, err := project.ImportMIDI(src)
			if err != nil {
				return err
			}
			seqs = append(seqs, seq)
			continue
		}
		err = filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".mid" && ext != ".midi" {
				return nil
			}
			seq, err := project.ImportMIDI(path)
			if err != nil {
				fmt.Fprintf(w, "skip %s: %v\n", path, err)
				return nil
			}
			seqs = append(seqs, seq)
			return nil
		})
		if err != nil {
			return err
		}
	}

	name := strings.TrimSuffix(filepath.Base(outPath), filepath.Ext(outPath))
	ckpt, err := markov.Train(name, seqs...)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := ckpt.Save(f); err != nil {
		f.Close()
		return err
	}
	fmt.Fprintf(w, "trained %s on %d sequences\n", outPath, len(seqs))
	return f.Close()
}
