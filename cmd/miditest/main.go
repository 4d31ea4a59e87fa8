package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go-pianoroll/audio"
	"go-pianoroll/midi"
	"go-pianoroll/music"
	"go-pianoroll/project"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer midi.Close()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "scale":
		playScale(arg(2))
	case "play":
		if len(os.Args) < 3 {
			usage()
			return
		}
		playFile(os.Args[2], arg(3))
	case "monitor":
		monitor()
	default:
		usage()
	}
}

func arg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                 - List all MIDI ports")
	fmt.Println("  scale [port]         - Play a C major scale on an output")
	fmt.Println("  play <file> [port]   - Loop a .mid or saved .json sequence on an output")
	fmt.Println("  monitor              - Print notes from connected keyboards")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct{ ins, outs []string }
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: midi.InPorts(), outs: midi.OutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p)
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p)
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func openSampler(port string) (*audio.MIDISampler, bool) {
	send, name, err := midi.OpenOut(port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	fmt.Printf("Using output: %s\n", name)
	return audio.NewMIDISampler(send, 0), true
}

func playScale(port string) {
	s, ok := openSampler(port)
	if !ok {
		return
	}
	start := time.Now()
	for i, key := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		at := start.Add(time.Duration(i) * 250 * time.Millisecond)
		s.TriggerAttackRelease(music.PitchName(key), 200*time.Millisecond, at)
	}
	time.Sleep(2200 * time.Millisecond)
	fmt.Println("Done")
}

func loadSequence(path string) (music.Sequence, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		f, err := project.ReadFile(path)
		return f.Sequence, err
	}
	return project.ImportMIDI(path)
}

func playFile(path, port string) {
	seq, err := loadSequence(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	s, ok := openSampler(port)
	if !ok {
		return
	}

	part := audio.NotePart(s, seq)
	part.Loop = true
	part.LoopEnd = audio.Sixteenths(float64(seq.NumSteps()))

	tr := audio.NewTransport(seq.QPM)
	tr.Add(part)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go tr.Run(ctx)
	tr.Start()

	fmt.Printf("Looping %d notes over %d bars at %.0f bpm. Ctrl+C to stop.\n", len(seq.Notes), seq.NumBars, seq.QPM)
	<-ctx.Done()
	tr.Stop()
	// let pending note-offs go out
	time.Sleep(300 * time.Millisecond)
}

func monitor() {
	fmt.Println("Watching for keyboards (Ctrl+C to quit)...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager()
	go dm.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-dm.Events():
			switch ev.Type {
			case midi.DeviceConnected:
				fmt.Printf("+ %s (%s)\n", ev.ID, ev.Controller.Type())
				go printNotes(ev.Controller)
			case midi.DeviceDisconnected:
				fmt.Printf("- %s\n", ev.ID)
			}
		}
	}
}

func printNotes(c midi.Controller) {
	for n := range c.NoteEvents() {
		ev := midi.Event{Type: midi.NoteOff, Channel: n.Channel, Note: n.Note, Velocity: n.Velocity}
		if n.On {
			ev.Type = midi.NoteOn
		}
		fmt.Printf("  %-4s %s\n", music.PitchName(int(n.Note)), ev.Message())
	}
}
