package sequencer

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go-pianoroll/audio"
	"go-pianoroll/debug"
	"go-pianoroll/midi"
	"go-pianoroll/music"
	"go-pianoroll/sketch"
	"go-pianoroll/worker"
)

// Tempo limits
const (
	MinTempo = 20
	MaxTempo = 300
)

// previewLength is how long a live note sounds through the sampler
const previewLength = 250 * time.Millisecond

// UI refresh rate while playing
const uiFPS = 30

// ErrBusy is returned by Generate while a continuation is in flight
var ErrBusy = errors.New("generation already in progress")

// Status is a snapshot of the manager for the UI
type Status struct {
	Playing    bool
	Step       int // playhead step, -1 when stopped
	Tempo      float64
	Clicks     bool
	Recording  bool
	Temp       float64
	Generating bool
	Err        error
}

// Manager ties the editable state to playback, live input and the
// continuation worker. Any change to the state is mirrored into the
// transport: the note part is rebuilt, tempo and click track follow config.
type Manager struct {
	state     *sketch.State
	transport *audio.Transport
	sampler   audio.Sampler
	kit       audio.DrumKit
	worker    *worker.Worker

	syncMu     sync.Mutex // serializes sync
	mu         sync.Mutex
	notePart   *audio.Part[music.Note]
	clickPart  *audio.Part[string]
	generating bool
	genOffset  float64
	lastErr    error
	pending    map[uint8]float64 // recording: key -> start step

	midiInputChan chan midi.NoteEvent

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager wires state to a new transport. A nil sampler is silent, a
// nil kit disables clicks and a nil worker disables generation.
func NewManager(state *sketch.State, sampler audio.Sampler, kit audio.DrumKit, w *worker.Worker) *Manager {
	if sampler == nil {
		sampler = audio.Silent{}
	}
	m := &Manager{
		state:         state,
		transport:     audio.NewTransport(state.Sequence().QPM),
		sampler:       sampler,
		kit:           kit,
		worker:        w,
		pending:       make(map[uint8]float64),
		midiInputChan: make(chan midi.NoteEvent, 32),
		UpdateChan:    make(chan struct{}, 1),
	}
	m.sync()
	state.OnChange(func() {
		m.sync()
		m.notifyUpdate()
	})
	return m
}

// State returns the managed state
func (m *Manager) State() *sketch.State { return m.state }

// Transport returns the playback clock
func (m *Manager) Transport() *audio.Transport { return m.transport }

// sync mirrors state into the transport
func (m *Manager) sync() {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	seq, cfg := m.state.Sequence(), m.state.Config()

	if seq.QPM > 0 && seq.QPM != m.transport.BPM() {
		m.transport.SetBPM(seq.QPM)
	}

	part := audio.NotePart(m.sampler, seq)
	part.Loop = true
	part.LoopStart = 0
	part.LoopEnd = audio.Sixteenths(float64(seq.NumSteps()))

	m.mu.Lock()
	old, click := m.notePart, m.clickPart
	m.notePart = part
	m.mu.Unlock()
	if old == nil {
		m.transport.Add(part)
	} else {
		m.transport.Replace(old, part)
	}

	bar := audio.Measures(1, seq.QuartersPerBar)
	wantClicks := cfg.Clicks && m.kit != nil
	if click != nil && (!wantClicks || click.LoopEnd != bar) {
		m.transport.Remove(click)
		click = nil
	}
	if wantClicks && click == nil {
		click = audio.GetClickPart(m.kit)
		click.LoopEnd = bar
		m.transport.Add(click)
	}
	m.mu.Lock()
	m.clickPart = click
	m.mu.Unlock()
}

// Run drives the transport, the worker and UI refresh until ctx is done
func (m *Manager) Run(ctx context.Context) error {
	go m.transport.Run(ctx)

	var results <-chan worker.Response
	var errs <-chan error
	if m.worker != nil {
		go m.worker.Run(ctx)
		results = m.worker.Results()
		errs = m.worker.Errors()
	}

	ticker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return ctx.Err()
		case resp := <-results:
			m.ApplyResult(resp)
		case err := <-errs:
			m.mu.Lock()
			m.generating = false
			m.lastErr = err
			m.mu.Unlock()
			m.notifyUpdate()
		case evt := <-m.midiInputChan:
			m.HandleNote(evt)
		case <-ticker.C:
			if m.transport.Playing() {
				m.notifyUpdate()
			}
		}
	}
}

// Play starts playback from the top
func (m *Manager) Play() {
	m.transport.Start()
	m.notifyUpdate()
}

// Stop stops playback and drops half-recorded notes
func (m *Manager) Stop() {
	m.transport.Stop()
	m.mu.Lock()
	m.pending = make(map[uint8]float64)
	m.mu.Unlock()
	m.notifyUpdate()
}

// TogglePlay starts or stops playback
func (m *Manager) TogglePlay() {
	if m.transport.Playing() {
		m.Stop()
	} else {
		m.Play()
	}
}

// SetTempo sets the BPM, clamped to MinTempo..MaxTempo
func (m *Manager) SetTempo(bpm float64) {
	bpm = math.Max(MinTempo, math.Min(MaxTempo, bpm))
	m.state.SetTempo(bpm)
}

// ToggleClicks turns the metronome on or off
func (m *Manager) ToggleClicks() {
	m.state.SetClicks(!m.state.Config().Clicks)
}

// ToggleRecording arms or disarms live recording
func (m *Manager) ToggleRecording() {
	m.state.SetRecording(!m.state.Config().Recording)
}

// SetTemp sets the generation temperature, kept above zero
func (m *Manager) SetTemp(t float64) {
	if t < 0.1 {
		t = 0.1
	}
	if t > 2 {
		t = 2
	}
	m.state.SetTemp(math.Round(t*10) / 10)
}

// currentStep returns the playhead in fractional steps within the loop
func (m *Manager) currentStep() (float64, bool) {
	if !m.transport.Playing() {
		return 0, false
	}
	n := m.state.Sequence().NumSteps()
	if n <= 0 {
		return 0, false
	}
	step := float64(m.transport.Position()) / float64(audio.Sixteenths(1))
	return math.Mod(step, float64(n)), true
}

// HandleNote previews live input and records it while playing with
// recording armed. Recorded notes snap to the step grid.
func (m *Manager) HandleNote(evt midi.NoteEvent) {
	if evt.On {
		m.sampler.TriggerAttackRelease(music.PitchName(int(evt.Note)), previewLength, time.Now())
	}

	if !m.state.Config().Recording {
		return
	}
	step, playing := m.currentStep()
	if !playing {
		return
	}
	n := float64(m.state.Sequence().NumSteps())
	// the last half step belongs to the top of the loop
	snapped := math.Mod(math.Round(step), n)

	m.mu.Lock()
	if evt.On {
		m.pending[evt.Note] = snapped
		m.mu.Unlock()
		return
	}
	start, ok := m.pending[evt.Note]
	delete(m.pending, evt.Note)
	m.mu.Unlock()
	if !ok {
		return
	}

	end := snapped
	if end < start {
		// wrapped around the loop
		end = n
	}
	if end <= start {
		end = start + 1
	}
	debug.Log("record", "note=%d start=%.0f end=%.0f", evt.Note, start, end)
	m.state.AddNote(music.Note{Midi: int(evt.Note), Start: start, End: end})
}

// PlayKey handles a computer-keyboard note: there is no key release, so
// the note is previewed and, when recording, a one-step note is written.
func (m *Manager) PlayKey(midiNote int) {
	if midiNote < 0 || midiNote > 127 {
		return
	}
	m.HandleNote(midi.NoteEvent{Note: uint8(midiNote), Velocity: 100, On: true})
	m.mu.Lock()
	start, ok := m.pending[uint8(midiNote)]
	delete(m.pending, uint8(midiNote))
	m.mu.Unlock()
	if ok {
		m.state.AddNote(music.Note{Midi: midiNote, Start: start, End: start + 1})
	}
}

// SetMIDIInput forwards a keyboard's notes into the manager
func (m *Manager) SetMIDIInput(ctrl midi.Controller) {
	if ctrl == nil {
		return
	}
	go func() {
		for evt := range ctrl.NoteEvents() {
			select {
			case m.midiInputChan <- evt:
			default:
			}
		}
	}()
}

// Generate asks the worker to continue the current melody. One request
// is in flight at a time; the reply is spliced in by ApplyResult.
func (m *Manager) Generate(ctx context.Context) error {
	if m.worker == nil {
		return errors.New("no continuation model")
	}
	seq, cfg := m.state.Sequence(), m.state.Config()

	m.mu.Lock()
	if m.generating {
		m.mu.Unlock()
		return ErrBusy
	}
	m.generating = true
	m.lastErr = nil
	m.genOffset = float64(music.Quantize(seq).TotalQuantizedSteps)
	m.mu.Unlock()

	req := worker.Request{StartSeq: seq, Temp: cfg.Temp, Steps: seq.NumSteps()}
	debug.Log("generate", "request notes=%d steps=%d temp=%.1f", len(seq.Notes), req.Steps, req.Temp)
	if err := m.worker.Post(ctx, req); err != nil {
		m.mu.Lock()
		m.generating = false
		m.mu.Unlock()
		return err
	}
	m.notifyUpdate()
	return nil
}

// ApplyResult splices a continuation after the melody it was generated from
func (m *Manager) ApplyResult(resp worker.Response) {
	m.mu.Lock()
	offset := m.genOffset
	m.generating = false
	m.mu.Unlock()

	debug.Log("generate", "result notes=%d offset=%.0f", len(resp.Result.Notes), offset)
	m.state.AppendContinuation(resp.Result, offset)
}

// Status returns a snapshot for display
func (m *Manager) Status() Status {
	seq, cfg := m.state.Sequence(), m.state.Config()
	st := Status{
		Playing:   m.transport.Playing(),
		Step:      -1,
		Tempo:     seq.QPM,
		Clicks:    cfg.Clicks,
		Recording: cfg.Recording,
		Temp:      cfg.Temp,
	}
	if step, ok := m.currentStep(); ok {
		st.Step = int(step)
	}
	m.mu.Lock()
	st.Generating = m.generating
	st.Err = m.lastErr
	m.mu.Unlock()
	return st
}

// ClearError dismisses the last worker error
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.lastErr = nil
	m.mu.Unlock()
}

// notifyUpdate notifies the TUI
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
