package markov

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-pianoroll/debug"
	"go-pianoroll/music"
)

//go:embed basic.json
var basicCheckpoint []byte

// BasicName selects the built-in checkpoint
const BasicName = "basic"

// maxInterval bounds learned melodic leaps; wider jumps are folded back by octaves
const maxInterval = 12

// Transitions is a transition matrix: previous value -> next value -> weight
type Transitions map[int]map[int]float64

// add counts one from -> to transition
func (t Transitions) add(from, to int) {
	row, ok := t[from]
	if !ok {
		row = map[int]float64{}
		t[from] = row
	}
	row[to]++
}

// marginal sums every row; used when a state was never seen in training
func (t Transitions) marginal() map[int]float64 {
	out := map[int]float64{}
	for _, row := range t {
		for v, w := range row {
			out[v] += w
		}
	}
	return out
}

// Checkpoint holds the learned transition matrices
type Checkpoint struct {
	Name      string      `json:"name"`
	Intervals Transitions `json:"intervals"`
	Durations Transitions `json:"durations"`
}

// Validate reports whether the checkpoint can generate anything
func (c *Checkpoint) Validate() error {
	if len(c.Intervals) == 0 {
		return errors.New("checkpoint has no interval transitions")
	}
	if len(c.Durations) == 0 {
		return errors.New("checkpoint has no duration transitions")
	}
	for from, row := range c.Durations {
		for d, w := range row {
			if d < 1 || w < 0 {
				return fmt.Errorf("bad duration transition %d -> %d (%v)", from, d, w)
			}
		}
	}
	return nil
}

// Save writes the checkpoint as indented JSON
func (c *Checkpoint) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// ReadCheckpoint decodes and validates a JSON checkpoint
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Basic returns the built-in checkpoint
func Basic() *Checkpoint {
	c, err := ReadCheckpoint(bytes.NewReader(basicCheckpoint))
	if err != nil {
		panic(fmt.Sprintf("markov: embedded checkpoint: %v", err))
	}
	return c
}

// Train builds a checkpoint from example melodies. Notes are taken in
// start order; each consecutive pair contributes an interval transition
// and a duration transition on the quantized grid.
func Train(name string, seqs ...music.Sequence) (*Checkpoint, error) {
	c := &Checkpoint{Name: name, Intervals: Transitions{}, Durations: Transitions{}}
	for _, seq := range seqs {
		seq = seq.Clone()
		seq.SortNotes()
		q := music.Quantize(seq)

		prevInterval := 0
		for i := 1; i < len(q.Notes); i++ {
			prev, cur := q.Notes[i-1], q.Notes[i]
			interval := foldInterval(cur.Pitch - prev.Pitch)
			c.Intervals.add(prevInterval, interval)
			prevInterval = interval

			c.Durations.add(prev.QuantizedEndStep-prev.QuantizedStartStep, cur.QuantizedEndStep-cur.QuantizedStartStep)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("train %s: %w", name, err)
	}
	debug.Log("markov", "trained %s on %d sequences: %d interval states, %d duration states",
		name, len(seqs), len(c.Intervals), len(c.Durations))
	return c, nil
}

func foldInterval(i int) int {
	for i > maxInterval {
		i -= 12
	}
	for i < -maxInterval {
		i += 12
	}
	return i
}

// LoadCheckpoint resolves a checkpoint source: "" or "basic" for the
// built-in one, a directory of .mid files to train on, a single .mid file,
// or a JSON checkpoint file.
func LoadCheckpoint(source string) (*Checkpoint, error) {
	if source == "" || source == BasicName {
		return Basic(), nil
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", source, err)
	}
	if info.IsDir() {
		return trainDir(source)
	}
	if isMIDI(source) {
		seq, err := readMIDI(source)
		if err != nil {
			return nil, err
		}
		return Train(filepath.Base(source), seq)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()
	return ReadCheckpoint(f)
}

func isMIDI(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".mid" || ext == ".midi"
}

func readMIDI(path string) (music.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return music.Sequence{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	seq, err := music.ReadSMF(f)
	if err != nil {
		return music.Sequence{}, fmt.Errorf("read %s: %w", path, err)
	}
	return seq, nil
}

func trainDir(dir string) (*Checkpoint, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isMIDI(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no .mid files in %s", dir)
	}

	var seqs []music.Sequence
	for _, name := range names {
		seq, err := readMIDI(filepath.Join(dir, name))
		if err != nil {
			debug.Error("markov", err, "skip")
			continue
		}
		seqs = append(seqs, seq)
	}
	return Train(filepath.Base(dir), seqs...)
}
