package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go-pianoroll/debug"
	"go-pianoroll/music"
)

// Model is a sequence-continuation model. Implementations may be slow to
// load; Initialize is called at most once per successful load.
type Model interface {
	IsInitialized() bool
	Initialize(ctx context.Context) error
	ContinueSequence(ctx context.Context, seed music.QSeq, steps int, temp float64) (music.QSeq, error)
}

// Request asks for a continuation of StartSeq
type Request struct {
	StartSeq music.Sequence `json:"startSeq"`
	Temp     float64        `json:"temp"`
	Steps    int            `json:"steps"`
}

// Response carries the generated continuation
type Response struct {
	Result music.Sequence `json:"result"`
}

// State of the model as seen by the worker
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// DefaultQueue is the request buffer size used by New
const DefaultQueue = 8

// Worker serves continuation requests one at a time against a single
// model. Every request produces exactly one Response on Results or one
// error on Errors.
type Worker struct {
	model Model

	requests chan Request
	results  chan Response
	errs     chan error

	initMu sync.Mutex
	state  atomic.Int32
	served atomic.Int64
}

// New creates a worker; call Run to start serving
func New(model Model) *Worker {
	return NewWithQueue(model, DefaultQueue)
}

// NewWithQueue creates a worker buffering up to queue pending requests
func NewWithQueue(model Model, queue int) *Worker {
	if queue < 1 {
		queue = 1
	}
	return &Worker{
		model:    model,
		requests: make(chan Request, queue),
		results:  make(chan Response, queue),
		errs:     make(chan error, queue),
	}
}

// Results delivers one Response per successful request, in request order
func (w *Worker) Results() <-chan Response { return w.results }

// Errors delivers initialization and generation failures
func (w *Worker) Errors() <-chan error { return w.errs }

// State returns the model lifecycle state
func (w *Worker) State() State { return State(w.state.Load()) }

// Served returns the number of requests handled so far
func (w *Worker) Served() int64 { return w.served.Load() }

// Post queues a request. It blocks only while the queue is full.
func (w *Worker) Post(ctx context.Context, req Request) error {
	select {
	case w.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run serves requests in arrival order until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	debug.Log("worker", "started")
	for {
		select {
		case <-ctx.Done():
			debug.Log("worker", "stopped after %d requests", w.Served())
			return ctx.Err()
		case req := <-w.requests:
			resp, err := w.Process(ctx, req)
			w.served.Add(1)
			if err != nil {
				debug.Error("worker", err, "request failed")
				select {
				case w.errs <- err:
				case <-ctx.Done():
					return ctx.Err()
				}
				continue
			}
			select {
			case w.results <- resp:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// EnsureReady initializes the model if it is not already. Concurrent
// callers wait for a single initialization.
func (w *Worker) EnsureReady(ctx context.Context) error {
	if w.State() == Ready {
		return nil
	}
	w.initMu.Lock()
	defer w.initMu.Unlock()
	if w.State() == Ready {
		return nil
	}
	if w.model.IsInitialized() {
		w.state.Store(int32(Ready))
		return nil
	}

	w.state.Store(int32(Initializing))
	debug.Log("worker", "initializing model")
	if err := w.model.Initialize(ctx); err != nil {
		w.state.Store(int32(Uninitialized))
		return fmt.Errorf("initialize model: %w", err)
	}
	w.state.Store(int32(Ready))
	debug.Log("worker", "model ready")
	return nil
}

// Process handles one request synchronously: ensure the model is ready,
// quantize the seed, continue it, and convert the result back.
func (w *Worker) Process(ctx context.Context, req Request) (Response, error) {
	if err := w.EnsureReady(ctx); err != nil {
		return Response{}, err
	}
	seed := music.Quantize(req.StartSeq)
	debug.Log("worker", "continue notes=%d steps=%d temp=%.2f", len(seed.Notes), req.Steps, req.Temp)

	out, err := w.model.ContinueSequence(ctx, seed, req.Steps, req.Temp)
	if err != nil {
		return Response{}, fmt.Errorf("continue sequence: %w", err)
	}
	return Response{Result: music.FromQuantized(out, req.StartSeq)}, nil
}
