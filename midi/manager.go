package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-pianoroll/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// portTimeout bounds a port scan; some backends hang while enumerating
const portTimeout = 3 * time.Second

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	listIns func() []string
	connect func(name string) (Controller, error)
	ignore  []string
}

// NewDeviceManager creates a device manager on the system MIDI driver.
// Input ports whose names contain any of ignore (case-insensitive) are
// skipped, e.g. the port our own output is routed back through.
func NewDeviceManager(ignore ...string) *DeviceManager {
	dm := &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		listIns:     InPorts,
		connect:     openKeyboard,
		ignore:      []string{"through"},
	}
	for _, s := range ignore {
		if s != "" {
			dm.ignore = append(dm.ignore, strings.ToLower(s))
		}
	}
	return dm
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Keyboards returns the connected keyboards
func (dm *DeviceManager) Keyboards() []Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	var out []Controller
	for _, c := range dm.controllers {
		if c.Type() == ControllerKeyboard {
			out = append(out, c)
		}
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) skip(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range dm.ignore {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ch := make(chan []string, 1)
	go func() {
		ch <- dm.listIns()
	}()

	var names []string
	select {
	case names = <-ch:
	case <-time.After(portTimeout):
		debug.Log("midi", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	seen := make(map[string]bool)
	for _, name := range names {
		if dm.skip(name) {
			continue
		}
		seen[name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.connect(name)
		if err != nil {
			debug.Error("midi", err, "connect %s", name)
			continue
		}
		dm.mu.Lock()
		dm.controllers[name] = c
		dm.mu.Unlock()
		debug.Log("midi", "connected %s", name)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: name})
	}

	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seen[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()
	for _, id := range gone {
		debug.Log("midi", "disconnected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func openKeyboard(name string) (Controller, error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, err
	}
	return NewKeyboardController(name, in)
}
