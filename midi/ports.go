package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// InPorts lists input port names
func InPorts() []string {
	var names []string
	for _, p := range gomidi.GetInPorts() {
		names = append(names, p.String())
	}
	return names
}

// OutPorts lists output port names
func OutPorts() []string {
	var names []string
	for _, p := range gomidi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

// OpenOut opens an output port by name, or the first port when name is
// empty, and returns its send function.
func OpenOut(name string) (func(gomidi.Message) error, string, error) {
	if name == "" {
		ports := gomidi.GetOutPorts()
		if len(ports) == 0 {
			return nil, "", fmt.Errorf("no MIDI output ports")
		}
		name = ports[0].String()
	}
	out, err := gomidi.FindOutPort(name)
	if err != nil {
		return nil, "", fmt.Errorf("find output %q: %w", name, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, "", fmt.Errorf("open output %q: %w", name, err)
	}
	return send, name, nil
}

// Close shuts down the MIDI driver
func Close() {
	gomidi.CloseDriver()
}
