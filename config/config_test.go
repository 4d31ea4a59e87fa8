package config

import (
	"os"
	"path/filepath"
	"testing"

	"go-pianoroll/music"
)

func TestLoadMissingGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SynthOutput.Engine != EngineSynth || cfg.UI.LastTempo != 120 || cfg.Model.Source != "basic" {
		t.Fatalf("config = %+v", cfg)
	}
	pc := cfg.PlayerConfig()
	if pc != music.DefaultPlayerConfig() {
		t.Fatalf("player config = %+v", pc)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.SynthOutput = SynthOutputConfig{Engine: EngineMIDI, PortName: "FluidSynth", Channel: 3}
	cfg.AddController(ControllerConfig{PortName: "Keys", Type: ControllerKeyboard, AutoConnect: false})
	cfg.AddController(ControllerConfig{PortName: "Keys", Type: ControllerKeyboard, AutoConnect: false})

	seq := music.DefaultSequence()
	seq.QPM = 96
	pc := music.DefaultPlayerConfig()
	pc.Clicks = false
	pc.Temp = 0.7
	cfg.Remember(seq, pc)

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Controllers) != 1 || got.FindController("Keys") == nil {
		t.Fatalf("controllers = %+v", got.Controllers)
	}
	if got.SynthOutput.Channel != 3 || got.UI.LastTempo != 96 {
		t.Fatalf("config = %+v", got)
	}
	if pc := got.PlayerConfig(); pc.Clicks || pc.Temp != 0.7 {
		t.Fatalf("player config = %+v", pc)
	}
	ignored := got.IgnoredPorts()
	if len(ignored) != 2 || ignored[0] != "Keys" || ignored[1] != "FluidSynth" {
		t.Fatalf("ignored = %v", ignored)
	}
}

func TestLoadPartialAndInvalid(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.json")
	os.WriteFile(partial, []byte(`{"synthOutput":{"channel":40},"ui":{"temp":1.5}}`), 0644)
	cfg, err := LoadFrom(partial)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SynthOutput.Channel != 1 || cfg.UI.Temp != 1.5 || cfg.UI.LastTempo != 120 {
		t.Fatalf("config = %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{`), 0644)
	if _, err := LoadFrom(bad); err == nil {
		t.Fatal("invalid json accepted")
	}
}
