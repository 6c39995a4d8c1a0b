package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfigCreatesDefaults(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "departureboard")

	serverConfig, err := LoadServerConfig(configDir, false, true)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}

	for _, filename := range []string{serverConfig.GetCompleteParamFilename(), serverConfig.GetCompleteSettingsFilename()} {
		if _, err := os.Stat(filename); err != nil {
			t.Errorf("expected %s to be created: %v", filename, err)
		}
	}
	if serverConfig.BoardId == "" {
		t.Errorf("expected a generated board id")
	}
	if serverConfig.Display.Width != 96 || serverConfig.Display.Height != 48 {
		t.Errorf("unexpected default display size %dx%d", serverConfig.Display.Width, serverConfig.Display.Height)
	}
	if serverConfig.Gpio.Debounce().Milliseconds() != 200 {
		t.Errorf("unexpected debounce %s", serverConfig.Gpio.Debounce())
	}
	if serverConfig.Location() == nil {
		t.Errorf("expected a location")
	}

	// The generated board id is persisted
	reloaded, err := LoadServerConfig(configDir, false, true)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if reloaded.BoardId != serverConfig.BoardId {
		t.Errorf("expected board id %s to be kept, got %s", serverConfig.BoardId, reloaded.BoardId)
	}
}

func TestLoadServerConfigRejectsMalformedParam(t *testing.T) {
	configDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(configDir, paramFilename), []byte("display: [oops"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadServerConfig(configDir, false, true); err == nil {
		t.Errorf("expected an error for a malformed param file")
	}
}

func TestServerStateFlush(t *testing.T) {
	filename := filepath.Join(t.TempDir(), stateFilename)

	state := NewServerState(filename)
	state.SetMode("films")
	state.FlushSave()

	reloaded := NewServerState(filename)
	if reloaded.Mode() != "films" {
		t.Errorf("expected films, got %q", reloaded.Mode())
	}
}
