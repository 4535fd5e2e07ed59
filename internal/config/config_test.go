package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"CallDepth", cfg.CallDepth, -1},
		{"KeepData", cfg.KeepData, false},
		{"Format", cfg.Format, FormatText},
		{"Verbose", cfg.Verbose, false},
		{"LogJSON", cfg.LogJSON, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"dot", FormatDot, false},
		{"empty", OutputFormat(""), true},
		{"unknown", OutputFormat("xml"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Format = tt.format

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GTD_CALL_DEPTH", "3")
	t.Setenv("GTD_KEEP_DATA", "true")
	t.Setenv("GTD_FORMAT", "dot")
	t.Setenv("GTD_VERBOSE", "1")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.CallDepth != 3 {
		t.Errorf("CallDepth = %d, expected 3", cfg.CallDepth)
	}
	if !cfg.KeepData {
		t.Error("KeepData should be true")
	}
	if cfg.Format != FormatDot {
		t.Errorf("Format = %s, expected dot", cfg.Format)
	}
	if !cfg.Verbose {
		t.Error("Verbose should be true")
	}
}

func TestEnvOverridesIgnoreBadValues(t *testing.T) {
	t.Setenv("GTD_CALL_DEPTH", "not-a-number")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.CallDepth != -1 {
		t.Errorf("CallDepth = %d, expected the default -1", cfg.CallDepth)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.CallDepth = 2
	cfg.KeepData = true
	cfg.Format = FormatJSON

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loaded.CallDepth != 2 || !loaded.KeepData || loaded.Format != FormatJSON {
		t.Errorf("loaded config %+v does not match saved config", loaded)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("call_depth: [not an int"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected a parse error for invalid YAML")
	}
}

func TestDepthBound(t *testing.T) {
	tests := []struct {
		name      string
		callDepth int
		bounded   bool
		bound     int
	}{
		{"unbounded", -1, false, 0},
		{"zero", 0, true, 0},
		{"positive", 5, true, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CallDepth = tt.callDepth

			got := cfg.DepthBound()
			if !tt.bounded {
				if got != nil {
					t.Errorf("DepthBound() = %v, expected nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatal("DepthBound() = nil, expected a bound")
			}
			if *got != tt.bound {
				t.Errorf("DepthBound() = %d, expected %d", *got, tt.bound)
			}
		})
	}
}
