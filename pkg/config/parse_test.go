package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
log_level: info
seed: 42
workers: 4
candidates: 100
max_steps: 10000
data_dir: ./data
source:
  mass_number: 1
  charge_number: 1
  energy_min_eev: 1
  energy_max_eev: 100
  spectral_index: -2
  position_mpc: [0, 0, 0]
  isotropic: true
  redshift: 0.05
modules:
  - type: simple_propagation
    min_step_kpc: 10
    max_step_mpc: 1
  - type: maximum_trajectory_length
    max_length_mpc: 100
  - type: minimum_energy
    min_energy_eev: 0.1
`

func TestParseConfigYAML(t *testing.T) {
	cfg, err := ParseConfigYAMLString(validYAML)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Seed)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Workers)
	}
	if cfg.Candidates != 100 {
		t.Errorf("candidates = %d, want 100", cfg.Candidates)
	}
	if cfg.Source.EnergyMinEeV != 1 || cfg.Source.EnergyMaxEeV != 100 {
		t.Errorf("energy band = [%g, %g], want [1, 100]",
			cfg.Source.EnergyMinEeV, cfg.Source.EnergyMaxEeV)
	}
	if !cfg.Source.Isotropic {
		t.Error("isotropic should be set")
	}
	if len(cfg.Modules) != 3 {
		t.Fatalf("modules = %d, want 3", len(cfg.Modules))
	}
	if cfg.Modules[0].Type != "simple_propagation" {
		t.Errorf("first module type = %q", cfg.Modules[0].Type)
	}
	if cfg.Modules[1].MaxLengthMpc != 100 {
		t.Errorf("max length = %g, want 100", cfg.Modules[1].MaxLengthMpc)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	yaml := `
candidates: 10
source:
  energy_eev: 10
modules:
  - type: simple_propagation
    max_step_mpc: 1
`
	cfg, err := ParseConfigYAMLString(yaml)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString failed: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %q, want info", cfg.LogLevel)
	}
	if cfg.Workers != 1 {
		t.Errorf("default workers = %d, want 1", cfg.Workers)
	}
	if cfg.MaxSteps != 1000000 {
		t.Errorf("default max steps = %d, want 1000000", cfg.MaxSteps)
	}
	if cfg.Source.MassNumber != 1 || cfg.Source.ChargeNumber != 1 {
		t.Errorf("default particle = A=%d Z=%d, want proton",
			cfg.Source.MassNumber, cfg.Source.ChargeNumber)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "log_level: [unclosed"},
		{"bad log level", strings.Replace(validYAML, "log_level: info", "log_level: verbose", 1)},
		{"no candidates", strings.Replace(validYAML, "candidates: 100", "candidates: 0", 1)},
		{"no modules", validYAML[:strings.Index(validYAML, "modules:")] + "modules: []\n"},
		{"unknown module", strings.Replace(validYAML, "type: minimum_energy", "type: warp_drive", 1)},
		{"inverted band", strings.Replace(validYAML, "energy_max_eev: 100", "energy_max_eev: 0.5", 1)},
		{"bad position", strings.Replace(validYAML, "position_mpc: [0, 0, 0]", "position_mpc: [0, 0]", 1)},
		{"negative redshift", strings.Replace(validYAML, "redshift: 0.05", "redshift: -1", 1)},
		{"bad photon field", validYAML + "  - type: electron_pair_production\n    photon_field: EBL\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfigYAMLString(tt.yaml); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Candidates != 100 {
		t.Errorf("candidates = %d, want 100", cfg.Candidates)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
