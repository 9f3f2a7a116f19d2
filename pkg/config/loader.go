package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Candidates <= 0 {
		return fmt.Errorf("candidates must be positive, got %d", cfg.Candidates)
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", cfg.MaxSteps)
	}

	if err := validateSource(&cfg.Source); err != nil {
		return fmt.Errorf("source validation failed: %w", err)
	}

	if len(cfg.Modules) == 0 {
		return fmt.Errorf("at least one module must be defined")
	}
	for i, m := range cfg.Modules {
		if err := validateModule(&m); err != nil {
			return fmt.Errorf("module %d (%s) validation failed: %w", i, m.Type, err)
		}
	}

	return nil
}

// validateSource validates the source configuration
func validateSource(s *SourceConfig) error {
	if s.MassNumber < 1 {
		return fmt.Errorf("mass_number must be positive, got %d", s.MassNumber)
	}
	if s.ChargeNumber < 0 || s.ChargeNumber > s.MassNumber {
		return fmt.Errorf("charge_number must be between 0 and mass_number, got %d", s.ChargeNumber)
	}

	hasBand := s.EnergyMinEeV > 0 || s.EnergyMaxEeV > 0
	if hasBand {
		if s.EnergyMinEeV <= 0 || s.EnergyMaxEeV <= s.EnergyMinEeV {
			return fmt.Errorf("power-law band requires 0 < energy_min_eev < energy_max_eev")
		}
	} else if s.EnergyEeV <= 0 {
		return fmt.Errorf("energy_eev must be positive, got %f", s.EnergyEeV)
	}

	if len(s.PositionMpc) != 0 && len(s.PositionMpc) != 3 {
		return fmt.Errorf("position_mpc must have 3 components, got %d", len(s.PositionMpc))
	}
	if len(s.Direction) != 0 && len(s.Direction) != 3 {
		return fmt.Errorf("direction must have 3 components, got %d", len(s.Direction))
	}
	if s.Isotropic && len(s.Direction) != 0 {
		return fmt.Errorf("direction and isotropic are mutually exclusive")
	}

	if s.Redshift < 0 {
		return fmt.Errorf("redshift cannot be negative, got %f", s.Redshift)
	}

	return nil
}

// validateModule validates a single module configuration
func validateModule(m *ModuleConfig) error {
	switch m.Type {
	case "simple_propagation":
		if m.MinStepKpc < 0 {
			return fmt.Errorf("min_step_kpc cannot be negative, got %f", m.MinStepKpc)
		}
		if m.MaxStepMpc <= 0 {
			return fmt.Errorf("max_step_mpc must be positive, got %f", m.MaxStepMpc)
		}
	case "maximum_trajectory_length":
		if m.MaxLengthMpc <= 0 {
			return fmt.Errorf("max_length_mpc must be positive, got %f", m.MaxLengthMpc)
		}
	case "detection_length":
		if m.DetLengthMpc <= 0 {
			return fmt.Errorf("det_length_mpc must be positive, got %f", m.DetLengthMpc)
		}
	case "minimum_energy":
		if m.MinEnergyEeV <= 0 {
			return fmt.Errorf("min_energy_eev must be positive, got %f", m.MinEnergyEeV)
		}
	case "minimum_rigidity":
		if m.MinRigidityEeV <= 0 {
			return fmt.Errorf("min_rigidity_eev must be positive, got %f", m.MinRigidityEeV)
		}
	case "minimum_redshift":
		// any value is a valid threshold, including negative
	case "minimum_charge_number":
		if m.MinChargeNumber < 0 {
			return fmt.Errorf("min_charge_number cannot be negative, got %d", m.MinChargeNumber)
		}
	case "minimum_energy_per_particle_id":
		if len(m.ParticleIDs) != len(m.MinEnergiesEeV) {
			return fmt.Errorf("particle_ids and min_energies_eev must have equal length, got %d and %d",
				len(m.ParticleIDs), len(m.MinEnergiesEeV))
		}
	case "electron_pair_production":
		validFields := map[string]bool{
			"CMB":     true,
			"IRB":     true,
			"CMB_IRB": true,
		}
		if !validFields[m.PhotonField] {
			return fmt.Errorf("invalid photon_field: %s (must be CMB, IRB, or CMB_IRB)", m.PhotonField)
		}
	case "":
		return fmt.Errorf("module type cannot be empty")
	default:
		return fmt.Errorf("unknown module type: %s", m.Type)
	}
	return nil
}
