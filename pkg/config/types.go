// Package config defines the YAML configuration schema for a propagation
// run and its parsing and validation.
package config

// Config is the top-level run configuration
type Config struct {
	LogLevel   string `yaml:"log_level"`
	Seed       int64  `yaml:"seed"`
	Workers    int    `yaml:"workers"`
	Candidates int    `yaml:"candidates"`
	MaxSteps   int    `yaml:"max_steps"`
	DataDir    string `yaml:"data_dir"`

	Source  SourceConfig   `yaml:"source"`
	Modules []ModuleConfig `yaml:"modules"`
}

// SourceConfig describes the candidate source. Energies are in EeV,
// positions in Mpc.
type SourceConfig struct {
	// MassNumber and ChargeNumber select the emitted nucleus; A=1, Z=1
	// (proton) when both are zero.
	MassNumber   int `yaml:"mass_number"`
	ChargeNumber int `yaml:"charge_number"`

	// Fixed energy, or a power-law band when EnergyMaxEeV > EnergyMinEeV
	EnergyEeV     float64 `yaml:"energy_eev"`
	EnergyMinEeV  float64 `yaml:"energy_min_eev"`
	EnergyMaxEeV  float64 `yaml:"energy_max_eev"`
	SpectralIndex float64 `yaml:"spectral_index"`

	PositionMpc []float64 `yaml:"position_mpc"`

	// Fixed emission direction; isotropic when Isotropic is set
	Direction []float64 `yaml:"direction"`
	Isotropic bool      `yaml:"isotropic"`

	Redshift float64 `yaml:"redshift"`
}

// ModuleConfig describes one module in the chain. Type selects the
// module; the remaining fields apply to the types that read them.
// Energies are in EeV, lengths in Mpc, rigidities in EeV.
type ModuleConfig struct {
	Type string `yaml:"type"`

	// simple_propagation
	MinStepKpc float64 `yaml:"min_step_kpc,omitempty"`
	MaxStepMpc float64 `yaml:"max_step_mpc,omitempty"`

	// maximum_trajectory_length, detection_length
	MaxLengthMpc float64 `yaml:"max_length_mpc,omitempty"`
	DetLengthMpc float64 `yaml:"det_length_mpc,omitempty"`

	// minimum_energy, minimum_rigidity
	MinEnergyEeV   float64 `yaml:"min_energy_eev,omitempty"`
	MinRigidityEeV float64 `yaml:"min_rigidity_eev,omitempty"`

	// minimum_redshift, minimum_charge_number
	MinRedshift     float64 `yaml:"min_redshift,omitempty"`
	MinChargeNumber int     `yaml:"min_charge_number,omitempty"`

	// minimum_energy_per_particle_id
	ParticleIDs      []int     `yaml:"particle_ids,omitempty"`
	MinEnergiesEeV   []float64 `yaml:"min_energies_eev,omitempty"`
	FallbackMinEnEeV float64   `yaml:"fallback_min_energy_eev,omitempty"`

	// electron_pair_production: CMB, IRB or CMB_IRB
	PhotonField string `yaml:"photon_field,omitempty"`
}
