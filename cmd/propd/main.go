package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/crsim/propagation-core/internal/engine"
	"github.com/crsim/propagation-core/internal/interaction"
	"github.com/crsim/propagation-core/internal/metrics"
	"github.com/crsim/propagation-core/internal/module"
	"github.com/crsim/propagation-core/internal/particle"
	"github.com/crsim/propagation-core/internal/source"
	"github.com/crsim/propagation-core/pkg/config"
	"github.com/crsim/propagation-core/pkg/logger"
	"github.com/crsim/propagation-core/pkg/units"
	"github.com/crsim/propagation-core/pkg/utils"
)

// buildSource assembles a candidate source from its configuration
func buildSource(cfg *config.SourceConfig, rng *utils.RandSource) *source.Source {
	src := source.New(rng)
	src.Add(source.ParticleType{ID: particle.NucleusID(cfg.MassNumber, cfg.ChargeNumber)})

	if cfg.EnergyMaxEeV > cfg.EnergyMinEeV && cfg.EnergyMinEeV > 0 {
		src.Add(source.PowerLawSpectrum{
			EMin:  cfg.EnergyMinEeV * units.EeV,
			EMax:  cfg.EnergyMaxEeV * units.EeV,
			Index: cfg.SpectralIndex,
		})
	} else {
		src.Add(source.Energy{E: cfg.EnergyEeV * units.EeV})
	}

	if len(cfg.PositionMpc) == 3 {
		src.Add(source.Position{Point: particle.NewVector3(
			cfg.PositionMpc[0]*units.Mpc,
			cfg.PositionMpc[1]*units.Mpc,
			cfg.PositionMpc[2]*units.Mpc,
		)})
	}

	if cfg.Isotropic {
		src.Add(source.IsotropicEmission{})
	} else if len(cfg.Direction) == 3 {
		src.Add(source.Direction{Dir: particle.NewVector3(
			cfg.Direction[0], cfg.Direction[1], cfg.Direction[2],
		)})
	}

	if cfg.Redshift > 0 {
		src.Add(source.Redshift{Z: cfg.Redshift})
	}

	return src
}

// buildChain assembles the module chain from its configuration
func buildChain(cfg *config.Config) (*module.Chain, error) {
	chain := module.NewChain()
	for i, m := range cfg.Modules {
		switch m.Type {
		case "simple_propagation":
			chain.Add(module.NewSimplePropagation(m.MinStepKpc*units.Kpc, m.MaxStepMpc*units.Mpc))
		case "maximum_trajectory_length":
			chain.Add(module.NewMaximumTrajectoryLength(m.MaxLengthMpc * units.Mpc))
		case "detection_length":
			chain.Add(module.NewDetectionLength(m.DetLengthMpc * units.Mpc))
		case "minimum_energy":
			chain.Add(module.NewMinimumEnergy(m.MinEnergyEeV * units.EeV))
		case "minimum_rigidity":
			chain.Add(module.NewMinimumRigidity(m.MinRigidityEeV * units.EeV))
		case "minimum_redshift":
			chain.Add(module.NewMinimumRedshift(m.MinRedshift))
		case "minimum_charge_number":
			chain.Add(module.NewMinimumChargeNumber(m.MinChargeNumber))
		case "minimum_energy_per_particle_id":
			bc := module.NewMinimumEnergyPerParticleId(m.FallbackMinEnEeV * units.EeV)
			for j, id := range m.ParticleIDs {
				bc.Add(id, m.MinEnergiesEeV[j]*units.EeV)
			}
			chain.Add(bc)
		case "electron_pair_production":
			variant := interaction.FieldVariant(m.PhotonField)
			if m.PhotonField == "CMB_IRB" {
				variant = interaction.FieldCMBIR
			}
			epp, err := interaction.NewElectronPairProduction(variant, cfg.DataDir)
			if err != nil {
				return nil, fmt.Errorf("module %d: %w", i, err)
			}
			chain.Add(epp)
		default:
			return nil, fmt.Errorf("module %d: unknown type %s", i, m.Type)
		}
	}
	return chain, nil
}

func main() {
	var configPath string
	var httpAddr string
	var logLevel string

	flag.StringVar(&configPath, "config", "config.yaml", "path to run configuration")
	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address for metrics")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DataDir != "" {
		massPath := filepath.Join(cfg.DataDir, "nuclear_masses.txt")
		if _, err := os.Stat(massPath); err == nil {
			if err := particle.LoadNuclearMasses(massPath); err != nil {
				logger.Error("failed to load nuclear masses", "path", massPath, "error", err)
				os.Exit(1)
			}
			logger.Info("nuclear masses loaded", "path", massPath)
		}
	}

	chain, err := buildChain(cfg)
	if err != nil {
		logger.Error("failed to build module chain", "error", err)
		os.Exit(1)
	}

	rng := utils.NewRandSource(cfg.Seed)
	src := buildSource(&cfg.Source, rng)

	collector := metrics.NewCollector()
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	eng := engine.NewEngine(utils.GenerateRunID(), chain)
	eng.SetMaxSteps(cfg.MaxSteps)
	eng.SetCollector(collector)

	runDone := make(chan error, 1)
	go func() {
		runDone <- eng.Run(ctx, src, cfg.Candidates, cfg.Workers)
	}()

	select {
	case err := <-runDone:
		if err != nil {
			logger.Error("run error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown requested")
		eng.Stop()
		<-runDone
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
