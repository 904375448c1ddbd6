// fleetsim - IoT fleet simulator
//
// This is the main entry point for the fleet simulator. It builds a fleet of
// simulated units from configuration, connects them to a message bus, and
// runs their periodic publishers and control loops until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/fleetsim/internal/fleet"
	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
	"github.com/nerrad567/fleetsim/internal/infrastructure/influxdb"
	"github.com/nerrad567/fleetsim/internal/infrastructure/logging"
	"github.com/nerrad567/fleetsim/internal/logic"
	"github.com/nerrad567/fleetsim/internal/logic/sensors"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM).
	// This is the structured termination condition the container's shutdown
	// hangs off: the signal cancels the context, run calls Shutdown once.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := flag.String("config", defaultConfigPath, "path to config.yaml")
	flag.Parse()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Path to the root configuration file
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting fleet simulator",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Load the fleet definition
	units, err := config.LoadUnits(cfg.Units.File)
	if err != nil {
		return fmt.Errorf("loading units: %w", err)
	}
	log.Info("fleet definition loaded", "path", cfg.Units.File, "units", len(units))

	// Register built-in logic modules
	registry := logic.NewRegistry()
	if err := sensors.Register(registry); err != nil {
		return fmt.Errorf("registering logic modules: %w", err)
	}
	log.Info("logic modules registered",
		"control_loops", registry.ControlLoopRefs(),
		"request_handlers", registry.RequestHandlerRefs(),
	)

	// Connect to InfluxDB (optional)
	opts := fleet.BuildOptions{Logger: log}
	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		opts.Recorder = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the container: link, scheduler, units. Any unit failing to
	// build aborts startup before any periodic work begins.
	container, err := fleet.Build(cfg, units, registry, opts)
	if err != nil {
		return fmt.Errorf("building fleet: %w", err)
	}

	// Start the fleet and block until a shutdown signal arrives
	if err := container.Run(); err != nil {
		return fmt.Errorf("running fleet: %w", err)
	}
	log.Info("fleet running", "units", container.UnitNames(), "link", cfg.Link.Type)

	<-ctx.Done()
	log.Info("shutdown signal received")

	container.Shutdown()
	return nil
}
