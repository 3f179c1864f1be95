package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"deadsched"
	"deadsched/internal/config"
	"deadsched/internal/idgen"
	"deadsched/internal/logging"
	"deadsched/internal/scenario"
	"deadsched/internal/tracing"
)

const version = "0.1.0"

var (
	cfgFile     string
	scenarioURL string
	builtinID   int
	jsonOut     bool
	verbose     bool

	cfg   *config.Config
	log   *slog.Logger
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "deadsched",
	Short: "deadsched - deadlock and CPU scheduling simulator",
	Long: `deadsched loads a resource-allocation scenario (a builtin one, or a YAML
document from any URL the storage layer understands) and lets you inspect it,
detect and resolve deadlocks, run banker's requests and releases, and
simulate CPU scheduling over its processes.

Run 'deadsched detect --builtin 3' to see a circular wait, or
'deadsched schedule --algorithm rr --quantum 2' for a round robin run.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./deadsched.yaml)")
	rootCmd.PersistentFlags().StringVar(&scenarioURL, "scenario", "", "scenario URL, e.g. file:///tmp/s.yaml or a plain path")
	rootCmd.PersistentFlags().IntVar(&builtinID, "builtin", 0, fmt.Sprintf("builtin scenario 1-%d", scenario.NUM_BUILTIN))
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(lockdemoCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return err
	}
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	runID = idgen.New()
	log = logging.New(level, cfg.Logging.Format, os.Stderr).With("run", runID)

	if cfg.Tracing.Enabled {
		if err := tracing.Init(cfg.Tracing.ServiceName, version, cfg.Tracing.OutputFile); err != nil {
			log.Warn("tracing disabled", logging.ErrAttr(err))
		}
	}
	log.Debug("starting", "command", cmd.Name(), "version", version)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if err := tracing.Shutdown(context.Background()); err != nil {
		log.Warn("tracing shutdown", logging.ErrAttr(err))
	}
	return nil
}

// traced runs fn inside a span named after the command.
func traced(cmd *cobra.Command, fn func(ctx context.Context, sp *tracing.Span) error) error {
	ctx, sp := tracing.StartSpan(cmd.Context(), "deadsched."+cmd.Name())
	sp.WithAttributes(map[string]string{"run.id": runID})
	err := fn(ctx, sp)
	tracing.EndSpan(sp, err)
	if err != nil {
		log.Error(cmd.Name()+" failed", logging.ErrAttr(err))
	}
	return err
}

// loadScenario picks the scenario from the flags first and the config second.
func loadScenario(ctx context.Context) (*scenario.Scenario, error) {
	switch {
	case scenarioURL != "":
		return scenario.Load(ctx, scenarioURL)
	case builtinID > 0:
		return scenario.Builtin(builtinID)
	case cfg.Scenario.URL != "":
		return scenario.Load(ctx, cfg.Scenario.URL)
	}
	return scenario.Builtin(cfg.Scenario.Builtin)
}

func loadWorld(ctx context.Context, sp *tracing.Span) (*deadsched.World, *scenario.Scenario, error) {
	sc, err := loadScenario(ctx)
	if err != nil {
		return nil, nil, err
	}
	l, err := sc.Build()
	if err != nil {
		return nil, nil, err
	}
	sp.WithAttributes(map[string]string{"scenario": sc.Name}).
		WithInt("processes", l.NumProcs()).
		WithInt("resources", l.NumResources())
	log.Debug("scenario loaded", "name", sc.Name, "processes", l.NumProcs(), "resources", l.NumResources())
	return deadsched.NewWorld(l, deadsched.WithLogger(log)), sc, nil
}

// output prints v as JSON with --json, text otherwise.
func output(v any, text string) error {
	if !jsonOut {
		fmt.Print(text)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// saveLedger writes the ledger back out as a scenario when url is set.
func saveLedger(ctx context.Context, url, name string, l *deadsched.Ledger) error {
	if url == "" {
		return nil
	}
	if err := scenario.Save(ctx, url, scenario.FromLedger(name, l)); err != nil {
		return err
	}
	log.Info("scenario saved", "url", url)
	return nil
}
