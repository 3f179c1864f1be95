package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"deadsched/internal/scenario"
	"deadsched/internal/tracing"
)

var (
	genProcs     int
	genResources int
	genSeed      int64
	genOut       string
	storeDir     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random scenario",
	RunE:  runGenerate,
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the builtin scenarios and those kept in a store",
	RunE:  runScenarios,
}

func init() {
	generateCmd.Flags().IntVar(&genProcs, "procs", 5, "number of processes")
	generateCmd.Flags().IntVar(&genResources, "resources", 3, "number of resource types")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed (default: current time)")
	generateCmd.Flags().StringVar(&genOut, "out", "", "write the scenario to this URL instead of stdout")
	generateCmd.Flags().StringVar(&storeDir, "store", "", "also keep the scenario in this store directory")

	scenariosCmd.Flags().StringVar(&storeDir, "store", "", "store directory to list")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return traced(cmd, func(ctx context.Context, sp *tracing.Span) error {
		if genProcs <= 0 || genResources <= 0 {
			return fmt.Errorf("--procs and --resources must be positive")
		}
		seed := genSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		sp.WithInt("procs", genProcs).WithInt("resources", genResources).
			WithAttributes(map[string]string{"seed": fmt.Sprint(seed)})

		sc := scenario.Generate(rand.New(rand.NewSource(seed)), genProcs, genResources)
		sc.Description = fmt.Sprintf("random workload, seed %d", seed)
		if _, err := sc.Build(); err != nil {
			return err
		}
		log.Info("scenario generated", "name", sc.Name, "seed", seed)

		if storeDir != "" {
			store, err := scenario.NewStore(ctx, storeDir)
			if err != nil {
				return err
			}
			if err := store.Save(ctx, sc); err != nil {
				return err
			}
			log.Info("scenario stored", "dir", storeDir, "name", sc.Name)
		}
		if genOut != "" {
			if err := scenario.Save(ctx, genOut, sc); err != nil {
				return err
			}
			log.Info("scenario saved", "url", genOut)
			return nil
		}
		data, err := scenario.Encode(sc)
		if err != nil {
			return err
		}
		return output(sc, string(data))
	})
}

type scenarioList struct {
	Builtin []string `json:"builtin"`
	Stored  []string `json:"stored,omitempty"`
}

func runScenarios(cmd *cobra.Command, args []string) error {
	return traced(cmd, func(ctx context.Context, sp *tracing.Span) error {
		var list scenarioList
		text := "Builtin:\n"
		for id := 1; id <= scenario.NUM_BUILTIN; id++ {
			sc, err := scenario.Builtin(id)
			if err != nil {
				return err
			}
			list.Builtin = append(list.Builtin, sc.Name)
			text += fmt.Sprintf("  %2d  %s\n", id, sc.Description)
		}
		if storeDir != "" {
			store, err := scenario.NewStore(ctx, storeDir)
			if err != nil {
				return err
			}
			if list.Stored, err = store.List(ctx); err != nil {
				return err
			}
			text += "Stored in " + storeDir + ":\n"
			for _, name := range list.Stored {
				text += "  " + name + "\n"
			}
		}
		return output(list, text)
	})
}
