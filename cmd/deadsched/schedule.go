package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deadsched"
	"deadsched/internal/tracing"
)

var (
	algorithmName string
	quantum       int
	maxSteps      int
	showTicks     bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Simulate CPU scheduling over the scenario's processes",
	Long: `Algorithms: fcfs, round-robin, bankers, sjf and priority. Processes
without a burst time get the configured default.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&algorithmName, "algorithm", "", "scheduling algorithm (default from config)")
	scheduleCmd.Flags().IntVar(&quantum, "quantum", 0, "round robin time quantum (default from config)")
	scheduleCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget before giving up (default from config)")
	scheduleCmd.Flags().BoolVar(&showTicks, "ticks", false, "print every tick, not just the Gantt segments")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	return traced(cmd, func(ctx context.Context, sp *tracing.Span) error {
		name := algorithmName
		if name == "" {
			name = cfg.Simulation.Algorithm
		}
		alg, err := deadsched.ParseAlgorithm(name)
		if err != nil {
			return err
		}
		params := deadsched.SchedParams{
			TimeQuantum: deadsched.Ttick(cfg.Simulation.TimeQuantum),
			MaxSteps:    cfg.Simulation.MaxSteps,
			BurstTimes:  map[deadsched.Tpid]deadsched.Ttick{},
		}
		if quantum != 0 {
			params.TimeQuantum = deadsched.Ttick(quantum)
		}
		if maxSteps != 0 {
			params.MaxSteps = maxSteps
		}

		w, _, err := loadWorld(ctx, sp)
		if err != nil {
			return err
		}
		for _, p := range w.Ledger().CopyProcs() {
			if p.BurstTime <= 0 {
				params.BurstTimes[p.Pid] = deadsched.Ttick(cfg.Simulation.DefaultBurst)
			}
		}
		sp.WithAttributes(map[string]string{"algorithm": alg.String()})

		sched, err := w.BuildSchedule(alg, params)
		if err != nil {
			return err
		}
		sp.WithAttributes(map[string]string{"schedule.id": sched.ID, "status": sched.Status.String()}).
			WithInt("ticks", len(sched.History))

		text := sched.String()
		if showTicks {
			text += "\n"
			for _, t := range sched.History {
				text += t.String() + "\n"
			}
		}
		text += fmt.Sprintf("completion order %v\n", sched.CompletionOrder())
		return output(sched, text)
	})
}
