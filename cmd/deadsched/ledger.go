package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"deadsched"
	"deadsched/internal/tracing"
)

var (
	strategyName string
	opPid        int
	opVec        string
	saveURL      string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the scenario's ledger and whether it is safe",
	RunE:  runShow,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find deadlocked processes in the resource-allocation graph",
	RunE:  runDetect,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Detect and break a deadlock with the chosen strategy",
	Long: `Strategies: termination, preemption, min-cost-preemption,
priority-preemption and safe-sequence.`,
	RunE: runResolve,
}

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Ask the banker for resources on behalf of a process",
	RunE:  runRequest,
}

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Hand resources back from a process",
	RunE:  runRelease,
}

func init() {
	resolveCmd.Flags().StringVar(&strategyName, "strategy", "", "resolution strategy (default from config)")
	resolveCmd.Flags().StringVar(&saveURL, "save", "", "write the resolved ledger to this URL")

	for _, c := range []*cobra.Command{requestCmd, releaseCmd} {
		c.Flags().IntVar(&opPid, "pid", 0, "process id")
		c.Flags().StringVar(&opVec, "vec", "", "resource vector, e.g. 1,0,2")
		c.Flags().StringVar(&saveURL, "save", "", "write the updated ledger to this URL")
		_ = c.MarkFlagRequired("pid")
		_ = c.MarkFlagRequired("vec")
	}
}

type showResult struct {
	Ledger       *deadsched.LedgerSnapshot `json:"ledger"`
	Safe         bool                      `json:"safe"`
	SafeSequence []deadsched.Tpid          `json:"safe_sequence"`
}

func runShow(cmd *cobra.Command, args []string) error {
	return traced(cmd, func(ctx context.Context, sp *tracing.Span) error {
		w, sc, err := loadWorld(ctx, sp)
		if err != nil {
			return err
		}
		seq, ok := deadsched.SafeSequence(w.Ledger())
		res := showResult{Ledger: w.Snapshot(), Safe: ok, SafeSequence: seq}

		text := fmt.Sprintf("Scenario: %s\n", sc.Name)
		if sc.Description != "" {
			text += fmt.Sprintf("  %s\n", sc.Description)
		}
		text += "\n" + w.Ledger().String() + "\n" + res.Ledger.String() + "\n"
		if ok {
			text += fmt.Sprintf("Safe, sequence %v\n", seq)
		} else {
			text += fmt.Sprintf("Unsafe, only %v can finish\n", seq)
		}
		return output(res, text)
	})
}

type detectResult struct {
	Deadlocked []deadsched.Tpid `json:"deadlocked"`
	Cycle      []string         `json:"cycle,omitempty"`
	Graph      *deadsched.Graph `json:"graph"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	return traced(cmd, func(ctx context.Context, sp *tracing.Span) error {
		w, _, err := loadWorld(ctx, sp)
		if err != nil {
			return err
		}
		res := detectResult{
			Deadlocked: pids(w.Detect()),
			Cycle:      deadsched.FindCycle(w.Ledger()),
			Graph:      deadsched.BuildGraph(w.Ledger()),
		}
		sp.WithInt("deadlocked", len(res.Deadlocked))

		text := ""
		if len(res.Deadlocked) == 0 {
			text += "No deadlock\n"
		} else {
			text += fmt.Sprintf("Deadlocked: %v\n", res.Deadlocked)
			text += "Cycle:      " + strings.Join(res.Cycle, " -> ") + " -> " + res.Cycle[0] + "\n"
		}
		return output(res, text)
	})
}

type resolveResult struct {
	Deadlocked []deadsched.Tpid          `json:"deadlocked"`
	Resolution *deadsched.Resolution     `json:"resolution"`
	Affected   []deadsched.Tpid          `json:"affected"`
	Ledger     *deadsched.LedgerSnapshot `json:"ledger"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	return traced(cmd, func(ctx context.Context, sp *tracing.Span) error {
		name := strategyName
		if name == "" {
			name = cfg.Simulation.Strategy
		}
		strategy, err := deadsched.ParseStrategy(name)
		if err != nil {
			return err
		}
		sp.WithAttributes(map[string]string{"strategy": strategy.String()})

		w, sc, err := loadWorld(ctx, sp)
		if err != nil {
			return err
		}
		deadlocked := pids(w.Detect())
		res, err := w.Resolve(strategy)
		if res == nil {
			return err
		}
		out := resolveResult{
			Deadlocked: deadlocked,
			Resolution: res,
			Affected:   res.AffectedPids(),
			Ledger:     w.Snapshot(),
		}
		text := fmt.Sprintf("Deadlocked before: %v\n%s\n\n%s", deadlocked, res, w.Ledger())
		if perr := output(out, text); perr != nil {
			return perr
		}
		if err != nil {
			return err
		}
		return saveLedger(ctx, saveURL, sc.Name+"-resolved", w.Ledger())
	})
}

func runRequest(cmd *cobra.Command, args []string) error {
	return runLedgerOp(cmd, (*deadsched.World).Request)
}

func runRelease(cmd *cobra.Command, args []string) error {
	return runLedgerOp(cmd, (*deadsched.World).Release)
}

type opResult struct {
	Pid    deadsched.Tpid            `json:"pid"`
	Vector deadsched.Tvec            `json:"vector"`
	Safe   bool                      `json:"safe"`
	Ledger *deadsched.LedgerSnapshot `json:"ledger"`
}

func runLedgerOp(cmd *cobra.Command, op func(w *deadsched.World, pid deadsched.Tpid, v deadsched.Tvec) error) error {
	return traced(cmd, func(ctx context.Context, sp *tracing.Span) error {
		vec, err := deadsched.ParseVec(opVec)
		if err != nil {
			return err
		}
		sp.WithInt("pid", opPid).WithAttributes(map[string]string{"vector": vec.String()})

		w, sc, err := loadWorld(ctx, sp)
		if err != nil {
			return err
		}
		pid := deadsched.Tpid(opPid)
		if err := op(w, pid, vec); err != nil {
			return err
		}
		res := opResult{Pid: pid, Vector: vec, Safe: deadsched.IsSafe(w.Ledger()), Ledger: w.Snapshot()}
		text := fmt.Sprintf("%s %v for %v: ok\n\n%s", cmd.Name(), vec, pid, w.Ledger())
		if err := output(res, text); err != nil {
			return err
		}
		return saveLedger(ctx, saveURL, sc.Name, w.Ledger())
	})
}

func pids(procs []*deadsched.Process) []deadsched.Tpid {
	out := make([]deadsched.Tpid, len(procs))
	for i, p := range procs {
		out[i] = p.Pid
	}
	return out
}
