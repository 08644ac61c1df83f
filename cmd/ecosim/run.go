package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/myopic/ecosim/band"
	"github.com/myopic/ecosim/ecoerr"
	"github.com/myopic/ecosim/engine"
	"github.com/myopic/ecosim/scenario"
	"github.com/myopic/ecosim/simulation"
	"github.com/myopic/ecosim/telemetry"
)

var (
	runTicks            int
	runOut              string
	runLabel            string
	runAgents           int
	runPredators        int
	runSeed             int64
	runPerceptionRadius int
	runTraceAgent       int
	runWindow           int
)

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Execute the environment engine and agent simulation for one scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := runScenario(args[0])
		if err != nil {
			return err
		}
		fmt.Println(dir)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runTicks, "ticks", 1000, "number of ticks to simulate")
	runCmd.Flags().StringVar(&runOut, "out", "runs", "directory under which the run directory is created")
	runCmd.Flags().StringVar(&runLabel, "label", "", "run label (defaults to a timestamp)")
	runCmd.Flags().IntVar(&runAgents, "agents", 50, "number of banded agents to simulate")
	runCmd.Flags().IntVar(&runPredators, "predators", 5, "number of predators to simulate")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "agent/predator population RNG seed")
	runCmd.Flags().IntVar(&runPerceptionRadius, "perception-radius", 3, "agent neighborhood perception radius")
	runCmd.Flags().IntVar(&runTraceAgent, "trace-agent", -1, "write a per-tick decision trace CSV for this agent ID (-1 disables)")
	runCmd.Flags().IntVar(&runWindow, "window", 50, "tick span of each telemetry reporting window")
}

// runScenario loads the scenario at path, runs the headless environment
// engine for the requested ticks, then replays those ticks through the
// banded agent simulation, recording rolling-window telemetry, automatic
// bookmarks, per-agent lifetime stats, a hall of fame, and perf timing
// alongside the environment run directory's own artifacts.
func runScenario(path string) (string, error) {
	const op = "ecosim.run"

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := scenario.Load(path)
	if err != nil {
		return "", err
	}

	runDir, err := engine.Run(s, engine.Config{Ticks: runTicks, OutDir: runOut, Label: runLabel})
	if err != nil {
		return "", err
	}
	logger.Info("environment engine run complete", "dir", runDir)

	sim, err := simulation.New(simulation.Config{
		Root:             runDir,
		NumPredators:     runPredators,
		NumAgents:        runAgents,
		Seed:             runSeed,
		PerceptionRadius: runPerceptionRadius,
	})
	if err != nil {
		return "", err
	}

	agentsDir := filepath.Join(runDir, "agents")
	om, err := telemetry.NewOutputManager(agentsDir)
	if err != nil {
		return "", ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	defer om.Close()

	collector := telemetry.NewCollector()
	detector := telemetry.NewBookmarkDetector(20)
	lifetimes := telemetry.NewLifetimeTracker()
	hof := telemetry.NewHallOfFame(10)
	perf := telemetry.NewPerfCollector(runWindow)

	for _, a := range sim.Agents() {
		lifetimes.Register(a.GetStateSummary().AgentID, 0)
	}
	alive := make(map[int]bool, len(sim.Agents()))
	for _, a := range sim.Agents() {
		alive[a.GetStateSummary().AgentID] = true
	}

	var energies []float64
	for t := 0; t < runTicks; t++ {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseAgentDecide)
		snap, err := sim.Step(t)
		if err != nil {
			return runDir, err
		}
		perf.StartPhase(telemetry.PhaseTelemetry)

		energies = energies[:0]
		for _, a := range sim.Agents() {
			st := a.GetStateSummary()
			traj := a.GetTrajectory()
			if n := len(traj); n > 0 && traj[n-1].Tick == t {
				entry := traj[n-1]
				collector.RecordAction(entry.Action)
				if entry.Action == band.Forage {
					lifetimes.RecordForage(st.AgentID)
				}
			}

			lifetimes.Update(st.AgentID, t+1, st.Energy, st.TimesCaught, st.Alive, st.CauseOfDeath)
			if st.Alive {
				energies = append(energies, st.Energy)
			}

			if wasAlive := alive[st.AgentID]; wasAlive && !st.Alive {
				switch st.CauseOfDeath {
				case "depletion":
					collector.RecordStarvation()
				case "predation":
					collector.RecordPredation()
				}
				if rec := lifetimes.Get(st.AgentID); rec != nil {
					hof.Consider(*rec)
				}
			}
			alive[st.AgentID] = st.Alive
		}
		perf.EndTick()

		if (t+1)%runWindow == 0 || t == runTicks-1 {
			stats := collector.Flush(int32(t+1), snap, energies)
			if err := om.WriteTelemetry(stats); err != nil {
				return runDir, err
			}
			for _, b := range detector.Check(stats) {
				if err := om.WriteBookmark(b); err != nil {
					return runDir, err
				}
			}
			if err := om.WritePerf(perf.Stats(), int32(t+1)); err != nil {
				return runDir, err
			}
		}
	}

	for _, rec := range lifetimes.All() {
		if rec.Alive {
			hof.Consider(*rec)
		}
	}
	if err := om.WriteHallOfFame(hof); err != nil {
		return runDir, err
	}

	if runTraceAgent >= 0 {
		if err := traceAgent(om, sim, runTraceAgent); err != nil {
			return runDir, err
		}
	}

	return runDir, nil
}

func traceAgent(om *telemetry.OutputManager, sim *simulation.Simulation, id int) error {
	const op = "ecosim.run.traceAgent"
	for _, a := range sim.Agents() {
		if a.GetStateSummary().AgentID == id {
			return om.WriteAgentTrace(a)
		}
	}
	return ecoerr.New(ecoerr.DomainPrecondition, op, fmt.Sprintf("no agent with ID %d", id))
}
