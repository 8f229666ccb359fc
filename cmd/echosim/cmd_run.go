package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Harshitk-cp/echosim/internal/config"
	"github.com/Harshitk-cp/echosim/internal/domain"
	"github.com/Harshitk-cp/echosim/internal/simulation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation headless and print metrics",
		Long: `Run builds a simulation from the defaults, an optional params file, and
flag overrides (in that order), advances it, and prints a metrics row every
--every steps plus the final one.`,
		Example: `  echosim run --model chamber --steps 500 --seed 42
  echosim run --params params.yaml --every 50 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := paramsFromFlags(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			every, _ := cmd.Flags().GetInt("every")
			verbose, _ := cmd.Flags().GetBool("verbose")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if steps < 0 {
				return fmt.Errorf("--steps must be >= 0, got %d", steps)
			}
			if every < 1 {
				every = 1
			}

			logger := zap.NewNop()
			if verbose {
				logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
			}

			sim, err := simulation.New(params, simulation.WithLogger(logger))
			if err != nil {
				return err
			}
			for _, w := range sim.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}

			var out metricsWriter
			if jsonOut {
				out = &jsonRows{enc: json.NewEncoder(cmd.OutOrStdout())}
			} else {
				out = &textRows{w: cmd.OutOrStdout()}
				fmt.Fprintf(cmd.OutOrStdout(), "model=%s agents=%d seed=%d\n",
					sim.ModelType(), params.NumAgents, sim.Seed())
			}
			return runSteps(sim, steps, every, out)
		},
	}

	cmd.Flags().String("params", "", "YAML or JSON params file")
	cmd.Flags().String("model", "", "Model type: bubble or chamber")
	cmd.Flags().Int("agents", 0, "Number of agents")
	cmd.Flags().Uint64("seed", 0, "Random seed (random if unset)")
	cmd.Flags().Int("steps", 100, "Number of steps to run")
	cmd.Flags().Int("every", 10, "Print metrics every N steps")
	cmd.Flags().Bool("verbose", false, "Log simulation events to stderr")
	return cmd
}

// paramsFromFlags layers the params file and explicitly set flags over the
// defaults.
func paramsFromFlags(cmd *cobra.Command) (domain.Params, error) {
	params := domain.DefaultParams()
	if path, _ := cmd.Flags().GetString("params"); path != "" {
		p, err := config.LoadParamsFile(path)
		if err != nil {
			return domain.Params{}, err
		}
		params = p
	}

	if cmd.Flags().Changed("model") {
		m, _ := cmd.Flags().GetString("model")
		params.ModelType = domain.ModelType(m)
	}
	if cmd.Flags().Changed("agents") {
		params.NumAgents, _ = cmd.Flags().GetInt("agents")
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		params.Seed = &seed
	}
	return params, nil
}

func runSteps(sim *simulation.Simulation, steps, every int, out metricsWriter) error {
	if err := out.Write(sim.Summarize()); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		if _, err := sim.Advance(); err != nil {
			return err
		}
		if i%every == 0 || i == steps {
			if err := out.Write(sim.Summarize()); err != nil {
				return err
			}
		}
	}
	return nil
}

type metricsWriter interface {
	Write(m domain.Metrics) error
}

type jsonRows struct {
	enc *json.Encoder
}

func (j *jsonRows) Write(m domain.Metrics) error {
	return j.enc.Encode(m)
}

type textRows struct {
	w      io.Writer
	header bool
}

func (t *textRows) Write(m domain.Metrics) error {
	if !t.header {
		t.header = true
		if _, err := fmt.Fprintf(t.w, "%6s  %7s  %7s  %4s  %7s  %4s  %7s  %7s\n",
			"step", "avg", "std", "n_a", "avg_a", "n_b", "avg_b", "gap"); err != nil {
			return err
		}
	}
	gap, ok := m.Polarization()
	_, err := fmt.Fprintf(t.w, "%6d  %7s  %7s  %4d  %7s  %4d  %7s  %7s\n",
		m.TimeStep,
		fmtPtr(m.AvgBelief), fmtPtr(m.StdDevBelief),
		m.GroupA.Count, fmtPtr(m.GroupA.Avg),
		m.GroupB.Count, fmtPtr(m.GroupB.Avg),
		fmtOpt(gap, ok))
	return err
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func fmtOpt(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
