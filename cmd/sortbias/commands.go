package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alexshd/sortbias"
)

func newTableCmd(a *app) *cobra.Command {
	var log2N []float64

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Tabulate the maximum log2(K) per P_crit threshold and bit-width",
		Long: `Tabulate the maximum log2(K) per P_crit threshold and bit-width.

Example: sortbias table --log2n 0 --log2n 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(log2N) == 0 {
				log2N = a.cfg.Table.Log2N
			}
			for _, l := range log2N {
				t, err := sortbias.BuildTable(a.cfg.Table.Thresholds, a.cfg.Table.BitWidths, l)
				if err != nil {
					return err
				}
				a.out.heading(fmt.Sprintf("Maximum log2(K), log2(N) = %g", l))
				a.out.printf("%s\n", t.Markdown())
			}
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&log2N, "log2n", nil, "log2 of the repetition count (repeatable; default from config)")

	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		pcrit float64
		log2N float64
	)

	cmd := &cobra.Command{
		Use:   "check <log2K>",
		Short: "Mark which bit-widths allow a permutation of length 2^log2K",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log2K, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid log2K %q: %w", args[0], err)
			}
			if !cmd.Flags().Changed("pcrit") {
				pcrit = a.cfg.Table.CheckPCrit
			}

			c, err := sortbias.CheckLength(log2K, pcrit, log2N, a.cfg.Table.BitWidths)
			if err != nil {
				return err
			}
			a.out.check(c)
			if !c.AnyValid() {
				a.logger.Warn("no bit-width admits this length; use a permutation primitive", "log2k", log2K)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&pcrit, "pcrit", 0.55, "Target P_crit (default from config)")
	cmd.Flags().Float64Var(&log2N, "log2n", 0, "log2 of the repetition count")

	return cmd
}

// lengthFlags resolves K from either --k or --log2k.
type lengthFlags struct {
	k     float64
	log2K float64
}

func (l *lengthFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&l.k, "k", 0, "Permutation length")
	cmd.Flags().Float64Var(&l.log2K, "log2k", 0, "log2 of the permutation length")
	cmd.MarkFlagsMutuallyExclusive("k", "log2k")
	cmd.MarkFlagsOneRequired("k", "log2k")
}

func (l *lengthFlags) value(cmd *cobra.Command) float64 {
	if cmd.Flags().Changed("log2k") {
		return math.Exp2(l.log2K)
	}
	return l.k
}

func newPCritCmd(a *app) *cobra.Command {
	var (
		length lengthFlags
		bits   int
		n      float64
	)

	cmd := &cobra.Command{
		Use:   "pcrit",
		Short: "Evaluate the bias d and the distinguishing probability P_crit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := length.value(cmd)

			if err := sortbias.ValidateModel(k, bits, n); err != nil {
				a.logger.Warn("bias model out of regime", "err", err)
			}

			model := sortbias.NewPairModel(k, bits, n)
			a.out.printf("K        %g (log2 %.4f)\n", k, math.Log2(k))
			a.out.printf("m        %d\n", bits)
			a.out.printf("N        %g\n", n)
			a.out.printf("d        %.6e\n", model.Bias())
			a.out.printf("fair     μ=%.4f σ=%.4f\n", model.Fair().Mu, model.Fair().Sigma)
			a.out.printf("biased   μ=%.4f σ=%.4f\n", model.Biased().Mu, model.Biased().Sigma)
			a.out.printf("P_crit   %.8f\n", sortbias.PCrit(k, bits, n))
			return nil
		},
	}

	length.register(cmd)
	cmd.Flags().IntVar(&bits, "bits", sortbias.BitsUint32, "Key bit-width m")
	cmd.Flags().Float64Var(&n, "n", 1, "Repetition count N")

	return cmd
}

func newAdviseCmd(a *app) *cobra.Command {
	var (
		length   lengthFlags
		bits     int
		n        float64
		maxPCrit float64
	)

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Recommend sorting random keys or a permutation primitive",
		Long: `Recommend sorting random keys or a permutation primitive.

Example: sortbias advise --log2k 20 --bits 32 --n 1000 --max-pcrit 0.55`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-pcrit") {
				maxPCrit = a.cfg.Table.CheckPCrit
			}

			d, err := sortbias.NewAdvisor().Recommend(sortbias.Request{
				K:           length.value(cmd),
				BitWidth:    bits,
				Repetitions: n,
				MaxPCrit:    maxPCrit,
			})
			if err != nil {
				return err
			}

			a.logger.Debug("advisor decision", "strategy", d.Strategy, "pcrit", d.PCrit)
			a.out.decision(d)
			return nil
		},
	}

	length.register(cmd)
	cmd.Flags().IntVar(&bits, "bits", sortbias.BitsUint32, "Key bit-width m")
	cmd.Flags().Float64Var(&n, "n", 1, "Repetition count N")
	cmd.Flags().Float64Var(&maxPCrit, "max-pcrit", 0.55, "Highest acceptable P_crit (default from config)")

	return cmd
}

// newKeySource builds the source named by the estimate/report flags.
func newKeySource(name string, bits int, seed int64) (sortbias.KeySource, error) {
	rng := rand.New(rand.NewSource(seed))
	switch name {
	case "float32":
		return sortbias.NewFloat32Source(rng), nil
	case "float64":
		return sortbias.NewFloat64Source(rng), nil
	case "uint":
		return sortbias.NewUintSource(rng, bits)
	default:
		return nil, fmt.Errorf("unknown source %q (float32, float64, uint)", name)
	}
}

func newEstimateCmd(a *app) *cobra.Command {
	var (
		source  string
		bits    int
		samples int
		rounds  int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the effective bit-width of a random key source from collisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Estimator.Seed
			}
			src, err := newKeySource(source, bits, seed)
			if err != nil {
				return err
			}

			cfg := a.cfg.EstimatorSettings(a.logger)
			if cmd.Flags().Changed("samples") {
				cfg.SampleSize = samples
			}
			if cmd.Flags().Changed("rounds") {
				cfg.Rounds = rounds
			}

			est, err := sortbias.EstimateBits(cmd.Context(), src, cfg)
			if err != nil {
				return err
			}

			a.out.printf("source      %s (nominal %d bits)\n", source, src.Bits())
			a.out.printf("samples     %d × %d rounds\n", est.SampleSize, len(est.PerRound))
			a.out.printf("collisions  %.1f ± %.1f\n", est.ObservedCollisions, est.StdDevCollisions)
			if est.Saturated {
				a.out.printf("bits        ≥ %.3f (no collisions resolved; increase samples)\n", est.Bits)
			} else {
				a.out.printf("bits        %.3f\n", est.Bits)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "float32", "Key source: float32, float64, uint")
	cmd.Flags().IntVar(&bits, "bits", sortbias.BitsUint32, "Bit-width for the uint source")
	cmd.Flags().IntVar(&samples, "samples", 0, "Keys per round (default from config)")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Rounds (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed (default from config)")

	return cmd
}

func newSimulateCmd(a *app) *cobra.Command {
	var (
		k       int
		bits    int
		trials  int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Measure the ascending-pair bias of sorting random keys by Monte Carlo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.SimulationSettings(a.logger)
			if cmd.Flags().Changed("k") {
				cfg.K = k
			}
			if cmd.Flags().Changed("bits") {
				cfg.BitWidth = bits
			}
			if cmd.Flags().Changed("trials") {
				cfg.Trials = trials
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}

			res, err := sortbias.Simulate(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			a.out.printf("K=%d m=%d: %d permutations, %d pairs in %v\n",
				cfg.K, cfg.BitWidth, res.Trials, res.Pairs, res.Duration)
			a.out.printf("ascending fraction  %.6f\n", res.Fraction)
			a.out.printf("ascending excess    %.6f\n", res.ObservedBias)
			a.out.printf("tie rate / 2        %.6f\n", res.TieBias)
			a.out.printf("predicted d         %.6f\n", res.PredictedBias)
			a.out.printf("z vs fair           %.2f\n", res.ZFair)
			a.out.printf("worker spread       %.6f ± %.6f\n", res.WorkerMean, res.WorkerStdDev)
			return nil
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Permutation length (default from config)")
	cmd.Flags().IntVar(&bits, "bits", 0, "Key bit-width (default from config)")
	cmd.Flags().IntVar(&trials, "trials", 0, "Permutations (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers (default from config)")

	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var (
		format   string
		output   string
		estimate bool
		simulate bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the full decision report as markdown or HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Report.Format
			}
			if !cmd.Flags().Changed("output") {
				output = a.cfg.Report.Output
			}

			report := a.cfg.ReportSettings()

			if estimate {
				for _, ks := range []struct {
					name string
					bits int
				}{{"float32", sortbias.BitsFloat32}, {"uint", 20}} {
					src, err := newKeySource(ks.name, ks.bits, a.cfg.Estimator.Seed)
					if err != nil {
						return err
					}
					est, err := sortbias.EstimateBits(cmd.Context(), src, a.cfg.EstimatorSettings(a.logger))
					if err != nil {
						return err
					}
					report.Estimates = append(report.Estimates, sortbias.NamedEstimate{
						Source:   ks.name,
						Nominal:  src.Bits(),
						Estimate: est,
					})
				}
			}

			if simulate {
				res, err := sortbias.Simulate(cmd.Context(), a.cfg.SimulationSettings(a.logger))
				if err != nil {
					return err
				}
				report.Simulation = &res
			}

			var body []byte
			switch format {
			case "html":
				html, err := report.HTML()
				if err != nil {
					return err
				}
				body = html
			case "markdown":
				md, err := report.Markdown()
				if err != nil {
					return err
				}
				body = []byte(md)
			default:
				return fmt.Errorf("unknown format %q (markdown, html)", format)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			a.logger.Info("report written", "path", output, "format", format, "bytes", len(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, html (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "Include bit-width estimates of float32 and 20-bit uint sources")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Include a Monte Carlo simulation")

	return cmd
}
