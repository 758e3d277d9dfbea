// Command sortbias tabulates and applies the sort-by-random-key bias
// criterion.
//
//	sortbias table --log2n 0
//	sortbias check 20 --pcrit 0.55
//	sortbias advise --log2k 20 --bits 32 --n 1000
//	sortbias estimate --source float32
//	sortbias simulate --k 128 --bits 10
//	sortbias report --format html --output report.html
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/alexshd/sortbias/internal/config"
)

// app carries state shared by subcommands after the root pre-run.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	out    *printer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sortbias",
		Short: "Decide when sorting random keys is an acceptable random permutation",
		Long: `sortbias quantifies the bias of generating random permutations by sorting
randomly keyed arrays, and tabulates the longest permutation for which the bias
stays below a target distinguishing probability P_crit.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newTableCmd(a),
		newCheckCmd(a),
		newPCritCmd(a),
		newAdviseCmd(a),
		newEstimateCmd(a),
		newSimulateCmd(a),
		newReportCmd(a),
	)

	return rootCmd
}

// init loads configuration and wires the tint logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	a.logger = slog.New(
		tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
			Level:      cfg.SlogLevel(),
			TimeFormat: "15:04:05",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}),
	)
	slog.SetDefault(a.logger)

	a.out = newPrinter(cmd.OutOrStdout(), isatty.IsTerminal(os.Stdout.Fd()))
	return nil
}
