package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
	"github.com/dd0wney/cluso-astopo/pkg/config"
	"github.com/dd0wney/cluso-astopo/pkg/metrics"
	"github.com/dd0wney/cluso-astopo/pkg/pipeline"
)

var (
	runFormat     string
	runOutput     string
	runExport     string
	runCompress   bool
	runTextfile   string
	runNoProgress bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze the datasets and write the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := pipeline.Deps{
			Logger:  newLogger(cfg),
			Metrics: metrics.NewRegistry(),
			Stdout:  cmd.OutOrStdout(),
		}
		if !runNoProgress {
			deps.Progress = progressPrinter(cmd.ErrOrStderr())
		}

		_, err = pipeline.Run(ctx, cfg, deps)
		return err
	},
}

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&runFormat, "format", "f", "", "Report format (latex, table, json)")
	flags.StringVarP(&runOutput, "output", "o", "", "Report file (default stdout)")
	flags.StringVar(&runExport, "export", "", "Write the enriched nodes to this file")
	flags.BoolVar(&runCompress, "compress", false, "Snappy-compress the export")
	flags.StringVar(&runTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")
	flags.BoolVar(&runNoProgress, "no-progress", false, "Hide the cone enrichment progress bar")
}

func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format = runFormat
	}
	if flags.Changed("output") {
		cfg.Report.Output = runOutput
	}
	if flags.Changed("export") {
		cfg.Export.Path = runExport
	}
	if flags.Changed("compress") {
		cfg.Export.Compress = runCompress
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = runTextfile
	}

	// Run-specific flags can invalidate an otherwise valid file
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// progressPrinter redraws a progress bar in place on w
func progressPrinter(w io.Writer) algorithms.ProgressFunc {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(50))
	last := -1

	return func(done, total int) {
		if total == 0 {
			return
		}
		pct := float64(done) / float64(total)
		// Redraw at most once per percent
		if step := int(pct * 100); step != last {
			last = step
			fmt.Fprintf(w, "\rcones %s %d/%d", bar.ViewAs(pct), done, total)
		}
		if done == total {
			fmt.Fprintln(w)
		}
	}
}
