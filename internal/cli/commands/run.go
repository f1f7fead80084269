package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/output"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Concurrency int
	ExportDir   string
}

// runResult is the machine-readable form of a finished run.
type runResult struct {
	Run    *core.Run           `json:"run" yaml:"run"`
	Errors []*core.RecordError `json:"errors" yaml:"errors"`
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Map all published records",
		Long: `Map every published record to its IDF and index documents.

Results are stored in the state database. With --export-dir each IDF
document is also written as <file identifier>.xml. The command fails when
any record could not be mapped; the remaining records are still stored.`,
		Example: `  # Map all records
  ingrid-dsc run

  # Export IDF files with 8 workers
  ingrid-dsc run --export-dir out --concurrency 8

  # JSON summary for CI/CD integration
  ingrid-dsc run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", 0, "Records mapped in parallel (default from config)")
	cmd.Flags().StringVar(&opts.ExportDir, "export-dir", "", "Write each IDF document to this directory")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cfg := *getConfig()
	if cmd.Flags().Changed("concurrency") {
		if opts.Concurrency < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", opts.Concurrency)
		}
		cfg.Concurrency = opts.Concurrency
	}
	if cmd.Flags().Changed("export-dir") {
		cfg.ExportDir = opts.ExportDir
	}

	logger := getLogger(cmd)
	eng, err := createEngine(&cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	startTime := time.Now()
	run, runErr := eng.Run(cmd.Context())
	if run == nil {
		return runErr
	}

	errs, err := eng.GetStateStore().ListErrors(run.ID)
	if err != nil {
		return err
	}
	if errs == nil {
		errs = []*core.RecordError{}
	}

	handled, err := r.Data(runResult{Run: run, Errors: errs})
	if err != nil {
		return err
	}
	if !handled {
		renderRun(r, run, errs, time.Since(startTime))
	}

	if runErr != nil {
		return runErr
	}
	if run.Status != core.RunStatusCompleted {
		return fmt.Errorf("run %s %s: %s", run.ID, run.Status, run.Error)
	}
	return nil
}

func renderRun(r *output.Renderer, run *core.Run, errs []*core.RecordError, elapsed time.Duration) {
	status := output.StatusOK
	if run.Status != core.RunStatusCompleted {
		status = output.StatusFail
	}

	r.Header(1, "Run "+run.ID)
	r.StatusLine("status", string(run.Status), status)
	r.StatusLine("records", strconv.Itoa(run.Stats.Total), output.StatusNone)
	r.StatusLine("mapped", strconv.Itoa(run.Stats.Mapped), output.StatusOK)
	failedStatus := output.StatusNone
	if run.Stats.Failed > 0 {
		failedStatus = output.StatusWarn
	}
	r.StatusLine("failed", strconv.Itoa(run.Stats.Failed), failedStatus)
	r.StatusLine("duration", elapsed.Round(time.Millisecond).String(), output.StatusNone)

	if len(errs) > 0 {
		r.Println()
		r.Header(2, "Failed records")
		rows := make([][]string, 0, len(errs))
		for _, e := range errs {
			rows = append(rows, []string{e.RecordID, e.Error})
		}
		r.Table([]string{"Record", "Error"}, rows)
	}
}
