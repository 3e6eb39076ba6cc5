package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/backoffice/internal/app"
	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/export"
	"github.com/odyssey-erp/backoffice/internal/reports"
	"github.com/odyssey-erp/backoffice/jobs"
	"github.com/odyssey-erp/backoffice/report"
)

// runtime is what the subcommands need. It is built lazily so --help works
// without a reachable backend.
type runtime struct {
	service   *reports.Service
	renderer  *export.Renderer
	inspector jobs.QueueInspector
	exportDir string
	logger    *slog.Logger
}

type loader func(ctx context.Context) (*runtime, func(), error)

func main() {
	if err := newRootCmd(loadRuntime).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadRuntime(_ context.Context) (*runtime, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	var converter export.HTMLConverter
	if cfg.GotenbergURL != "" {
		converter = report.NewClient(cfg.GotenbergURL, 0)
	}
	sinks, err := export.DefaultSinks(converter, time.Now)
	if err != nil {
		return nil, nil, err
	}
	records := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	inspector := asynq.NewInspector(cfg.Redis().AsynqOpt())
	rt := &runtime{
		service:   reports.NewService(records, cfg.BackendUserID, time.Now),
		renderer:  export.NewRenderer(sinks...),
		inspector: inspector,
		exportDir: cfg.ExportDir,
		logger:    logger,
	}
	return rt, func() { _ = inspector.Close() }, nil
}

func newRootCmd(load loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Render back-office reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExportCmd(load), newQueueCmd(load))
	return root
}

type exportOpts struct {
	format   string
	start    string
	end      string
	customer string
	out      string
}

func newExportCmd(load loader) *cobra.Command {
	opts := &exportOpts{}
	cmd := &cobra.Command{
		Use:       "export <sales|ledger|products>",
		Short:     "Render a report into a directory",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{reports.KindSales, reports.KindLedger, reports.KindProducts},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			rt, closeFn, err := load(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			return runExport(ctx, rt, args[0], opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(export.FormatCSV), "Output format (print, csv, pdf, email, xlsx, print-pdf)")
	cmd.Flags().StringVar(&opts.start, "start", "", "Inclusive start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Inclusive end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.customer, "customer", "", "Customer id, required for the ledger")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output directory (defaults to EXPORT_DIR)")
	return cmd
}

func runExport(ctx context.Context, rt *runtime, kind string, opts *exportOpts, stdout io.Writer) error {
	format := export.Format(strings.ToLower(opts.format))
	if !rt.renderer.Supports(format) {
		return fmt.Errorf("unsupported format %q (have %v)", opts.format, rt.renderer.Formats())
	}
	rng, err := export.ParseDateRange(opts.start, opts.end)
	if err != nil {
		return err
	}
	built, err := rt.service.Build(ctx, kind, reports.Query{Range: rng, CustomerID: opts.customer, Format: format})
	if err != nil {
		return fmt.Errorf("build %s: %w", kind, err)
	}

	dir := opts.out
	if dir == "" {
		dir = rt.exportDir
	}
	target, err := export.NewDirTarget(dir, rt.logger)
	if err != nil {
		return err
	}
	if err := rt.renderer.Render(ctx, format, target, built.Table); err != nil {
		return err
	}
	for _, path := range target.Written() {
		fmt.Fprintln(stdout, path)
	}
	fmt.Fprintf(stdout, "%d of %d rows\n", built.Rows, built.Source)
	return nil
}

func newQueueCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the email job queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, closeFn, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			info, err := rt.inspector.GetQueueInfo(jobs.QueueDefault)
			if err != nil {
				return fmt.Errorf("inspect queue: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
				info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry, info.Failed)
			return nil
		},
	}
}
