package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regulumdb/regulumdb/internal/document"
	"github.com/regulumdb/regulumdb/internal/ir"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database  string
	Frames    string
	Types     []string
	Skip      int
	Count     int // negative means no limit
	Parallel  bool
	Workers   int
	NoUnfold  bool
	Minimized bool
	Metrics   bool
}

// ExportResult is the export command's JSON payload.
type ExportResult struct {
	Count     int               `json:"count"`
	Digest    string            `json:"digest"`
	Documents []json.RawMessage `json:"documents"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Stream every document of a store",
		Long: `Materialize every document of the selected types, in a stable order.

Types are enumerated in id order and, within a type, subjects in id order.
--skip and --count window that list. --parallel materializes on a worker
pool but emits in the same order, so both modes print the same digest.

Examples:
  regulum export --db ./library.db --frames ./frames.cue
  regulum export --db ./library.db --frames ./frames.cue --type Book --minimized
  regulum export --db ./library.db --frames ./frames.cue --parallel --workers 8 --metrics`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd)
		},
	}

	addSessionFlags(cmd, &opts.Database, &opts.Frames)
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "class to export (repeatable; default all document types)")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "documents to skip")
	cmd.Flags().IntVar(&opts.Count, "count", -1, "maximum documents to emit (-1 for all)")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "materialize on a worker pool")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker count for --parallel (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.NoUnfold, "no-unfold", false, "render sub-documents as references")
	cmd.Flags().BoolVar(&opts.Minimized, "minimized", false, "one compact JSON document per line")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print metrics to stderr when done")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger(cmd.ErrOrStderr())

	s, err := openSession(ctx, opts.Database, opts.Frames, logger)
	if err != nil {
		code, msg := loadCode(err, ErrCodeStoreFailed)
		return formatter.Fail(ExitCommandError, code, msg)
	}
	defer s.Close()

	cm, err := newCommandMetrics()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	m := document.NewMaterializer(s.layer, s.frames, document.Options{Unfold: !opts.NoUnfold, Compress: true})
	streamer := document.NewStreamer(m, s.frames,
		document.WithWorkers(opts.Workers),
		document.WithMetrics(cm.metrics),
		document.WithLogger(logger),
	)

	sel := document.Selection{Types: opts.Types, Skip: opts.Skip}
	if opts.Count >= 0 {
		sel.Count = &opts.Count
	}

	result := ExportResult{Documents: []json.RawMessage{}}
	var digests []string
	emit := func(doc *ir.IRObject) error {
		d, err := ir.DocumentDigest(doc)
		if err != nil {
			return err
		}
		digests = append(digests, d)

		data, err := renderDocument(doc, opts.Minimized || formatter.JSON())
		if err != nil {
			return err
		}
		if formatter.JSON() {
			result.Documents = append(result.Documents, data)
			return nil
		}
		_, err = fmt.Fprintf(formatter.Writer, "%s\n", data)
		return err
	}

	if opts.Parallel {
		err = streamer.StreamAllParallel(ctx, sel, emit)
	} else {
		err = streamer.StreamAll(ctx, sel, emit)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("export failed: %v", err))
	}

	result.Count = len(digests)
	result.Digest = ir.ExportDigest(digests)
	formatter.VerboseLog("exported %d document(s), digest %s", result.Count, result.Digest)

	if opts.Metrics {
		if err := cm.write(formatter.GetErrWriter()); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	return nil
}
