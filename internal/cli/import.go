package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/regulumdb/regulumdb/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	Frames   string
	List     bool // print the import log instead of importing
}

// ImportFileResult reports one imported dataset.
type ImportFileResult struct {
	Source string `json:"source"`
	ID     string `json:"id"`
	Seq    int64  `json:"seq"`
	Total  int    `json:"total"`
	Added  int    `json:"added"`
}

// StoreStats mirrors store.Stats for output.
type StoreStats struct {
	Nodes      int `json:"nodes"`
	Predicates int `json:"predicates"`
	Literals   int `json:"literals"`
	Triples    int `json:"triples"`
	Imports    int `json:"imports"`
}

// ImportResult is the import command's payload.
type ImportResult struct {
	Files []ImportFileResult `json:"files"`
	Stats StoreStats         `json:"stats"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <dataset.yaml>...",
		Short: "Import triple datasets into a store",
		Long: `Import YAML triple datasets into a SQLite store, creating it if needed.

Names in the datasets are expanded with the @context of the frames. Each
file is imported in one transaction; triples already present are skipped,
so importing a file twice adds nothing.

Examples:
  regulum import --db ./library.db --frames ./frames.cue books.yaml authors.yaml
  regulum import --db ./library.db --list`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Frames, "frames", "", "frame document supplying the @context")
	cmd.Flags().BoolVar(&opts.List, "list", false, "print the import log")

	return cmd
}

func runImport(ctx context.Context, opts *ImportOptions, files []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger(cmd.ErrOrStderr())

	if !opts.List {
		if len(files) == 0 {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "at least one dataset file is required")
		}
		if opts.Frames == "" {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--frames is required to import")
		}
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	if opts.List {
		return listImports(ctx, st, formatter)
	}

	frames, err := LoadFrames(opts.Frames)
	if err != nil {
		code, msg := loadCode(err, ErrCodeLoadFailed)
		return formatter.Fail(ExitCommandError, code, msg)
	}

	result := ImportResult{Files: make([]ImportFileResult, 0, len(files))}
	for _, file := range files {
		ds, err := store.LoadDataset(file)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error())
		}
		triples, err := ds.Resolve(frames.Context)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidDataset, fmt.Sprintf("%s: %v", file, err))
		}

		res, err := st.Import(ctx, filepath.Base(file), triples)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("%s: %v", file, err))
		}
		logger.Info("dataset imported", "source", file, "import", res.ID, "total", res.Total, "added", res.Added)
		result.Files = append(result.Files, ImportFileResult{
			Source: file,
			ID:     res.ID,
			Seq:    res.Seq,
			Total:  res.Total,
			Added:  res.Added,
		})
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
	}
	result.Stats = StoreStats(stats)

	if formatter.JSON() {
		return formatter.Success(result)
	}
	w := formatter.Writer
	for _, f := range result.Files {
		fmt.Fprintf(w, "✓ %s: %d triples, %d added\n", f.Source, f.Total, f.Added)
	}
	fmt.Fprintf(w, "\nStore: %d triples, %d nodes, %d literals, %d imports\n",
		stats.Triples, stats.Nodes, stats.Literals, stats.Imports)
	return nil
}

func listImports(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	records, err := st.Imports(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
	}

	files := make([]ImportFileResult, 0, len(records))
	for _, r := range records {
		files = append(files, ImportFileResult{Source: r.Source, ID: r.ID, Seq: r.Seq, Total: r.Total, Added: r.Added})
	}
	if formatter.JSON() {
		return formatter.Success(files)
	}

	if len(files) == 0 {
		fmt.Fprintln(formatter.Writer, "No imports recorded.")
		return nil
	}
	for _, f := range files {
		fmt.Fprintf(formatter.Writer, "%d\t%s\t%s\t%d/%d added\n", f.Seq, f.ID, f.Source, f.Added, f.Total)
	}
	return nil
}
