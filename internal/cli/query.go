package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regulumdb/regulumdb/internal/document"
	"github.com/regulumdb/regulumdb/internal/gqlinput"
	"github.com/regulumdb/regulumdb/internal/querycompile"
	"github.com/regulumdb/regulumdb/internal/queryexec"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database  string
	Frames    string
	Class     string
	Filter    string
	OrderBy   string
	ID        string
	IDs       []string
	Path      string
	Offset    int
	Limit     int // negative means no limit
	Documents bool
	Metrics   bool
}

// QueryResult is the query command's payload.
type QueryResult struct {
	Class     string            `json:"class"`
	IDs       []string          `json:"ids"`
	Documents []json.RawMessage `json:"documents,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find instances of a class",
		Long: `Find the instances of a class that match a filter.

--filter and --order-by take GraphQL input literals, written the way a client
sends them. --id or --ids seed the query with known instances; --path then
walks from the seed and keeps the instances of --class it reaches.

Exit codes:
  0 - Query ran (possibly with no results)
  2 - Invalid query: unparsable literal, filter that does not compile,
      or a query error (E201-E206)

Examples:
  regulum query --db ./library.db --frames ./frames.cue --class Book \
      --filter '{genre: {eq: fiction}}' --order-by '{pages: DESC}'
  regulum query --db ./library.db --frames ./frames.cue --class Book \
      --id Author/tolkien --path '<author'
  regulum query --db ./library.db --frames ./frames.cue --class Book --limit 10 --documents`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd)
		},
	}

	addSessionFlags(cmd, &opts.Database, &opts.Frames)
	cmd.Flags().StringVar(&opts.Class, "class", "", "queried class (required)")
	_ = cmd.MarkFlagRequired("class")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter literal, e.g. '{title: {eq: \"x\"}}'")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "ordering literal, e.g. '{pages: DESC}'")
	cmd.Flags().StringVar(&opts.ID, "id", "", "seed instance")
	cmd.Flags().StringSliceVar(&opts.IDs, "ids", nil, "seed instances")
	cmd.Flags().StringVar(&opts.Path, "path", "", "path expression walked from the seed")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "results to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "maximum results (-1 for all)")
	cmd.Flags().BoolVar(&opts.Documents, "documents", false, "materialize each result")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print metrics to stderr when done")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command) error {
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

	req, err := buildRequest(s, opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, queryErrorCode(err), err.Error())
	}

	cm, err := newCommandMetrics()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	exec := queryexec.New(s.layer, s.frames,
		queryexec.WithMetrics(cm.metrics),
		queryexec.WithLogger(logger),
	)

	ids, err := exec.Run(ctx, req)
	if err != nil {
		return formatter.Fail(ExitCommandError, queryErrorCode(err), err.Error())
	}

	result := QueryResult{Class: opts.Class, IDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		result.IDs = append(result.IDs, s.instanceName(id))
	}

	if opts.Documents {
		m := document.NewMaterializer(s.layer, s.frames, document.DefaultOptions())
		for _, id := range ids {
			doc, ok := m.Materialize(id)
			if !ok {
				continue
			}
			data, err := renderDocument(doc, true)
			if err != nil {
				return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error())
			}
			result.Documents = append(result.Documents, data)
		}
	}

	if opts.Metrics {
		if err := cm.write(formatter.GetErrWriter()); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	w := formatter.Writer
	if opts.Documents {
		for _, doc := range result.Documents {
			fmt.Fprintf(w, "%s\n", doc)
		}
		return nil
	}
	for _, id := range result.IDs {
		fmt.Fprintln(w, id)
	}
	formatter.VerboseLog("%d result(s)", len(result.IDs))
	return nil
}

// buildRequest parses and compiles the filter and ordering literals.
func buildRequest(s *session, opts *QueryOptions) (queryexec.Request, error) {
	req := queryexec.Request{
		Class:  opts.Class,
		ID:     opts.ID,
		IDs:    opts.IDs,
		Path:   opts.Path,
		Offset: opts.Offset,
	}
	if opts.Limit >= 0 {
		req.Limit = &opts.Limit
	}

	if opts.Filter != "" {
		input, err := gqlinput.Parse(opts.Filter)
		if err != nil {
			return req, fmt.Errorf("--filter: %w", err)
		}
		if req.Filter, err = querycompile.CompileFilter(s.frames, opts.Class, input); err != nil {
			return req, err
		}
	}
	if opts.OrderBy != "" {
		input, err := gqlinput.Parse(opts.OrderBy)
		if err != nil {
			return req, fmt.Errorf("--order-by: %w", err)
		}
		if req.OrderBy, err = querycompile.CompileOrderBy(input); err != nil {
			return req, err
		}
	}
	return req, nil
}

// queryErrorCode maps a query failure to its response code. Executor errors
// keep their own codes.
func queryErrorCode(err error) string {
	var qe *queryexec.QueryError
	if errors.As(err, &qe) {
		return string(qe.Code)
	}
	return ErrCodeInvalidInput
}
