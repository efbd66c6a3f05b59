package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/path"
	"github.com/regulumdb/regulumdb/internal/queryexec"
)

// PathOptions holds flags for the path command.
type PathOptions struct {
	*RootOptions
	Database string
	Frames   string
	From     []string
}

// PathResult is the path command's payload.
type PathResult struct {
	Path    string   `json:"path"`
	From    []string `json:"from"`
	Reached []string `json:"reached"`
}

// NewPathCommand creates the path command.
func NewPathCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PathOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "path <expression>",
		Short: "Evaluate a path expression",
		Long: `Walk a path expression from one or more start nodes and print every
node it reaches, in first-reached order.

Syntax:
  pred      follow pred forward       <pred    follow pred backward
  .         any predicate             p,q      p then q
  p|q       either                    p+ p*    one or more, zero or more
  p{n,m}    between n and m times     (p)      grouping

Unlike query, no class filter is applied to the result.

Examples:
  regulum path --db ./library.db --frames ./frames.cue --from Book/hobbit author
  regulum path --db ./library.db --frames ./frames.cue --from Author/tolkien '<author,author'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd.Context(), opts, args[0], cmd)
		},
	}

	addSessionFlags(cmd, &opts.Database, &opts.Frames)
	cmd.Flags().StringSliceVar(&opts.From, "from", nil, "start node (repeatable, required)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func runPath(ctx context.Context, opts *PathOptions, expr string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := path.Parse(expr)
	if err != nil {
		return formatter.Fail(ExitCommandError, string(queryexec.ErrCodePathSyntax), err.Error())
	}

	s, err := openSession(ctx, opts.Database, opts.Frames, opts.Logger(cmd.ErrOrStderr()))
	if err != nil {
		code, msg := loadCode(err, ErrCodeStoreFailed)
		return formatter.Fail(ExitCommandError, code, msg)
	}
	defer s.Close()

	var seeds []graph.ID
	for _, name := range opts.From {
		id, ok := s.layer.SubjectID(s.frames.Context.ExpandInstance(name))
		if !ok {
			s.logger.Debug("start node not in graph", "node", name)
			continue
		}
		seeds = append(seeds, id)
	}

	walk := path.Compile(p, s.layer, s.frames.Context)
	result := PathResult{Path: expr, From: opts.From, Reached: []string{}}
	for id := range walk(slices.Values(seeds)) {
		result.Reached = append(result.Reached, s.instanceName(id))
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	for _, name := range result.Reached {
		fmt.Fprintln(formatter.Writer, name)
	}
	formatter.VerboseLog("%d node(s) reached", len(result.Reached))
	return nil
}
