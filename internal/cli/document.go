package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regulumdb/regulumdb/internal/document"
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/ir"
)

// DocOptions holds flags for the doc command.
type DocOptions struct {
	*RootOptions
	Database   string
	Frames     string
	NoUnfold   bool
	NoCompress bool
	Minimized  bool
	Referrers  bool
}

// DocResult is one document in the doc command's payload.
type DocResult struct {
	ID        string          `json:"id"`
	Document  json.RawMessage `json:"document"`
	Referrers []Referrer      `json:"referrers,omitempty"`
}

// Referrer is a triple pointing at a document.
type Referrer struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
}

// NewDocCommand creates the doc command.
func NewDocCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "doc <id>...",
		Short: "Materialize documents by id",
		Long: `Materialize one or more documents from a store as JSON.

Ids are instance names, prefixed or absolute. Sub-documents are embedded
unless --no-unfold is given; ids and field names are contracted unless
--no-compress is given.

Examples:
  regulum doc --db ./library.db --frames ./frames.cue Book/hobbit
  regulum doc --db ./library.db --frames ./frames.cue --minimized Book/hobbit Book/letters
  regulum doc --db ./library.db --frames ./frames.cue --referrers Author/tolkien`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoc(cmd.Context(), opts, args, cmd)
		},
	}

	addSessionFlags(cmd, &opts.Database, &opts.Frames)
	cmd.Flags().BoolVar(&opts.NoUnfold, "no-unfold", false, "render sub-documents as references")
	cmd.Flags().BoolVar(&opts.NoCompress, "no-compress", false, "keep full IRIs")
	cmd.Flags().BoolVar(&opts.Minimized, "minimized", false, "compact JSON output")
	cmd.Flags().BoolVar(&opts.Referrers, "referrers", false, "list the triples pointing at each document")

	return cmd
}

// addSessionFlags registers the --db and --frames flags every read command
// takes.
func addSessionFlags(cmd *cobra.Command, db, frames *string) {
	cmd.Flags().StringVar(db, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(frames, "frames", "", "frame document, file or CUE directory (required)")
	_ = cmd.MarkFlagRequired("frames")
}

func runDoc(ctx context.Context, opts *DocOptions, ids []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openSession(ctx, opts.Database, opts.Frames, opts.Logger(cmd.ErrOrStderr()))
	if err != nil {
		code, msg := loadCode(err, ErrCodeStoreFailed)
		return formatter.Fail(ExitCommandError, code, msg)
	}
	defer s.Close()

	m := document.NewMaterializer(s.layer, s.frames, document.Options{
		Unfold:   !opts.NoUnfold,
		Compress: !opts.NoCompress,
	})

	results := make([]DocResult, 0, len(ids))
	for _, id := range ids {
		iri := s.frames.Context.ExpandInstance(id)
		doc, ok := m.GetDocument(iri)
		if !ok {
			return formatter.Fail(ExitFailure, ErrCodeNoDocument, fmt.Sprintf("no document %s", id))
		}
		data, err := renderDocument(doc, opts.Minimized)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error())
		}

		res := DocResult{ID: id, Document: data}
		if opts.Referrers {
			if res.Referrers, err = s.referrers(ctx, iri); err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
			}
		}
		results = append(results, res)
	}

	if formatter.JSON() {
		return formatter.Success(results)
	}
	w := formatter.Writer
	for _, res := range results {
		fmt.Fprintf(w, "%s\n", res.Document)
		for _, r := range res.Referrers {
			fmt.Fprintf(w, "  <- %s %s\n", r.Subject, r.Predicate)
		}
	}
	return nil
}

func (s *session) referrers(ctx context.Context, iri string) ([]Referrer, error) {
	triples, err := s.st.Referrers(ctx, iri)
	if err != nil {
		return nil, err
	}
	out := make([]Referrer, 0, len(triples))
	for _, t := range triples {
		if t.Predicate == graph.RDFType {
			continue
		}
		out = append(out, Referrer{
			Subject:   s.frames.Context.ContractInstance(t.Subject),
			Predicate: s.frames.Context.ContractSchema(t.Predicate),
		})
	}
	return out, nil
}

// renderDocument writes doc as canonical JSON, indented unless minimized.
func renderDocument(doc ir.IRValue, minimized bool) ([]byte, error) {
	data, err := ir.MarshalCanonical(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	if minimized {
		return data, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent document: %w", err)
	}
	return buf.Bytes(), nil
}
