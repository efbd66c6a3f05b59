package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/regulumdb/regulumdb/internal/graph"
)

const (
	objectNode    = 0
	objectLiteral = 1
)

// Triple is a named triple as stored and imported.
type Triple struct {
	Subject   string
	Predicate string
	Object    graph.Object
}

// ImportResult reports what one Import call changed.
type ImportResult struct {
	ID    string // UUIDv7 of the import record
	Seq   int64
	Total int // triples offered
	Added int // triples not already present
}

// ImportRecord is one row of the import log.
type ImportRecord struct {
	Seq    int64
	ID     string
	Source string
	Total  int
	Added  int
}

// Stats counts the rows of each dictionary and of the triple table.
type Stats struct {
	Nodes      int
	Predicates int
	Literals   int
	Triples    int
	Imports    int
}

// Import adds triples in a single transaction. Triples already present are
// skipped, so importing the same file twice leaves the graph unchanged and
// records Added = 0.
func (s *Store) Import(ctx context.Context, source string, triples []Triple) (ImportResult, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return ImportResult{}, fmt.Errorf("generate import id: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, total) VALUES (?, ?, ?)`,
		id.String(), source, len(triples))
	if err != nil {
		return ImportResult{}, fmt.Errorf("record import: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return ImportResult{}, fmt.Errorf("record import: %w", err)
	}

	in, err := newInterner(ctx, tx)
	if err != nil {
		return ImportResult{}, err
	}
	defer in.close()

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO triples (subject_id, predicate_id, object_kind, object_id, import_seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return ImportResult{}, fmt.Errorf("prepare triple insert: %w", err)
	}
	defer insert.Close()

	added := 0
	for i, t := range triples {
		subj, err := in.node(ctx, t.Subject)
		if err != nil {
			return ImportResult{}, fmt.Errorf("triple %d: %w", i, err)
		}
		pred, err := in.predicate(ctx, t.Predicate)
		if err != nil {
			return ImportResult{}, fmt.Errorf("triple %d: %w", i, err)
		}
		kind, obj := objectNode, int64(0)
		if t.Object.IsValue {
			kind = objectLiteral
			obj, err = in.literal(ctx, t.Object.Value)
		} else {
			obj, err = in.node(ctx, t.Object.Node)
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("triple %d: %w", i, err)
		}

		r, err := insert.ExecContext(ctx, subj, pred, kind, obj, seq)
		if err != nil {
			return ImportResult{}, fmt.Errorf("triple %d: insert: %w", i, err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return ImportResult{}, fmt.Errorf("triple %d: insert: %w", i, err)
		}
		added += int(n)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE imports SET added = ? WHERE seq = ?`, added, seq); err != nil {
		return ImportResult{}, fmt.Errorf("record import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}

	return ImportResult{ID: id.String(), Seq: seq, Total: len(triples), Added: added}, nil
}

// snapshotQuery lists every triple by name. The ORDER BY makes the scan
// deterministic; ids are reassigned by the Builder anyway.
const snapshotQuery = `
	SELECT s.name, p.name, t.object_kind, COALESCE(n.name, ''), COALESCE(l.datatype, ''), COALESCE(l.lexical, '')
	FROM triples t
	JOIN nodes s ON s.id = t.subject_id
	JOIN predicates p ON p.id = t.predicate_id
	LEFT JOIN nodes n ON t.object_kind = 0 AND n.id = t.object_id
	LEFT JOIN literals l ON t.object_kind = 1 AND l.id = t.object_id
	ORDER BY s.name ASC, p.name ASC, t.object_kind ASC, n.name ASC, l.datatype ASC, l.lexical ASC
`

// Triples returns every stored triple, ordered by subject, predicate and
// object. Returns an empty slice (not nil) when the store is empty.
func (s *Store) Triples(ctx context.Context) ([]Triple, error) {
	rows, err := s.db.QueryContext(ctx, snapshotQuery)
	if err != nil {
		return nil, fmt.Errorf("query triples: %w", err)
	}
	defer rows.Close()

	triples := []Triple{}
	for rows.Next() {
		t, err := scanTriple(rows)
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triples: %w", err)
	}
	return triples, nil
}

// Snapshot builds an immutable layer from the stored triples. Two snapshots
// of the same triples are identical, ids included.
func (s *Store) Snapshot(ctx context.Context) (*graph.MemoryLayer, error) {
	triples, err := s.Triples(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLayer(triples), nil
}

// Referrers returns the triples whose object is the node name, ordered by
// predicate, then subject.
func (s *Store) Referrers(ctx context.Context, name string) ([]Triple, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, p.name
		FROM triples t
		JOIN nodes o ON o.id = t.object_id
		JOIN nodes s ON s.id = t.subject_id
		JOIN predicates p ON p.id = t.predicate_id
		WHERE t.object_kind = 0 AND o.name = ?
		ORDER BY p.name ASC, s.name ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query referrers of %q: %w", name, err)
	}
	defer rows.Close()

	triples := []Triple{}
	for rows.Next() {
		t := Triple{Object: graph.NodeObject(name)}
		if err := rows.Scan(&t.Subject, &t.Predicate); err != nil {
			return nil, fmt.Errorf("scan referrer: %w", err)
		}
		triples = append(triples, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referrers: %w", err)
	}
	return triples, nil
}

// Stats counts dictionary entries, triples and imports.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM nodes),
			(SELECT COUNT(*) FROM predicates),
			(SELECT COUNT(*) FROM literals),
			(SELECT COUNT(*) FROM triples),
			(SELECT COUNT(*) FROM imports)
	`).Scan(&st.Nodes, &st.Predicates, &st.Literals, &st.Triples, &st.Imports)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

// Imports returns the import log in sequence order.
func (s *Store) Imports(ctx context.Context) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, source, total, added
		FROM imports
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	records := []ImportRecord{}
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.Seq, &r.ID, &r.Source, &r.Total, &r.Added); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return records, nil
}

// BuildLayer feeds named triples into a graph.Builder.
func BuildLayer(triples []Triple) *graph.MemoryLayer {
	b := graph.NewBuilder()
	for _, t := range triples {
		if t.Object.IsValue {
			b.AddValue(t.Subject, t.Predicate, t.Object.Value)
		} else {
			b.AddNode(t.Subject, t.Predicate, t.Object.Node)
		}
	}
	return b.Build()
}

// LayerTriples lists a layer's triples by name in subject, predicate, object
// id order.
func LayerTriples(m *graph.MemoryLayer) []Triple {
	out := make([]Triple, 0, len(m.Triples()))
	for _, t := range m.Triples() {
		subj, _ := m.IDSubject(t.Subject)
		pred, _ := m.IDPredicate(t.Predicate)
		obj, ok := m.IDObject(t.Object)
		if !ok {
			panic(fmt.Sprintf("store: layer triple object %d has no name", t.Object))
		}
		out = append(out, Triple{Subject: subj, Predicate: pred, Object: obj})
	}
	return out
}

func scanTriple(rows *sql.Rows) (Triple, error) {
	var (
		t                       Triple
		kind                    int
		node, datatype, lexical string
	)
	if err := rows.Scan(&t.Subject, &t.Predicate, &kind, &node, &datatype, &lexical); err != nil {
		return Triple{}, fmt.Errorf("scan triple: %w", err)
	}
	if kind == objectLiteral {
		t.Object = graph.ValueObject(graph.Literal{Datatype: datatype, Lexical: lexical})
	} else {
		t.Object = graph.NodeObject(node)
	}
	return t, nil
}

// interner maps names and literals to dictionary ids within one transaction,
// caching what it has seen.
type interner struct {
	nodes    map[string]int64
	preds    map[string]int64
	literals map[graph.Literal]int64

	insNode, selNode *sql.Stmt
	insPred, selPred *sql.Stmt
	insLit, selLit   *sql.Stmt
}

func newInterner(ctx context.Context, tx *sql.Tx) (*interner, error) {
	in := &interner{
		nodes:    map[string]int64{},
		preds:    map[string]int64{},
		literals: map[graph.Literal]int64{},
	}
	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&in.insNode, `INSERT INTO nodes (name) VALUES (?) ON CONFLICT(name) DO NOTHING`},
		{&in.selNode, `SELECT id FROM nodes WHERE name = ?`},
		{&in.insPred, `INSERT INTO predicates (name) VALUES (?) ON CONFLICT(name) DO NOTHING`},
		{&in.selPred, `SELECT id FROM predicates WHERE name = ?`},
		{&in.insLit, `INSERT INTO literals (datatype, lexical) VALUES (?, ?) ON CONFLICT(datatype, lexical) DO NOTHING`},
		{&in.selLit, `SELECT id FROM literals WHERE datatype = ? AND lexical = ?`},
	}
	for _, st := range stmts {
		stmt, err := tx.PrepareContext(ctx, st.query)
		if err != nil {
			in.close()
			return nil, fmt.Errorf("prepare %q: %w", st.query, err)
		}
		*st.dst = stmt
	}
	return in, nil
}

func (in *interner) close() {
	for _, st := range []*sql.Stmt{in.insNode, in.selNode, in.insPred, in.selPred, in.insLit, in.selLit} {
		if st != nil {
			st.Close()
		}
	}
}

func (in *interner) node(ctx context.Context, name string) (int64, error) {
	return intern(ctx, in.nodes, name, in.insNode, in.selNode, name)
}

func (in *interner) predicate(ctx context.Context, name string) (int64, error) {
	return intern(ctx, in.preds, name, in.insPred, in.selPred, name)
}

func (in *interner) literal(ctx context.Context, l graph.Literal) (int64, error) {
	return intern(ctx, in.literals, l, in.insLit, in.selLit, l.Datatype, l.Lexical)
}

func intern[K comparable](ctx context.Context, cache map[K]int64, key K, ins, sel *sql.Stmt, args ...any) (int64, error) {
	if id, ok := cache[key]; ok {
		return id, nil
	}
	if _, err := ins.ExecContext(ctx, args...); err != nil {
		return 0, fmt.Errorf("intern %v: %w", key, err)
	}
	var id int64
	if err := sel.QueryRowContext(ctx, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("intern %v: %w", key, err)
	}
	cache[key] = id
	return id, nil
}
