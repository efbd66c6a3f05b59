package document

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/regulumdb/regulumdb/internal/ir"
	"github.com/regulumdb/regulumdb/internal/metric"
	"github.com/regulumdb/regulumdb/internal/testutil"
)

func libraryStreamer(opts ...StreamerOption) *Streamer {
	return NewStreamer(libraryMaterializer(DefaultOptions()), testutil.LibraryFrames(), opts...)
}

func docIDs(t *testing.T, docs []*ir.IRObject) []string {
	t.Helper()
	out := make([]string, len(docs))
	for i, d := range docs {
		id, ok := d.Get("@id")
		require.True(t, ok)
		out[i] = string(id.(ir.IRString))
	}
	return out
}

func intPtr(n int) *int { return &n }

func TestEntities(t *testing.T) {
	s := libraryStreamer(WithWorkers(1))

	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{
			name: "all document types",
			want: []string{
				"Author/anon", "Author/pratchett", "Author/tolkien",
				"Book/beowulf", "Book/hobbit", "Book/letters",
				"Novel/colour", "Series/discworld",
			},
		},
		{
			name: "one type excludes subtypes",
			sel:  Selection{Types: []string{"Book"}},
			want: []string{"Book/beowulf", "Book/hobbit", "Book/letters"},
		},
		{
			name: "skip and count",
			sel:  Selection{Skip: 2, Count: intPtr(3)},
			want: []string{"Author/tolkien", "Book/beowulf", "Book/hobbit"},
		},
		{
			name: "skip past the end",
			sel:  Selection{Skip: 100},
			want: nil,
		},
		{
			name: "zero count",
			sel:  Selection{Count: intPtr(0)},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.MaterializeAll(context.Background(), tt.sel)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, docs)
				return
			}
			assert.Equal(t, tt.want, docIDs(t, docs))
		})
	}
}

func TestEntitiesWithoutUnfoldIncludesSubdocumentTypes(t *testing.T) {
	m := libraryMaterializer(Options{Unfold: false, Compress: true})
	s := NewStreamer(m, testutil.LibraryFrames())

	docs, err := s.MaterializeAll(context.Background(), Selection{})
	require.NoError(t, err)
	assert.Contains(t, docIDs(t, docs), "Author/tolkien/Address/home")
}

func TestEntitiesUnknownClass(t *testing.T) {
	s := libraryStreamer()
	_, err := s.Entities(Selection{Types: []string{"Magazine"}})
	assert.ErrorContains(t, err, `unknown class "Magazine"`)
}

func TestParallelMatchesSequential(t *testing.T) {
	sequential := libraryStreamer(WithWorkers(1))
	var want [][]byte
	require.NoError(t, sequential.StreamAll(context.Background(), Selection{}, func(doc *ir.IRObject) error {
		want = append(want, canonical(t, doc))
		return nil
	}))
	require.Len(t, want, 8)

	for _, workers := range []int{2, 3, 8, 32} {
		parallel := libraryStreamer(WithWorkers(workers))
		for run := 0; run < 5; run++ {
			var got [][]byte
			require.NoError(t, parallel.StreamAllParallel(context.Background(), Selection{}, func(doc *ir.IRObject) error {
				got = append(got, canonical(t, doc))
				return nil
			}))
			assert.Equal(t, want, got, "workers=%d run=%d", workers, run)
		}
	}
}

func TestParallelEmitError(t *testing.T) {
	s := libraryStreamer(WithWorkers(4))
	stop := errors.New("stop")

	var emitted int
	err := s.StreamAllParallel(context.Background(), Selection{}, func(*ir.IRObject) error {
		emitted++
		if emitted == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, emitted)
}

func TestStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := libraryStreamer(WithWorkers(1))
	err := s.StreamAll(ctx, Selection{}, func(*ir.IRObject) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamerTelemetry(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	m, err := metric.Register(prometheus.NewRegistry())
	require.NoError(t, err)

	s := libraryStreamer(WithWorkers(4), WithTracer(tp.Tracer("test")), WithMetrics(m))
	docs, err := s.MaterializeAll(context.Background(), Selection{Types: []string{"Author"}})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "document.StreamAllParallel", spans[0].Name())

	assert.Equal(t, 3.0, promtest.ToFloat64(m.DocumentsMaterialized.WithLabelValues(metric.ModeParallel)))
	assert.GreaterOrEqual(t, promtest.ToFloat64(m.ReorderBufferPeak), 1.0)
}

func TestReorderBuffer(t *testing.T) {
	var b reorderBuffer

	assert.Empty(t, b.add(indexed{index: 2}))
	assert.Empty(t, b.add(indexed{index: 1}))
	ready := b.add(indexed{index: 0})
	require.Len(t, ready, 3)
	for i, r := range ready {
		assert.Equal(t, i, r.index)
	}
	assert.Equal(t, 3, b.peak)
	assert.NotPanics(t, b.finish)

	assert.Panics(t, func() { b.add(indexed{index: 1}) }, "duplicate delivery")

	var gap reorderBuffer
	gap.add(indexed{index: 1})
	assert.Panics(t, gap.finish, "lost result")
}
