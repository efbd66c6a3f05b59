package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/regulumdb/regulumdb/internal/ir"
)

var (
	yes = ir.IRBool(true)
	no = ir.IRBool(false)
	null = ir.IRNull{}
)

func cells(values []ir.IRValue, index ...[]int) []ArrayElement {
	out := make([]ArrayElement, len(values))
	for i, v := range values {
		out[i] = ArrayElement{Index: index[i], Value: v}
	}
	return out
}

func TestCollectArray(t *testing.T) {
	tests := []struct {
		name     string
		elements []ArrayElement
		want     ir.IRArray
	}{
		{
			name:     "empty",
			elements: nil,
			want:     ir.IRArray{},
		},
		{
			name:     "single dimension",
			elements: cells([]ir.IRValue{yes, no, yes}, []int{0}, []int{1}, []int{2}),
			want:     ir.IRArray{yes, no, yes},
		},
		{
			name:     "start offset",
			elements: cells([]ir.IRValue{yes, no, yes}, []int{3}, []int{4}, []int{5}),
			want:     ir.IRArray{null, null, null, yes, no, yes},
		},
		{
			name:     "holes",
			elements: cells([]ir.IRValue{yes, no, yes}, []int{0}, []int{3}, []int{5}),
			want:     ir.IRArray{yes, null, null, no, null, yes},
		},
		{
			name:     "unsorted input",
			elements: cells([]ir.IRValue{yes, yes, no}, []int{2}, []int{0}, []int{1}),
			want:     ir.IRArray{yes, no, yes},
		},
		{
			name: "double dimension",
			elements: cells([]ir.IRValue{yes, no, yes, no, yes, no},
				[]int{0, 0}, []int{0, 1}, []int{0, 2},
				[]int{1, 0}, []int{1, 1}, []int{1, 2}),
			want: ir.IRArray{ir.IRArray{yes, no, yes}, ir.IRArray{no, yes, no}},
		},
		{
			name: "double dimension with offset",
			elements: cells([]ir.IRValue{yes, no, yes, no, yes, no},
				[]int{2, 3}, []int{2, 4}, []int{2, 5},
				[]int{3, 1}, []int{3, 2}, []int{3, 3}),
			want: ir.IRArray{
				null, null,
				ir.IRArray{null, null, null, yes, no, yes},
				ir.IRArray{null, no, yes, no},
			},
		},
		{
			name: "double dimension with holes",
			elements: cells([]ir.IRValue{yes, no, yes, no, yes, no, yes},
				[]int{0, 0}, []int{0, 3}, []int{0, 5},
				[]int{3, 0}, []int{3, 2}, []int{3, 4},
				[]int{6, 0}),
			want: ir.IRArray{
				ir.IRArray{yes, null, null, no, null, yes},
				null, null,
				ir.IRArray{no, null, yes, null, no},
				null, null,
				ir.IRArray{yes},
			},
		},
		{
			name: "three dimensions",
			elements: cells([]ir.IRValue{yes, no, yes},
				[]int{0, 0, 0}, []int{0, 1, 1}, []int{1, 0, 0}),
			want: ir.IRArray{
				ir.IRArray{ir.IRArray{yes}, ir.IRArray{null, no}},
				ir.IRArray{ir.IRArray{yes}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollectArray(tt.elements))
		})
	}
}

func TestCollectArrayDoesNotReorderInput(t *testing.T) {
	elements := cells([]ir.IRValue{yes, no}, []int{1}, []int{0})
	CollectArray(elements)
	assert.Equal(t, []int{1}, elements[0].Index)
}

func TestCollectArrayPanicsOnDimensionMismatch(t *testing.T) {
	elements := cells([]ir.IRValue{yes, no}, []int{0}, []int{0, 1})
	assert.Panics(t, func() { CollectArray(elements) })
}
