package document

import (
	"fmt"
	"slices"

	"github.com/regulumdb/regulumdb/internal/ir"
)

// ArrayElement is one cell of a multi-dimensional array. Index is ordered
// most significant dimension first.
type ArrayElement struct {
	Index []int
	Value ir.IRValue
}

func compareIndex(a, b ArrayElement) int {
	return slices.Compare(a.Index, b.Index)
}

// CollectArray folds index-tagged cells into nested arrays. Cells are sorted
// by index; unseen positions before a present cell become null, so holes
// never shift later values. Trailing positions are not padded.
//
// Every element must have the same number of dimensions. A mismatch means
// the traversal produced a corrupt cell set and panics.
func CollectArray(elements []ArrayElement) ir.IRArray {
	if len(elements) == 0 {
		return ir.IRArray{}
	}
	elements = slices.Clone(elements)
	slices.SortStableFunc(elements, compareIndex)

	dims := len(elements[0].Index)
	if dims == 0 {
		panic("document: array element without index")
	}
	// collect[d] accumulates the current run of dimension d.
	collect := make([]ir.IRArray, dims)

	for _, el := range elements {
		if len(el.Index) != dims {
			panic(fmt.Sprintf("document: array element has %d dimensions, expected %d", len(el.Index), dims))
		}

		for d := 0; d < dims; d++ {
			if len(collect[d]) >= el.Index[d] {
				continue
			}
			// Moving forward in dimension d closes every deeper run.
			for n := dims - 1; n > d; n-- {
				if len(collect[n]) != 0 {
					collect[n-1] = append(collect[n-1], collect[n])
					collect[n] = nil
				}
			}
			for len(collect[d]) < el.Index[d] {
				collect[d] = append(collect[d], ir.IRNull{})
			}
		}

		collect[dims-1] = append(collect[dims-1], el.Value)
	}

	for d := dims - 1; d > 0; d-- {
		if len(collect[d]) != 0 {
			collect[d-1] = append(collect[d-1], collect[d])
		}
	}
	if collect[0] == nil {
		return ir.IRArray{}
	}
	return collect[0]
}
