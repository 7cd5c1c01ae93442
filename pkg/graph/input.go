package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultWeightAttribute is the edge attribute consulted when no weight
// specification is given.
const DefaultWeightAttribute = "weight"

// symmetryTolerance decides when an adjacency matrix is treated as undirected
const symmetryTolerance = 1e-5

// Input is a graph as supplied by a caller: either a dense adjacency matrix
// or an explicit edge list. It is resolved once into a *Graph by Resolve.
type Input interface {
	resolve(w WeightSpec) (*Graph, error)
}

// DenseInput is a square adjacency matrix. Nonzero entries are edges.
type DenseInput struct {
	Matrix mat.Matrix
}

// EdgeInput is an edge-list graph with optional named per-edge attributes.
type EdgeInput struct {
	N          int
	Directed   bool
	Edges      [][2]int
	Attributes map[string][]float64
}

// Resolve converts an input into the canonical graph, applying the weight
// specification. All validation happens here, before any algorithmic work.
func Resolve(in Input, w WeightSpec) (*Graph, error) {
	if in == nil {
		return nil, ErrNilInput
	}
	return in.resolve(w)
}

// DenseFromRows builds a dense input from row slices. Ragged rows are a shape
// error.
func DenseFromRows(rows [][]float64) (DenseInput, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return DenseInput{}, &GraphError{Op: "DenseFromRows", Index: -1, Cause: ErrShape, Context: "empty"}
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return DenseInput{}, &GraphError{Op: "DenseFromRows", Index: i, Cause: ErrShape,
				Context: fmt.Sprintf("row has %d columns, expected %d", len(row), cols)}
		}
		data = append(data, row...)
	}
	return DenseInput{Matrix: mat.NewDense(len(rows), cols, data)}, nil
}

func (d DenseInput) resolve(w WeightSpec) (*Graph, error) {
	name, err := w.attributeName()
	if err != nil {
		return nil, err
	}

	edges, err := d.toEdgeInput(name)
	if err != nil {
		return nil, err
	}
	return edges.resolve(w)
}

// toEdgeInput converts the adjacency matrix into an edge list. The graph is
// weighted when any entry differs from 0 and 1, in which case the entries are
// stored under the attribute name. Symmetric matrices become undirected
// graphs built from the upper triangle.
func (d DenseInput) toEdgeInput(attribute string) (EdgeInput, error) {
	if d.Matrix == nil {
		return EdgeInput{}, &GraphError{Op: "Resolve", Index: -1, Cause: ErrShape, Context: "nil matrix"}
	}
	rows, cols := d.Matrix.Dims()
	if rows == 0 || rows != cols {
		return EdgeInput{}, &GraphError{Op: "Resolve", Index: -1, Cause: ErrShape,
			Context: fmt.Sprintf("%dx%d", rows, cols)}
	}
	n := rows

	symmetric := true
	weighted := false
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := d.Matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return EdgeInput{}, &GraphError{Op: "Resolve", Index: i, Cause: ErrNonFinite,
					Context: fmt.Sprintf("column %d", j)}
			}
			if v != 0 && v != 1 {
				weighted = true
			}
			if math.Abs(v-d.Matrix.At(j, i)) >= symmetryTolerance {
				symmetric = false
			}
		}
	}

	in := EdgeInput{N: n, Directed: !symmetric}
	var weights []float64
	for i := 0; i < n; i++ {
		start := 0
		if symmetric {
			start = i
		}
		for j := start; j < n; j++ {
			v := d.Matrix.At(i, j)
			if v == 0 {
				continue
			}
			in.Edges = append(in.Edges, [2]int{i, j})
			weights = append(weights, v)
		}
	}

	if weighted {
		in.Attributes = map[string][]float64{attribute: weights}
	}
	return in, nil
}

func (e EdgeInput) resolve(w WeightSpec) (*Graph, error) {
	weights, err := w.lookup(e.Attributes, len(e.Edges))
	if err != nil {
		return nil, err
	}

	edges := make([]Edge, len(e.Edges))
	for i, pair := range e.Edges {
		edges[i] = Edge{From: pair[0], To: pair[1]}
		if weights != nil {
			edges[i].Weight = weights[i]
		}
	}
	return New(e.N, e.Directed, edges, weights != nil)
}
