package graph

import "fmt"

type weightKind int

const (
	weightsDefault weightKind = iota
	weightsByName
	weightsByValue
	weightsNone
)

// WeightSpec selects where edge weights come from. The zero value looks up
// the "weight" attribute and falls back to an unweighted graph when the
// attribute is absent.
type WeightSpec struct {
	kind   weightKind
	name   string
	values []float64
}

// WeightsByName reads weights from the named edge attribute.
func WeightsByName(name string) WeightSpec {
	return WeightSpec{kind: weightsByName, name: name}
}

// WeightValues uses the given weights, one per edge in edge order.
func WeightValues(values []float64) WeightSpec {
	return WeightSpec{kind: weightsByValue, values: values}
}

// NoWeights ignores any weight information.
func NoWeights() WeightSpec {
	return WeightSpec{kind: weightsNone}
}

// String describes the weight selection for logs
func (w WeightSpec) String() string {
	switch w.kind {
	case weightsByName:
		return fmt.Sprintf("attribute %q", w.name)
	case weightsByValue:
		return fmt.Sprintf("%d explicit values", len(w.values))
	case weightsNone:
		return "unweighted"
	default:
		return fmt.Sprintf("attribute %q", DefaultWeightAttribute)
	}
}

// attributeName returns the attribute name used when an adjacency matrix is
// converted to an edge list.
func (w WeightSpec) attributeName() (string, error) {
	switch w.kind {
	case weightsDefault:
		return DefaultWeightAttribute, nil
	case weightsByName:
		return w.name, nil
	case weightsNone:
		return "", nil
	default:
		return "", &GraphError{Op: "Resolve", Index: -1, Cause: ErrWeightsNotName}
	}
}

// lookup resolves the weight selection against an edge attribute table. A nil result
// means the graph is unweighted.
func (w WeightSpec) lookup(attributes map[string][]float64, edgeCount int) ([]float64, error) {
	var weights []float64

	switch w.kind {
	case weightsNone:
		return nil, nil
	case weightsByValue:
		weights = w.values
	default:
		name := w.name
		if w.kind == weightsDefault {
			name = DefaultWeightAttribute
		}
		values, ok := attributes[name]
		if !ok {
			if name == DefaultWeightAttribute {
				return nil, nil
			}
			return nil, &GraphError{Op: "Resolve", Index: -1, Cause: ErrUnknownWeightAttribute,
				Context: fmt.Sprintf("%q", name)}
		}
		weights = values
	}

	if len(weights) != edgeCount {
		return nil, &GraphError{Op: "Resolve", Index: -1, Cause: ErrWeightCount,
			Context: fmt.Sprintf("%d weights for %d edges", len(weights), edgeCount)}
	}
	return weights, nil
}
