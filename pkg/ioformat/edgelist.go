// Package ioformat reads and writes the plain-text formats used by the se2
// command: tab separated edge lists, numeric matrices and membership tables.
package ioformat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
)

// DefaultMaxNodes bounds the node count implied by the largest endpoint when
// EdgeListOptions.MaxNodes is zero.
const DefaultMaxNodes = 1 << 22

// EdgeListOptions controls how an edge list is interpreted
type EdgeListOptions struct {
	Directed bool
	Nodes    int  // minimum node count; the largest endpoint + 1 otherwise
	MaxNodes int  // endpoints must be below max(MaxNodes, Nodes); DefaultMaxNodes when zero
	Comma    rune // field separator, tab when zero
}

// ReadEdgeList parses one edge per record: source, target and optional
// numeric attribute columns. A first record whose endpoints are not integers
// is a header naming the columns; without a header a single attribute column
// is named "weight". Lines starting with '#' are ignored.
func ReadEdgeList(r io.Reader, opts EdgeListOptions) (graph.EdgeInput, error) {
	reader := newReader(r, opts.Comma)

	in := graph.EdgeInput{Directed: opts.Directed, N: opts.Nodes}
	limit := opts.MaxNodes
	if limit <= 0 {
		limit = DefaultMaxNodes
	}
	limit = max(limit, opts.Nodes)
	var names []string
	var columns [][]float64

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return graph.EdgeInput{}, &LineError{Line: line, Cause: fmt.Errorf("%w: %w", ErrParse, err)}
		}
		if len(record) < 2 {
			return graph.EdgeInput{}, &LineError{Line: line,
				Cause: fmt.Errorf("%w: %d columns, need at least 2", ErrColumnCount, len(record))}
		}

		from, errFrom := strconv.Atoi(record[0])
		to, errTo := strconv.Atoi(record[1])
		if names == nil {
			names = attributeNames(record, errFrom != nil || errTo != nil)
			columns = make([][]float64, len(names))
			if errFrom != nil || errTo != nil {
				continue
			}
		}
		if errFrom != nil || errTo != nil {
			return graph.EdgeInput{}, lineError(line, "endpoints %q and %q must be integers", record[0], record[1])
		}
		if from < 0 || to < 0 {
			return graph.EdgeInput{}, lineError(line, "negative endpoint in (%d, %d)", from, to)
		}
		if from >= limit || to >= limit {
			return graph.EdgeInput{}, lineError(line, "endpoint in (%d, %d) exceeds the %d node limit", from, to, limit)
		}
		if len(record)-2 != len(names) {
			return graph.EdgeInput{}, &LineError{Line: line,
				Cause: fmt.Errorf("%w: %d attribute columns, expected %d", ErrColumnCount, len(record)-2, len(names))}
		}

		for c, field := range record[2:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return graph.EdgeInput{}, lineError(line, "attribute %s: %v", names[c], err)
			}
			columns[c] = append(columns[c], v)
		}

		in.Edges = append(in.Edges, [2]int{from, to})
		in.N = max(in.N, from+1, to+1)
	}

	if len(names) > 0 {
		in.Attributes = make(map[string][]float64, len(names))
		for c, name := range names {
			in.Attributes[name] = columns[c]
		}
	}
	return in, nil
}

func attributeNames(record []string, header bool) []string {
	names := make([]string, 0, len(record)-2)
	for c := 2; c < len(record); c++ {
		switch {
		case header:
			names = append(names, record[c])
		case c == 2:
			names = append(names, graph.DefaultWeightAttribute)
		default:
			names = append(names, "attr"+strconv.Itoa(c-2))
		}
	}
	return names
}

// WriteEdgeList writes g with a header row; weighted graphs get a weight
// column.
func WriteEdgeList(w io.Writer, g *graph.Graph) (retErr error) {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	defer func() {
		writer.Flush()
		if err := writer.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("edge list flush error: %w", err)
		}
	}()

	header := []string{"from", "to"}
	if g.Weighted {
		header = append(header, graph.DefaultWeightAttribute)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write edge list header: %w", err)
	}

	for _, e := range g.Edges {
		record := []string{strconv.Itoa(e.From), strconv.Itoa(e.To)}
		if g.Weighted {
			record = append(record, strconv.FormatFloat(e.Weight, 'g', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write edge: %w", err)
		}
	}
	return nil
}

func newReader(r io.Reader, comma rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	if comma != 0 {
		reader.Comma = comma
	}
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}
