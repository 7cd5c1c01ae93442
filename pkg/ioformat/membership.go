package ioformat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

// WriteHierarchy writes one row per node: the node index followed by its
// label at every level. The header is "node level0 level1 ...".
func WriteHierarchy(w io.Writer, h partition.Hierarchy) (retErr error) {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	defer func() {
		writer.Flush()
		if err := writer.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("membership flush error: %w", err)
		}
	}()

	header := []string{"node"}
	for lvl := range h {
		header = append(header, "level"+strconv.Itoa(lvl))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write membership header: %w", err)
	}

	n := len(h.Top())
	record := make([]string, len(h)+1)
	for i := 0; i < n; i++ {
		record[0] = strconv.Itoa(i)
		for lvl, m := range h {
			record[lvl+1] = strconv.Itoa(m[i])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write membership row: %w", err)
		}
	}
	return nil
}

// ReadHierarchy parses the table written by WriteHierarchy. Rows may come in
// any order but must cover nodes 0..n-1 exactly once.
func ReadHierarchy(r io.Reader) (partition.Hierarchy, error) {
	reader := newReader(r, '\t')

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LineError{Cause: ErrEmpty}
	}
	if err != nil {
		return nil, &LineError{Line: 1, Cause: fmt.Errorf("%w: %w", ErrParse, err)}
	}
	levels := len(header) - 1
	if levels < 1 {
		return nil, &LineError{Line: 1, Cause: fmt.Errorf("%w: header needs a node column and at least one level", ErrColumnCount)}
	}

	rows := make(map[int][]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LineError{Line: line, Cause: fmt.Errorf("%w: %w", ErrParse, err)}
		}
		if len(record) != levels+1 {
			return nil, &LineError{Line: line,
				Cause: fmt.Errorf("%w: %d columns, expected %d", ErrColumnCount, len(record), levels+1)}
		}

		values := make([]int, len(record))
		for c, field := range record {
			if values[c], err = strconv.Atoi(field); err != nil {
				return nil, lineError(line, "column %d: %v", c+1, err)
			}
		}
		node := values[0]
		if _, dup := rows[node]; dup || node < 0 {
			return nil, lineError(line, "node %d is negative or repeated", node)
		}
		rows[node] = values[1:]
	}

	n := len(rows)
	h := make(partition.Hierarchy, levels)
	for lvl := range h {
		h[lvl] = make(partition.Membership, n)
	}
	for node, labels := range rows {
		if node >= n {
			return nil, lineError(0, "node %d out of range for %d rows", node, n)
		}
		for lvl, l := range labels {
			h[lvl][node] = l
		}
	}
	if err := h.Validate(n); err != nil {
		return nil, &LineError{Cause: fmt.Errorf("%w: %w", ErrParse, err)}
	}
	return h, nil
}
