package ioformat

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ReadMatrix parses a dense numeric matrix, one row per record. The default
// separator is a comma. All rows must have the same length.
func ReadMatrix(r io.Reader, comma rune) (*mat.Dense, error) {
	if comma == 0 {
		comma = ','
	}
	reader := newReader(r, comma)

	var data []float64
	rows, cols := 0, 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LineError{Line: line, Cause: fmt.Errorf("%w: %w", ErrParse, err)}
		}
		if rows == 0 {
			cols = len(record)
		} else if len(record) != cols {
			return nil, &LineError{Line: line,
				Cause: fmt.Errorf("%w: %d columns, expected %d", ErrColumnCount, len(record), cols)}
		}

		for c, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, lineError(line, "column %d: %v", c+1, err)
			}
			data = append(data, v)
		}
		rows++
	}

	if rows == 0 || cols == 0 {
		return nil, &LineError{Cause: ErrEmpty}
	}
	return mat.NewDense(rows, cols, data), nil
}

// WriteMatrix writes m as comma separated rows.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()
	buf := make([]byte, 0, 64)
	for i := 0; i < rows; i++ {
		buf = buf[:0]
		for j := 0; j < cols; j++ {
			if j > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendFloat(buf, m.At(i, j), 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
