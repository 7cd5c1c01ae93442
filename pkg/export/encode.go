package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-speakeasy2/pkg/ioformat"
)

// Format is an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTSV  Format = "tsv"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNothingToTSV  = errors.New("document has neither levels nor orderings")
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML, FormatTSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext returns the file extension for the format
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes doc to w. TSV carries only the orderings when present and
// the levels otherwise.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return err
		}
		return encoder.Close()
	case FormatTSV:
		if len(doc.Orderings) > 0 {
			return writeOrderings(w, doc.Orderings)
		}
		if len(doc.Levels) > 0 {
			return ioformat.WriteHierarchy(w, doc.Hierarchy())
		}
		return ErrNothingToTSV
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode reads a JSON or YAML document
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: cannot decode %q", ErrUnknownFormat, format)
	}
	return &doc, nil
}

// writeOrderings writes one row per position with the node at that
// position for every level.
func writeOrderings(w io.Writer, orders [][]int) (retErr error) {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	defer func() {
		writer.Flush()
		if err := writer.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("ordering flush error: %w", err)
		}
	}()

	header := []string{"position"}
	for lvl := range orders {
		header = append(header, "level"+strconv.Itoa(lvl))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write ordering header: %w", err)
	}

	record := make([]string, len(orders)+1)
	for pos := range orders[0] {
		record[0] = strconv.Itoa(pos)
		for lvl, order := range orders {
			record[lvl+1] = strconv.Itoa(order[pos])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write ordering row: %w", err)
		}
	}
	return nil
}
