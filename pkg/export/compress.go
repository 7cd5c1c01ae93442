package export

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
)

// SnappyExt is appended to the names of compressed artifacts
const SnappyExt = ".sz"

// Compress encodes data in the snappy framing format, which the snappy
// command line tools can stream.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress
func Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
}
