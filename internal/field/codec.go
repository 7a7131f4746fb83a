package field

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
)

// Encode serializes f as a gob stream compressed with gzip.
func Encode(f *Field) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(f); err != nil {
		gz.Close()
		return nil, fmt.Errorf("encoding field: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode and validates the result.
func Decode(blob []byte) (*Field, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty field blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var f Field
	if err := gob.NewDecoder(gz).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode field: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
