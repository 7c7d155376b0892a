// Package manifest reads and writes the JSON array of method records.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
)

// Encode renders records as one JSON array followed by a newline. A nil
// slice encodes as [].
func Encode(records []*ir.MethodRecord, pretty bool) ([]byte, error) {
	if records == nil {
		records = []*ir.MethodRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes records and emits them with a single write.
func Write(w io.Writer, records []*ir.MethodRecord, pretty bool) error {
	data, err := Encode(records, pretty)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Decode parses a manifest.
func Decode(data []byte) ([]*ir.MethodRecord, error) {
	var records []*ir.MethodRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("decode manifest: record %d is null", i)
		}
		if r.Params == nil {
			r.Params = []*ir.ParamRecord{}
		}
	}
	if records == nil {
		records = []*ir.MethodRecord{}
	}
	return records, nil
}

// ReadFile loads a manifest from disk.
func ReadFile(path string) ([]*ir.MethodRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(data)
}
