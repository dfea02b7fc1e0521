package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Marshal encodes v (a [Document] or [Payload]) as indented JSON.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes v as indented JSON to w.
func Write(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes doc to path with 0644 permissions.
func WriteFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(doc, f)
}

// Read decodes an import document from r. See [Parse].
func Read(r io.Reader) (topology.Topology, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return topology.Topology{}, fmt.Errorf("read: %w", err)
	}
	return Parse(data)
}

// ReadFile decodes the import document at path. See [Parse].
func ReadFile(path string) (topology.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return topology.Topology{}, fmt.Errorf("open %s: %w", path, err)
	}
	return Parse(data)
}
