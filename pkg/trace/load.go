package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Decode reads a document from r using the named encoding ("json" or
// "msgpack").
func Decode(r io.Reader, encoding string) (*Document, error) {
	var doc Document
	switch encoding {
	case "json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode trace: %w", err)
		}
	case "msgpack":
		if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode trace: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown trace encoding %q", encoding)
	}
	return &doc, nil
}

// Encode writes the document to w using the named encoding.
func (d *Document) Encode(w io.Writer, encoding string) error {
	switch encoding {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode trace: %w", err)
		}
	case "msgpack":
		if err := msgpack.NewEncoder(w).Encode(d); err != nil {
			return fmt.Errorf("failed to encode trace: %w", err)
		}
	default:
		return fmt.Errorf("unknown trace encoding %q", encoding)
	}
	return nil
}

// encodingForPath picks the wire encoding from the file extension.
// .json is JSON; .msgpack, .mp and .bin are msgpack.
func encodingForPath(path string) (string, error) {
	switch filepath.Ext(path) {
	case ".json":
		return "json", nil
	case ".msgpack", ".mp", ".bin":
		return "msgpack", nil
	default:
		return "", fmt.Errorf("cannot infer trace encoding from extension of %s", path)
	}
}

// Load reads a trace document from a file, picking the decoder from the
// file extension.
func Load(path string) (*Document, error) {
	encoding, err := encodingForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer f.Close()

	return Decode(f, encoding)
}

// Save writes a trace document to a file, picking the encoder from the
// file extension.
func (d *Document) Save(path string) error {
	encoding, err := encodingForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()

	return d.Encode(f, encoding)
}
