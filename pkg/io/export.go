package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteJSON encodes a document as indented JSON and writes it to w.
// Key order is fixed, so identical documents produce identical bytes.
// The output can be read back with [ReadJSON].
func WriteJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(doc)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a document to a JSON file at path, replacing any
// existing file.
func ExportJSON(doc *Document, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(doc, w) })
}

// WriteYAML encodes a document as YAML. It carries the same fields as
// the JSON form.
func WriteYAML(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toWire(doc)); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

// ExportYAML writes a document to a YAML file at path.
func ExportYAML(doc *Document, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteYAML(doc, w) })
}

// WriteText writes s to a file at path, replacing any existing file.
func WriteText(path, s string) error {
	return exportFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// WriteBytes writes b to a file at path, replacing any existing file.
func WriteBytes(path string, b []byte) error {
	return exportFile(path, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
