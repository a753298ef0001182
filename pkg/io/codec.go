package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a snapshot file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported snapshot file %q (want .json, .yaml or .yml)", path)
}

// Encode writes s to w in the given format.
func Encode(w io.Writer, s Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatYAML:
		return WriteYAML(w, s)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// Decode reads a snapshot in the given format from r.
func Decode(r io.Reader, f Format) (Snapshot, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return Snapshot{}, fmt.Errorf("unsupported format %q", f)
}

// WriteJSON encodes s as indented JSON.
func WriteJSON(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON snapshot. It does not validate the tree; use
// [Snapshot.Tree] for that. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// WriteYAML encodes s as YAML.
func WriteYAML(w io.Writer, s Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a YAML snapshot. ReadYAML does not close r.
func ReadYAML(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// ExportFile writes s to path, choosing the format from the extension.
func ExportFile(path string, s Snapshot) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(out, s, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ImportFile reads the snapshot at path, choosing the format from the
// extension. The result is decoded but not validated.
func ImportFile(path string) (Snapshot, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	in, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()
	return Decode(in, f)
}
