package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SchemaVersion is written by Export and is the only version Import accepts.
const SchemaVersion = 1

// Schema is the JSON document exchanged by `tempo export` and `tempo import`.
// Sessions reference tags by name; every referenced tag must be listed in Tags.
type Schema struct {
	Version  int             `json:"version"`
	Tags     []TagImport     `json:"tags"`
	Sessions []SessionImport `json:"sessions"`
}

type TagImport struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SessionImport mirrors the create-session request. Timestamps are RFC3339.
type SessionImport struct {
	Name      string  `json:"name"`
	Tag       string  `json:"tag"`
	Status    string  `json:"status,omitempty"`
	StartAt   string  `json:"start_at"`
	EndAt     *string `json:"end_at,omitempty"`
	BreakTime *int    `json:"break_time,omitempty"`
}

// LoadSchema reads and parses an import file.
func LoadSchema(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSchema(f)
}

// ParseSchema decodes a document, rejecting unknown fields.
func ParseSchema(r io.Reader) (*Schema, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var schema Schema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
