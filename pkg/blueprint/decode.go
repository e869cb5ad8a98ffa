package blueprint

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

// Read decodes a JSON blueprint from r. Unknown fields are ignored and a
// missing view defaults to front. The result is not validated.
func Read(r io.Reader) (*Blueprint, error) {
	var bp Blueprint
	if err := json.NewDecoder(r).Decode(&bp); err != nil {
		return nil, bperrors.Wrap(bperrors.ErrCodeInvalidBlueprint, err, "decode blueprint json")
	}
	bp.applyDefaults()
	return &bp, nil
}

// ReadYAML decodes a YAML blueprint from r using the same field names as JSON.
func ReadYAML(r io.Reader) (*Blueprint, error) {
	var bp Blueprint
	if err := yaml.NewDecoder(r).Decode(&bp); err != nil {
		if err == io.EOF {
			return nil, bperrors.New(bperrors.ErrCodeInvalidBlueprint, "empty yaml document")
		}
		return nil, bperrors.Wrap(bperrors.ErrCodeInvalidBlueprint, err, "decode blueprint yaml")
	}
	bp.applyDefaults()
	return &bp, nil
}

// Parse decodes data, choosing YAML when it does not look like JSON.
func Parse(data []byte) (*Blueprint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return Read(bytes.NewReader(trimmed))
	}
	return ReadYAML(bytes.NewReader(trimmed))
}

// ReadFile loads a blueprint from disk. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func ReadFile(path string) (*Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bperrors.Wrap(bperrors.ErrCodeFileNotFound, err, "blueprint file %s", path)
		}
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return Read(f)
	}
}

// WriteJSON encodes bp as indented JSON.
func WriteJSON(w io.Writer, bp *Blueprint) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bp)
}

func (b *Blueprint) applyDefaults() {
	if b.View == "" {
		b.View = ViewFront
	}
}
