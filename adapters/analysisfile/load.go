package analysisfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"mua-risk/core/engine"
	"mua-risk/internal/errors"
)

// Format is an analysis file encoding
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return FormatHCL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.NotSupported(fmt.Sprintf("analysis file extension %q", filepath.Ext(path))).
			WithContext("path", path)
	}
}

// Parse decodes an analysis document. filename is used in diagnostics only.
func Parse(data []byte, format Format, filename string) (*Document, error) {
	var doc Document

	switch format {
	case FormatHCL:
		file, diags := hclparse.NewParser().ParseHCL(data, filename)
		if diags.HasErrors() {
			return nil, diagError(filename, diags)
		}
		if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
			return nil, diagError(filename, diags)
		}

	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Parsing("invalid YAML analysis", err).WithContext("file", filename)
		}

	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Parsing("invalid JSON analysis", err).WithContext("file", filename)
		}

	default:
		return nil, errors.NotSupported(fmt.Sprintf("analysis format %q", format))
	}

	return &doc, nil
}

// Load reads the analysis file at path and converts it to an engine input
func Load(path string, defaults Defaults) (engine.Input, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return engine.Input{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return engine.Input{}, errors.NotFound("analysis file", path)
		}
		return engine.Input{}, errors.Wrap(errors.TypeInput, "cannot read analysis file", err).WithContext("path", path)
	}

	doc, err := Parse(data, format, path)
	if err != nil {
		return engine.Input{}, err
	}
	return doc.Input(defaults)
}

func diagError(filename string, diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		if diag.Subject != nil {
			msg = fmt.Sprintf("line %d: %s", diag.Subject.Start.Line, msg)
		}
		msgs = append(msgs, msg)
	}
	return errors.Parsing("invalid HCL analysis", fmt.Errorf("%s", strings.Join(msgs, "; "))).
		WithContext("file", filename)
}
