package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/spec-view-go/internal/utils"
)

const schemaURL = "spec-view-config.schema.json"

// Schema is the JSON Schema every config file must satisfy.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "spec_paths": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "include": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "exclude": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "statuses": {"type": "array", "items": {"type": "string"}},
    "serve": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "port": {"type": "integer", "minimum": 0, "maximum": 65535},
        "open_browser": {"type": "boolean"}
      }
    },
    "history": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "limit": {"type": "integer", "minimum": 0}
      }
    },
    "watch": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "debounce_ms": {"type": "integer", "minimum": 0}
      }
    },
    "log_level": {"enum": ["debug", "info", "warn", "warning", "error", "fatal"]},
    "log_format": {"enum": ["text", "json", "logfmt"]},
    "log_timestamps": {"type": "boolean"},
    "log_caller": {"type": "boolean"}
  }
}`

// Problem is one schema violation found in a config file.
type Problem struct {
	Path    string // dot path of the offending value, empty for the document
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(Schema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

// Check validates the config file at path against Schema. Syntax errors and
// unreadable files are returned as errors; schema violations as problems,
// sorted by path.
func Check(path string) ([]Problem, error) {
	raw, err := decodeRaw(path)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so numbers and maps have the shapes the
	// validator expects.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal config for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal config for validation: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	var problems []Problem
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		collectProblems(&problems, ve)
	}
	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Path < problems[j].Path
	})
	return problems, nil
}

func collectProblems(problems *[]Problem, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*problems = append(*problems, Problem{
			Path:    utils.JSONPointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectProblems(problems, cause)
	}
}

// decodeRaw decodes a config file into generic maps. An empty file is an
// empty document.
func decodeRaw(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}
