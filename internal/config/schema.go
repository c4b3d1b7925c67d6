package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON Schema a config file must satisfy before it is unmarshalled
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "llm": {
      "type": "object",
      "properties": {
        "model": {"type": "string", "minLength": 1},
        "max_retries": {"type": "integer", "minimum": 0},
        "profiles": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "provider"],
            "properties": {
              "id": {"type": "string", "minLength": 1},
              "provider": {"type": "string", "enum": ["anthropic", "openai"]},
              "api_key": {"type": "string"},
              "base_url": {"type": "string"},
              "priority": {"type": "integer"}
            }
          }
        }
      }
    },
    "agent": {
      "type": "object",
      "properties": {
        "default": {"type": "string", "minLength": 1},
        "max_iterations": {"type": "integer", "minimum": 1},
        "max_chars": {"type": "integer", "minimum": 1}
      }
    },
    "logging": {
      "type": "object",
      "properties": {
        "level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "file": {"type": "string"},
        "max_size": {"type": "integer", "minimum": 0},
        "max_age": {"type": "integer", "minimum": 0},
        "compress": {"type": "boolean"},
        "redaction": {"type": "boolean"}
      }
    },
    "sessions": {
      "type": "object",
      "properties": {
        "record": {"type": "boolean"},
        "dir": {"type": "string"},
        "max_age": {"type": "integer", "minimum": 0}
      }
    },
    "data_dir": {"type": "string"},
    "workspace_dir": {"type": "string"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// ValidateDocument checks raw config JSON against Schema
func ValidateDocument(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("config does not match schema: %s", strings.Join(msgs, "; "))
	}

	return nil
}
