package wikisummary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// configSchema rejects unknown keys and wrong types before the typed
// unmarshal, so a misspelled field fails loudly instead of silently
// keeping its default.
const configSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"provider": {"type": "string", "enum": ["openai", "bedrock"]},
		"openai_api_key": {"type": "string"},
		"model": {"type": "string"},
		"bedrock_region": {"type": "string"},
		"max_summary_words": {"type": "integer", "minimum": 50, "maximum": 1000},
		"max_input_tokens": {"type": "integer", "minimum": 1000, "maximum": 16000},
		"max_output_tokens": {"type": "integer", "minimum": 100, "maximum": 2000},
		"temperature": {"type": "number", "minimum": 0, "maximum": 2},
		"answer_reserve_tokens": {"type": "integer", "minimum": 0},
		"cors_origins": {"type": "array", "items": {"type": "string"}},
		"rate_limit_enabled": {"type": "boolean"},
		"rate_limit_per_minute": {"type": "integer", "minimum": 1, "maximum": 100},
		"cache_enabled": {"type": "boolean"},
		"cache_ttl_seconds": {"type": "integer", "minimum": 60},
		"audit_log": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"driver": {"type": "string", "enum": ["", "sqlite", "postgres"]},
				"dsn": {"type": "string"}
			}
		}
	}
}`

var configSchema = jsonschema.MustCompileString("config.schema.json", configSchemaJSON)

// LoadConfig reads and parses a config file from the given path, layered
// over DefaultConfig. Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	var doc interface{}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return &cfg, nil
}

// validateSchema checks the raw document against the embedded JSON schema.
// The schema library expects values as produced by encoding/json, so YAML
// documents are normalized through a JSON round trip first.
func validateSchema(doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalizing config document: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("normalizing config document: %w", err)
	}
	return configSchema.Validate(v)
}
