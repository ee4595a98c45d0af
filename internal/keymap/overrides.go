package keymap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Override changes one entry of the built-in classes. A file (TOML, JSON or
// YAML) lists them under "keys":
//
//	[[keys]]
//	class = "consonants"
//	token = "q"
//	glyph = "ক"
type Override struct {
	Class  string `json:"class" toml:"class" yaml:"class"`
	Token  string `json:"token" toml:"token" yaml:"token"`
	Glyph  string `json:"glyph" toml:"glyph" yaml:"glyph"`
	Remove bool   `json:"remove" toml:"remove" yaml:"remove"`
}

type overrideFile struct {
	Keys []Override `json:"keys" toml:"keys" yaml:"keys"`
}

const schemaURL = "akhor://keymap-overrides.json"

const overrideSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "keys": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["token"],
        "properties": {
          "class": {"type": "string"},
          "token": {"type": "string", "minLength": 1},
          "glyph": {"type": "string"},
          "remove": {"type": "boolean"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if schemaErr = compiler.AddResource(schemaURL, strings.NewReader(overrideSchema)); schemaErr != nil {
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// validateDocument checks a decoded JSON or YAML document before it is bound
// to overrideFile, so misspelled fields are reported instead of ignored.
func validateDocument(path string, doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile override schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return &ConfigError{msg: fmt.Sprintf("invalid override file '%s': %v", path, err)}
	}
	return nil
}

func LoadOverrides(path string) ([]Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open keymap overrides: %w", err)
	}

	var file overrideFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.Decode(string(data), &file)
		if err != nil {
			return nil, fmt.Errorf("parse keymap overrides: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, &ConfigError{msg: fmt.Sprintf("invalid override file '%s': unknown fields %s", path, strings.Join(keys, ", "))}
		}
	case ".json":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse keymap overrides: %w", err)
		}
		if err := validateDocument(path, doc); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse keymap overrides: %w", err)
		}
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse keymap overrides: %w", err)
		}
		if doc == nil {
			return nil, nil
		}
		if err := validateDocument(path, doc); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse keymap overrides: %w", err)
		}
	default:
		return nil, &ConfigError{msg: fmt.Sprintf("unsupported override file '%s' (want .toml, .json or .yaml)", path)}
	}
	return file.Keys, nil
}

// ApplyOverrides returns modified copies of classes. Replacing the glyph of
// an existing token keeps its position; a new token is appended to its class.
// Collisions are left for New to report.
func ApplyOverrides(classes []Class, overrides []Override) ([]Class, error) {
	out := make([]Class, len(classes))
	for i, class := range classes {
		out[i] = class.clone()
	}

	for _, o := range overrides {
		tok := Token(strings.TrimSpace(o.Token))
		if tok == "" {
			return nil, &ConfigError{msg: "override with empty token"}
		}
		ci, ei := locate(out, tok)

		if o.Remove {
			if ci < 0 {
				return nil, &ConfigError{Token: tok, msg: fmt.Sprintf("cannot remove unknown token '%s'", tok)}
			}
			entries := out[ci].Entries
			out[ci].Entries = append(entries[:ei:ei], entries[ei+1:]...)
			continue
		}

		if o.Class == "" {
			if ci < 0 {
				return nil, &ConfigError{Token: tok, msg: fmt.Sprintf("override for new token '%s' needs a class", tok)}
			}
			out[ci].Entries[ei].Glyph = o.Glyph
			continue
		}

		kind, err := ParseClassKind(o.Class)
		if err != nil {
			return nil, err
		}
		if ci >= 0 && out[ci].Kind == kind {
			out[ci].Entries[ei].Glyph = o.Glyph
			continue
		}
		target := -1
		for i := range out {
			if out[i].Kind == kind {
				target = i
				break
			}
		}
		if target < 0 {
			out = append(out, Class{Kind: kind})
			target = len(out) - 1
		}
		out[target].Entries = append(out[target].Entries, Entry{Token: tok, Glyph: o.Glyph})
	}
	return out, nil
}

// Build applies overrides to the built-in classes and validates the result.
func Build(overrides []Override) (*Table, error) {
	classes, err := ApplyOverrides(DefaultClasses(), overrides)
	if err != nil {
		return nil, err
	}
	return New(classes...)
}

// LoadFile builds a table from an override file. An empty path yields the
// built-in table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	overrides, err := LoadOverrides(path)
	if err != nil {
		return nil, err
	}
	return Build(overrides)
}

func locate(classes []Class, tok Token) (int, int) {
	for ci, class := range classes {
		for ei, entry := range class.Entries {
			if entry.Token == tok {
				return ci, ei
			}
		}
	}
	return -1, -1
}
