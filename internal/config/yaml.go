package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sha1n/coveralls-go/internal/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file read by LoadDefaults when no
// path is given.
const DefaultConfigFile = ".coveralls.yml"

// FromYAML parses a YAML document whose top-level mapping holds configuration
// keys. Scalars are converted to their canonical string form, null becomes an
// undefined value, and nested mappings or sequences are rejected.
func FromYAML(document string) (*Config, error) {
	if strings.TrimSpace(document) == "" {
		return nil, &domain.FormatError{Source: "yaml", Msg: "document is empty"}
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(document), &root); err != nil {
		return nil, &domain.FormatError{Source: "yaml", Msg: "invalid document", Err: err}
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, &domain.FormatError{Source: "yaml", Msg: "document is not a mapping"}
	}

	c := New()
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}
		if value.Kind != yaml.ScalarNode {
			return nil, &domain.FormatError{
				Source: "yaml",
				Msg:    fmt.Sprintf("key %q: nested values are not supported (line %d)", key.Value, value.Line),
			}
		}
		v, err := scalarString(value)
		if err != nil {
			return nil, &domain.FormatError{Source: "yaml", Msg: fmt.Sprintf("key %q", key.Value), Err: err}
		}
		c.SetOptional(key.Value, v)
	}
	return c, nil
}

// scalarString converts a scalar node to its canonical string form.
// Returns nil for null.
func scalarString(n *yaml.Node) (*string, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}

	var s string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = t
	case bool:
		s = strconv.FormatBool(t)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case uint64:
		s = strconv.FormatUint(t, 10)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		s = t.Format(time.RFC3339)
	default:
		s = n.Value
	}
	return &s, nil
}

// LoadDefaults resolves the configuration from env and then layers the YAML
// file at path, read from fs, on top. A missing or invalid file is not an
// error: the environment-only configuration is returned.
func LoadDefaults(fs afero.Fs, env Env, path string) *Config {
	c := FromEnvironment(env)
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read config file, using environment only", "path", path, "error", err)
		} else {
			slog.Debug("No config file found", "path", path)
		}
		return c
	}

	fileCfg, err := FromYAML(string(data))
	if err != nil {
		slog.Warn("Ignoring invalid config file", "path", path, "error", err)
		return c
	}
	return c.Merge(fileCfg)
}
