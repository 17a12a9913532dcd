package config

import (
	"encoding/json"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Config is an ordered key/value store of job configuration parameters.
// A key may hold an undefined value (nil), which is distinct from "".
// Merge never lets an undefined value replace a defined one.
type Config struct {
	keys   []string
	values map[string]*string
}

// New creates an empty Config.
func New() *Config {
	return &Config{values: make(map[string]*string)}
}

// FromMap creates a Config seeded from m. Keys are inserted in sorted order
// since map iteration order is unspecified.
func FromMap(m map[string]string) *Config {
	c := New()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		c.Set(k, m[k])
	}
	return c
}

// Set stores a defined value.
func (c *Config) Set(key, value string) *Config {
	return c.SetOptional(key, &value)
}

// SetOptional stores value, which may be nil to record an undefined value.
func (c *Config) SetOptional(key string, value *string) *Config {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	if value != nil {
		v := *value
		value = &v
	}
	c.values[key] = value
	return c
}

// Get returns the value for key. ok is false when the key is absent or its
// value is undefined.
func (c *Config) Get(key string) (value string, ok bool) {
	v := c.values[key]
	if v == nil {
		return "", false
	}
	return *v, true
}

// GetOr returns the defined value for key, or def.
func (c *Config) GetOr(key, def string) string {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Lookup returns the raw value for key: nil when absent or undefined.
func (c *Config) Lookup(key string) *string {
	return c.values[key]
}

// Has reports whether key is present, even with an undefined value.
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// HasPrefix reports whether any key starts with prefix.
func (c *Config) HasPrefix(prefix string) bool {
	for _, k := range c.keys {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Remove deletes key and returns its prior value.
func (c *Config) Remove(key string) (prior *string, existed bool) {
	prior, existed = c.values[key]
	if !existed {
		return nil, false
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return prior, true
}

// Merge copies every defined value of other into c. Undefined values in
// other are skipped.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}
	for k, v := range other.All() {
		if v != nil {
			c.SetOptional(k, v)
		}
	}
	return c
}

// All returns the entries in insertion order. The sequence reads the live
// store, so ranging over it again reflects later mutations.
func (c *Config) All() iter.Seq2[string, *string] {
	return func(yield func(string, *string) bool) {
		for _, k := range c.Keys() {
			v, ok := c.values[k]
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (c *Config) Keys() []string {
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Len returns the number of keys.
func (c *Config) Len() int {
	return len(c.keys)
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	return New().mergeAll(c)
}

// mergeAll copies every entry of other, undefined values included.
func (c *Config) mergeAll(other *Config) *Config {
	for k, v := range other.All() {
		c.SetOptional(k, v)
	}
	return c
}

// ToMap returns a plain snapshot. Undefined values map to nil.
func (c *Config) ToMap() map[string]any {
	m := make(map[string]any, len(c.keys))
	for k, v := range c.All() {
		if v == nil {
			m[k] = nil
			continue
		}
		m[k] = *v
	}
	return m
}

// MarshalJSON encodes the snapshot returned by ToMap.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToMap())
}
