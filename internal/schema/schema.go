// Package schema merges a fixed core field schema with a caller-supplied
// custom-fields schema into one validator, and translates field names
// between their external (domain) shape and their storage shape.
package schema

import (
	"fmt"
	"sort"

	"github.com/wolfeidau/tenantd/internal/models"
)

// FieldType is the runtime type a field's value must carry.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeBool   FieldType = "bool"
)

// Field describes one field in a schema.
type Field struct {
	Type     FieldType
	Required bool

	// String constraints; zero values disable the check.
	MinLen int
	MaxLen int
	Enum   []string
}

// Definition maps external field names to their specs.
type Definition map[string]Field

// Config is the caller-supplied custom-fields configuration for one entity.
type Config struct {
	Custom        Definition
	Naming        NamingStrategy
	ColumnMapping map[string]string
}

// Merged is the combined validator and name translator for one entity.
// Building it is deterministic and side-effect free: the same (core,
// config) pair always yields the same Merged value. Build once per
// configuration and reuse.
type Merged struct {
	fields    Definition
	ordered   []string          // field names sorted for deterministic validation
	toStorage map[string]string // external name -> storage name
	toDomain  map[string]string // storage name -> external name
}

// Merge combines the core schema with the custom-fields config.
// A custom field name colliding with a core field name, or two fields
// mapping onto the same storage column, fails with a SchemaConflictError.
func Merge(core Definition, cfg Config) (*Merged, error) {
	if !cfg.Naming.Valid() {
		return nil, fmt.Errorf("unknown naming strategy %q", cfg.Naming)
	}

	fields := make(Definition, len(core)+len(cfg.Custom))
	for name, f := range core {
		fields[name] = f
	}
	for name, f := range cfg.Custom {
		if _, exists := core[name]; exists {
			return nil, &models.SchemaConflictError{Field: name}
		}
		fields[name] = f
	}

	toStorage := make(map[string]string, len(fields))
	toDomain := make(map[string]string, len(fields))
	for name := range fields {
		storage := cfg.Naming.Apply(name)
		if mapped, ok := cfg.ColumnMapping[name]; ok {
			storage = mapped
		}
		if _, taken := toDomain[storage]; taken {
			return nil, &models.SchemaConflictError{Field: name}
		}
		toStorage[name] = storage
		toDomain[storage] = name
	}

	ordered := make([]string, 0, len(fields))
	for name := range fields {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	return &Merged{
		fields:    fields,
		ordered:   ordered,
		toStorage: toStorage,
		toDomain:  toDomain,
	}, nil
}

// Fields returns the external names of all merged fields, sorted.
func (m *Merged) Fields() []string {
	out := make([]string, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// Has reports whether the merged schema defines the external field name.
func (m *Merged) Has(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// ToStorage renames keys from external to storage shape without altering
// values. Keys the schema does not know pass through unchanged.
func (m *Merged) ToStorage(in map[string]any) map[string]any {
	return rename(in, m.toStorage)
}

// FromStorage is the inverse of ToStorage.
func (m *Merged) FromStorage(in map[string]any) map[string]any {
	return rename(in, m.toDomain)
}

func rename(in map[string]any, mapping map[string]string) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if mapped, ok := mapping[k]; ok {
			k = mapped
		}
		out[k] = v
	}
	return out
}
