package engine

import (
	"fmt"
	"sort"

	"crystal-hq/crystal/pkg/config"
	"crystal-hq/crystal/pkg/query/fields"
	"crystal-hq/crystal/pkg/query/schema"
)

// BuildVocabulary creates the field vocabulary declared by cfg. Without
// declared fields the generic vocabulary is returned.
func BuildVocabulary(cfg *config.SchemaConfig) (fields.Vocabulary, error) {
	if len(cfg.Fields) == 0 {
		return fields.Generic{}, nil
	}

	declared := make(map[string]fields.Field, len(cfg.Fields))
	for key, fc := range cfg.Fields {
		f, err := buildField(key, fc)
		if err != nil {
			return nil, err
		}
		declared[key] = f
	}

	h := fields.NewHandler(declared)
	if cfg.DefaultField != "" {
		if _, ok := declared[cfg.DefaultField]; !ok {
			return nil, fmt.Errorf("default field %q is not declared", cfg.DefaultField)
		}
		h.DefaultField = cfg.DefaultField
	}
	return h, nil
}

func buildField(key string, fc config.FieldConfig) (fields.Field, error) {
	name := fc.Description
	if name == "" {
		name = key
	}
	property := fc.Property
	if property == "" {
		property = key
	}

	switch fc.Type {
	case config.FieldTypeString, "":
		f := fields.NewStringField(name, fc.Plural, property)
		f.IgnoreCase = fc.IgnoreCase
		f.Default = fc.DefaultOperator
		f.AllowEmpty = fc.AllowEmpty
		return f, nil
	case config.FieldTypeNumber:
		f := fields.NewNumberField(name, fc.Plural, property)
		f.Default = fc.DefaultOperator
		return f, nil
	case config.FieldTypeStringArray:
		f := fields.NewStringArrayField(name, fc.Plural, property)
		f.IgnoreCase = fc.IgnoreCase
		f.Default = fc.DefaultOperator
		return f, nil
	}
	return nil, fmt.Errorf("field %q: unknown type %q", key, fc.Type)
}

// BuildSchema creates the schema declared by cfg.
func BuildSchema(cfg *config.SchemaConfig) (*schema.Schema, error) {
	vocab, err := BuildVocabulary(cfg)
	if err != nil {
		return nil, err
	}

	maxDepth := cfg.MaxDepth
	if maxDepth == 0 {
		maxDepth = config.DefaultMaxDepth
	}
	maxOperators := cfg.MaxOperators
	if maxOperators == 0 {
		maxOperators = config.DefaultMaxOperators
	}

	return schema.New(
		schema.WithVocabulary(vocab),
		schema.WithIgnoreInvalid(cfg.IgnoreInvalid),
		schema.WithMaxDepth(maxDepth),
		schema.WithMaxOperators(maxOperators),
		schema.WithRepair(!cfg.DisableRepair),
		schema.WithPropagateNegation(cfg.PropagateNegation),
	)
}

// FieldInfo describes one declared field.
type FieldInfo struct {
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`
	Property  string   `json:"property" yaml:"property"`
	Operators []string `json:"operators" yaml:"operators"`
	Default   bool     `json:"default,omitempty" yaml:"default,omitempty"`
}

// DescribeFields lists the fields declared by cfg, sorted by name.
func DescribeFields(cfg *config.SchemaConfig) []FieldInfo {
	out := make([]FieldInfo, 0, len(cfg.Fields))
	for key, fc := range cfg.Fields {
		f, err := buildField(key, fc)
		if err != nil {
			continue
		}
		typ := fc.Type
		if typ == "" {
			typ = config.DefaultFieldType
		}
		property := fc.Property
		if property == "" {
			property = key
		}
		out = append(out, FieldInfo{
			Name:      key,
			Type:      typ,
			Property:  property,
			Operators: f.Operators(),
			Default:   key == cfg.DefaultField,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
