package extract

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/capture-cli/internal/model"
	"github.com/sells-group/capture-cli/internal/textscan"
)

//go:embed schema.yaml
var schemaYAML []byte

// FieldKind selects the normalizer applied to a raw field value.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldAmount FieldKind = "amount"
	FieldDate   FieldKind = "date"
)

// FieldSpec describes one label-addressed field of an entity.
type FieldSpec struct {
	Key     string    `yaml:"key"`
	Label   string    `yaml:"label"`
	Kind    FieldKind `yaml:"kind"`
	Partial bool      `yaml:"partial"`
}

// RelatedSpec describes a related-record list rendered on the entity's page.
type RelatedSpec struct {
	Header string           `yaml:"header"`
	Object model.ObjectType `yaml:"object"`
	Limit  int              `yaml:"limit"`
}

// EntitySchema is the extraction vocabulary for one object type: the section
// header used as the primary-name label, the label-addressed fields, and the
// reserved-label set that must never be read as a value.
type EntitySchema struct {
	Header   string       `yaml:"header"`
	Fields   []FieldSpec  `yaml:"fields"`
	Reserved []string     `yaml:"reserved"`
	Related  *RelatedSpec `yaml:"related"`

	reserved textscan.ReservedSet
}

// ReservedSet returns the compiled reserved-label set.
func (s *EntitySchema) ReservedSet() textscan.ReservedSet {
	return s.reserved
}

func loadSchemas() (map[model.ObjectType]*EntitySchema, error) {
	var raw map[model.ObjectType]*EntitySchema
	if err := yaml.Unmarshal(schemaYAML, &raw); err != nil {
		return nil, eris.Wrap(err, "extract: parse schema")
	}

	for _, t := range model.ObjectTypes {
		s, ok := raw[t]
		if !ok {
			return nil, eris.Errorf("extract: schema missing entity %s", t)
		}
		if s.Header == "" {
			return nil, eris.Errorf("extract: schema %s: header required", t)
		}
		for i, f := range s.Fields {
			if f.Key == "" || f.Label == "" {
				return nil, eris.Errorf("extract: schema %s: field %d needs key and label", t, i)
			}
			// "name" is populated by the primary-name resolver, not a field.
			if f.Key == "name" {
				return nil, eris.Errorf("extract: schema %s: field key %q collides with the primary name", t, f.Key)
			}
			if f.Kind == "" {
				s.Fields[i].Kind = FieldText
			}
		}
		s.reserved = textscan.NewReservedSet(s.Reserved...)
	}

	return raw, nil
}
