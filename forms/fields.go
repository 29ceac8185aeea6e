package forms

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gofrs/uuid"

	"github.com/castworks/designdesk/model"
)

// Value is the typed content of one form field, tagged by the schema type
// it was bound against. Checkbox fields carry Check, everything else Text.
type Value struct {
	Type  model.FieldType
	Text  string
	Check bool
}

func (v Value) Empty() bool {
	if v.Type == model.FieldCheckbox {
		return !v.Check
	}
	return v.Text == ""
}

// Raw returns the value as it is persisted in a raw bag.
func (v Value) Raw() any {
	if v.Type == model.FieldCheckbox {
		return v.Check
	}
	return v.Text
}

// Bag is the flat mapping from field name to user-entered value collected
// during form interaction.
type Bag map[string]Value

// EmptyBag seeds a bag with the zero value of every schema field.
func EmptyBag(fields []model.FieldSchema) Bag {
	bag := make(Bag, len(fields))
	for _, f := range fields {
		bag[f.Name] = Value{Type: f.Type}
	}
	return bag
}

// BindBag coerces a raw value map against the schema. Keys that name no
// schema field are rejected here, at the submission boundary, so they never
// reach the mapper. Checkbox values accept a bool or the string "true";
// everything else is carried as text.
func BindBag(fields []model.FieldSchema, raw map[string]any) (Bag, error) {
	byName := make(map[string]model.FieldSchema, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	bag := EmptyBag(fields)
	for name, value := range raw {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		bag[name] = coerce(f, value)
	}
	return bag, nil
}

func coerce(f model.FieldSchema, value any) Value {
	if f.Type == model.FieldCheckbox {
		switch v := value.(type) {
		case bool:
			return Value{Type: f.Type, Check: v}
		case string:
			return Value{Type: f.Type, Check: v == "true"}
		}
		return Value{Type: f.Type}
	}

	switch v := value.(type) {
	case nil:
		return Value{Type: f.Type}
	case string:
		return Value{Type: f.Type, Text: v}
	case float64:
		return Value{Type: f.Type, Text: strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		return Value{Type: f.Type, Text: strconv.FormatBool(v)}
	default:
		return Value{Type: f.Type, Text: fmt.Sprint(v)}
	}
}

// sortFields returns a copy ordered by ascending Order. Storage order is
// never trusted.
func sortFields(fields []model.FieldSchema) []model.FieldSchema {
	sorted := make([]model.FieldSchema, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// NormalizeFields validates a submitted field list and returns it sorted by
// the submitted order, re-sequenced to a dense 0..n-1, with fresh fieldIds
// assigned to fields that carry none. Missing name/label/type, unknown
// types and duplicate names are rejected.
func NormalizeFields(fields []model.FieldSchema) ([]model.FieldSchema, error) {
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" || f.Label == "" || f.Type == "" {
			return nil, fmt.Errorf("field %q: name, label and type are required", f.Name)
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if names[f.Name] {
			return nil, fmt.Errorf("field %q: duplicate name", f.Name)
		}
		names[f.Name] = true
	}

	normalized := sortFields(fields)
	for i := range normalized {
		normalized[i].Order = i
		if normalized[i].FieldID == "" {
			normalized[i].FieldID = uuid.Must(uuid.NewV4()).String()
		}
	}
	return normalized, nil
}
