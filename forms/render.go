package forms

import "github.com/castworks/designdesk/model"

type ControlKind string

const (
	ControlInput     ControlKind = "input"
	ControlMultiline ControlKind = "multiline"
	ControlSelect    ControlKind = "select"
	ControlCheckbox  ControlKind = "checkbox"
)

// RenderedField is the interpreter's renderable representation of one
// schema field together with its current value.
type RenderedField struct {
	FieldID     string                 `json:"fieldId"`
	Name        string                 `json:"name"`
	Label       string                 `json:"label"`
	Control     ControlKind            `json:"control"`
	InputType   model.FieldType        `json:"inputType,omitempty"`
	Placeholder string                 `json:"placeholder,omitempty"`
	Required    bool                   `json:"required"`
	Options     []string               `json:"options,omitempty"`
	Value       string                 `json:"value"`
	Checked     bool                   `json:"checked,omitempty"`
	Validation  *model.FieldValidation `json:"validation,omitempty"`
}

// Render interprets a field schema list against a value bag and produces
// one control per field, in ascending schema order. For select fields the
// option set comes from the caller-supplied override map keyed by field
// name, falling back to the schema's own options.
func Render(fields []model.FieldSchema, bag Bag, selectOptions map[string][]string) []RenderedField {
	sorted := sortFields(fields)

	rendered := make([]RenderedField, 0, len(sorted))
	for _, f := range sorted {
		value := bag[f.Name]

		rf := RenderedField{
			FieldID:     f.FieldID,
			Name:        f.Name,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Value:       value.Text,
		}

		switch f.Type {
		case model.FieldTextarea:
			rf.Control = ControlMultiline
		case model.FieldSelect:
			rf.Control = ControlSelect
			if override, ok := selectOptions[f.Name]; ok {
				rf.Options = override
			} else {
				rf.Options = f.Options
			}
		case model.FieldCheckbox:
			rf.Control = ControlCheckbox
			rf.Checked = value.Check
			rf.Value = ""
		default:
			rf.Control = ControlInput
			rf.InputType = f.Type
			rf.Validation = f.Validation
		}

		rendered = append(rendered, rf)
	}
	return rendered
}
