package forms

import (
	"regexp"

	"github.com/castworks/designdesk/model"
)

var (
	reEmail    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	reNonDigit = regexp.MustCompile(`\D`)
)

// Validate checks a value bag against the schema and returns one message
// per failing field, keyed by field name. Fields are checked in ascending
// order; within a field the first failing rule wins, but no field stops
// the others from being checked. An empty map means the bag is valid.
func Validate(fields []model.FieldSchema, bag Bag) map[string]string {
	errs := map[string]string{}

	for _, f := range sortFields(fields) {
		value := bag[f.Name]

		if f.Required && value.Empty() {
			errs[f.Name] = f.Label + " is required"
			continue
		}

		switch f.Type {
		case model.FieldEmail:
			if value.Text != "" && !reEmail.MatchString(value.Text) {
				errs[f.Name] = "Invalid email address"
			}
		case model.FieldTel:
			if value.Text != "" {
				digits := reNonDigit.ReplaceAllString(value.Text, "")
				if len(digits) != 10 {
					errs[f.Name] = "Phone number must be 10 digits"
				}
			}
		}
	}
	return errs
}
