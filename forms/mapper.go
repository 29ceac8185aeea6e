package forms

import (
	"fmt"
	"strings"

	"github.com/castworks/designdesk/model"
)

// MapCustomer transforms a bound value bag into the customer payload:
// well-known field names feed the structured contact info, and the whole
// bag is preserved alongside as raw form data so fields added to the
// template later are not lost.
func MapCustomer(fields []model.FieldSchema, bag Bag) model.Customer {
	raw := make(map[string]any, len(bag))
	for name, value := range bag {
		raw[name] = value.Raw()
	}

	phone := bag["phone"].Text
	if digits := reNonDigit.ReplaceAllString(phone, ""); len(digits) == 10 {
		phone = fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}

	state := strings.ToUpper(bag["state"].Text)
	if len(state) > 2 {
		state = state[:2]
	}

	return model.Customer{
		Name: bag["name"].Text,
		ContactInfo: model.ContactInfo{
			Email: bag["email"].Text,
			Phone: phone,
			Address: model.Address{
				Street:  bag["street"].Text,
				City:    bag["city"].Text,
				State:   state,
				ZipCode: bag["zipCode"].Text,
			},
		},
		FormData: raw,
	}
}
