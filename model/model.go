package model

import "time"

type FormType string

const (
	FormTypeCustomer FormType = "customer"
	FormTypeProject  FormType = "project"
	FormTypeLibrary  FormType = "library"
)

func (t FormType) Valid() bool {
	switch t {
	case FormTypeCustomer, FormTypeProject, FormTypeLibrary:
		return true
	}
	return false
}

// Label returns the display name used in notification titles and messages.
func (t FormType) Label() string {
	switch t {
	case FormTypeCustomer:
		return "Customer Form"
	case FormTypeProject:
		return "Project Form"
	case FormTypeLibrary:
		return "Library Form"
	}
	return "Form"
}

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldTel, FieldNumber,
		FieldTextarea, FieldSelect, FieldCheckbox, FieldDate:
		return true
	}
	return false
}

// FieldValidation carries advisory constraints attached to an input.
// They are surfaced on the rendered control, not enforced by the server.
type FieldValidation struct {
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
}

// FieldSchema describes one input of a dynamic form. FieldID is assigned
// once at creation and never reused; Order is kept dense (0..n-1) by the
// template store on every write.
type FieldSchema struct {
	FieldID     string           `json:"fieldId"`
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Type        FieldType        `json:"type"`
	Required    bool             `json:"required"`
	Placeholder string           `json:"placeholder,omitempty"`
	Order       int              `json:"order"`
	Options     []string         `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

type FormTemplate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	FormType    FormType      `json:"formType"`
	Fields      []FieldSchema `json:"fields"`
	IsActive    bool          `json:"isActive"`
	Version     int           `json:"version"`
	CreatedBy   string        `json:"createdBy"`
	UpdatedBy   string        `json:"updatedBy,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type NotificationType string

const (
	NotifyFormUpdated     NotificationType = "form_updated"
	NotifyLibraryUpdated  NotificationType = "library_updated"
	NotifyProjectUpdated  NotificationType = "project_updated"
	NotifyCustomerUpdated NotificationType = "customer_updated"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifyFormUpdated, NotifyLibraryUpdated, NotifyProjectUpdated, NotifyCustomerUpdated:
		return true
	}
	return false
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type ContactInfo struct {
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

type Customer struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ContactInfo ContactInfo    `json:"contactInfo"`
	FormData    map[string]any `json:"dynamicFormData"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
}
