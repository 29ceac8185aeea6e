package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/castworks/designdesk/app"
	"github.com/castworks/designdesk/forms"
	"github.com/castworks/designdesk/httpx"
	"github.com/castworks/designdesk/log"
	"github.com/castworks/designdesk/model"
	"github.com/castworks/designdesk/routes/middlewares"
	"github.com/castworks/designdesk/store"
)

// GetActiveFormTemplate serves the single template intake forms render
// for a given type.
func GetActiveFormTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formType := model.FormType(r.URL.Query().Get("type"))
		if !formType.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "get_active_template.form_type", "Invalid form type")
			return
		}

		template, err := app.Templates.GetActive(r.Context(), formType)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, r, "get_active_template", formType, "No active form template found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_active_template", err)
			return
		}

		httpx.OK(w, r, template)
	}
}

// CreateCustomer takes a raw value bag, re-validates it against the active
// customer template, maps it to the customer payload and persists it.
func CreateCustomer(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := map[string]any{}
		err := render.DecodeJSON(r.Body, &raw)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		template, err := app.Templates.GetActive(r.Context(), model.FormTypeCustomer)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "create_customer.template", "No active customer form")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_active_template", err)
			return
		}

		bag, err := forms.BindBag(template.Fields, raw)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "create_customer.bind", "%s", err)
			return
		}

		if fieldErrors := forms.Validate(template.Fields, bag); len(fieldErrors) > 0 {
			log.Debugf("create_customer.validate: %d invalid fields", len(fieldErrors))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, httpx.Envelope{Success: false, Message: "Validation failed", Data: fieldErrors})
			return
		}

		user, _ := middlewares.PrincipalFrom(r.Context())
		customer := forms.MapCustomer(template.Fields, bag)
		customer.CreatedBy = user.UserID

		customer, err = app.Customers.Create(r.Context(), customer)
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_customer", err)
			return
		}

		httpx.Created(w, r, "Customer created successfully", customer)
	}
}
