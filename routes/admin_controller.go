package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/castworks/designdesk/app"
	"github.com/castworks/designdesk/httpx"
	"github.com/castworks/designdesk/log"
	"github.com/castworks/designdesk/model"
	"github.com/castworks/designdesk/routes/middlewares"
	"github.com/castworks/designdesk/store"
)

type formTemplateRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	FormType    model.FormType      `json:"formType"`
	Fields      []model.FieldSchema `json:"fields"`
	IsActive    *bool               `json:"isActive"`
}

func CreateFormTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := formTemplateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.Name == "" {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "create_template.name", "Form name is required")
			return
		}
		if !req.FormType.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "create_template.form_type", "Invalid form type")
			return
		}

		admin, _ := middlewares.PrincipalFrom(r.Context())
		template, err := app.Templates.Create(r.Context(), req.Name, req.Description, req.FormType, req.Fields, admin.UserID)
		if err != nil {
			templateError(w, r, "db.create_template", req.Name, err)
			return
		}

		httpx.Created(w, r, "Form template created successfully", template)
	}
}

func ListFormTemplates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formType := model.FormType(r.URL.Query().Get("formType"))
		if formType != "" && !formType.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "get_templates.form_type", "Invalid form type")
			return
		}

		templates, err := app.Templates.List(r.Context(), formType)
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_templates", err)
			return
		}

		httpx.OK(w, r, templates)
	}
}

func GetFormTemplateById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "id")

		template, err := app.Templates.Get(r.Context(), templateId)
		if err != nil {
			templateError(w, r, "db.get_template", templateId, err)
			return
		}

		httpx.OK(w, r, template)
	}
}

func UpdateFormTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "id")

		req := formTemplateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		admin, _ := middlewares.PrincipalFrom(r.Context())
		template, err := app.Templates.Update(r.Context(), templateId, req.Name, req.Description, req.Fields, req.IsActive, admin.UserID)
		if err != nil {
			templateError(w, r, "db.update_template", templateId, err)
			return
		}

		// the admin sees success even when no one could be notified
		if _, err := app.Fanout.TemplateUpdated(r.Context(), template, admin.UserID); err != nil {
			log.Errorf("notify.template_updated: %s", err)
		}

		httpx.OKMessage(w, r, "Form template updated successfully", template)
	}
}

func DeleteFormTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "id")

		err := app.Templates.Delete(r.Context(), templateId)
		if err != nil {
			templateError(w, r, "db.delete_template", templateId, err)
			return
		}

		httpx.OKMessage(w, r, "Form template deleted successfully", nil)
	}
}

type broadcastRequest struct {
	Type    model.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]any         `json:"data"`
}

// BroadcastNotification lets an admin fan a manual notification out to
// every other user.
func BroadcastNotification(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := broadcastRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if !req.Type.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "broadcast.type", "Invalid notification type")
			return
		}
		if req.Title == "" || req.Message == "" {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "broadcast.body", "Missing required fields")
			return
		}

		admin, _ := middlewares.PrincipalFrom(r.Context())
		count, err := app.Fanout.Broadcast(r.Context(), admin.UserID, req.Type, req.Title, req.Message, req.Data)
		if err != nil {
			httpx.LogInternalError(w, r, "notify.broadcast", err)
			return
		}

		httpx.CreatedCount(w, r, "Notifications created", count)
	}
}

func templateError(w http.ResponseWriter, r *http.Request, code string, id any, err error) {
	var validation store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.LogNotFound(w, r, code, id, "Form template not found")
	case errors.As(err, &validation):
		httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, code, "%s", validation.Reason)
	default:
		httpx.LogInternalError(w, r, code, err)
	}
}
