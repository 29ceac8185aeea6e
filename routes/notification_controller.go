package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/castworks/designdesk/app"
	"github.com/castworks/designdesk/httpx"
	"github.com/castworks/designdesk/log"
	"github.com/castworks/designdesk/model"
	"github.com/castworks/designdesk/routes/middlewares"
	"github.com/castworks/designdesk/store"
)

// notificationFeed always carries data and unreadCount, even when empty,
// so polling clients never break on a missing key.
type notificationFeed struct {
	Success     bool                 `json:"success"`
	Data        []model.Notification `json:"data"`
	UnreadCount int                  `json:"unreadCount"`
}

// ListNotifications serves the polled feed. It always answers 200: callers
// without a session, the env admin (which owns no notifications) and store
// failures all degrade to an empty feed.
func ListNotifications(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		empty := notificationFeed{Success: true, Data: []model.Notification{}}

		user, ok := middlewares.PrincipalFrom(r.Context())
		if !ok || !user.Stored() {
			render.JSON(w, r, empty)
			return
		}

		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = 10
		}
		unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

		notifications, err := app.Notifications.List(r.Context(), user.UserID, limit, unreadOnly)
		if err != nil {
			log.Errorf("db.get_notifications: %s", err)
			render.JSON(w, r, empty)
			return
		}
		unreadCount, err := app.Notifications.UnreadCount(r.Context(), user.UserID)
		if err != nil {
			log.Errorf("db.count_notifications: %s", err)
			render.JSON(w, r, empty)
			return
		}

		render.JSON(w, r, notificationFeed{
			Success:     true,
			Data:        notifications,
			UnreadCount: unreadCount,
		})
	}
}

// UpdateNotification handles the per-item PATCH the client issues when a
// notification is opened, or N times in parallel for mark-all-read.
func UpdateNotification(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notificationId := chi.URLParam(r, "id")

		body := struct {
			Read *bool `json:"read"`
		}{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if body.Read == nil || !*body.Read {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "update_notification.body", "Nothing to update")
			return
		}

		user, _ := middlewares.PrincipalFrom(r.Context())
		notification, err := app.Notifications.MarkRead(r.Context(), notificationId, user.UserID)
		if err != nil {
			notificationError(w, r, "db.update_notification", notificationId, err)
			return
		}

		httpx.OK(w, r, notification)
	}
}

func DeleteNotification(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notificationId := chi.URLParam(r, "id")

		user, _ := middlewares.PrincipalFrom(r.Context())
		err := app.Notifications.Delete(r.Context(), notificationId, user.UserID)
		if err != nil {
			notificationError(w, r, "db.delete_notification", notificationId, err)
			return
		}

		httpx.OKMessage(w, r, "Notification deleted", nil)
	}
}

func notificationError(w http.ResponseWriter, r *http.Request, code string, id any, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.LogNotFound(w, r, code, id, "Notification not found")
	case errors.Is(err, store.ErrUnauthorized):
		httpx.LogUnauthorized(w, r, code)
	default:
		httpx.LogInternalError(w, r, code, err)
	}
}
