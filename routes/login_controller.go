package routes

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/castworks/designdesk/app"
	"github.com/castworks/designdesk/httpx"
	"github.com/castworks/designdesk/log"
	"github.com/castworks/designdesk/routes/middlewares"
	"github.com/castworks/designdesk/store"
)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := regexp.MustCompile(`(?i)^refresh\s+(.*)`).FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, r, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

type profileRequest struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func UpdateProfile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middlewares.PrincipalFrom(r.Context())
		if !user.Stored() {
			// the env-var admin has no user row to edit
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "profile.env_admin", "Profile is not available for the built-in administrator")
			return
		}

		req := profileRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.Name == "" || req.Role == "" {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "profile.body", "Missing required fields")
			return
		}

		updated, err := app.Users.UpdateProfile(r.Context(), user.UserID, req.Name, req.Role, req.CurrentPassword, req.NewPassword)
		if err != nil {
			var validation store.ValidationError
			switch {
			case errors.Is(err, store.ErrNotFound):
				httpx.LogNotFound(w, r, "db.update_profile", user.UserID, "User not found")
			case errors.As(err, &validation):
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "db.update_profile", "%s", validation.Reason)
			default:
				httpx.LogInternalError(w, r, "db.update_profile", err)
			}
			return
		}

		httpx.OKMessage(w, r, "Profile updated successfully", updated)
	}
}
