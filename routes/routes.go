package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/castworks/designdesk/app"
	"github.com/castworks/designdesk/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	secret := app.Config.TokenSecret

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	api.With(middlewares.Require(secret, middlewares.Authenticated)).
		Put("/auth/profile", UpdateProfile(app))

	// administrative surface
	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Require(secret, middlewares.IsAdmin))

		// CRUD form templates
		r.Post("/form-templates", CreateFormTemplate(app))
		r.Get("/form-templates", ListFormTemplates(app))
		r.Get("/form-templates/{id}", GetFormTemplateById(app))
		r.Patch("/form-templates/{id}", UpdateFormTemplate(app))
		r.Delete("/form-templates/{id}", DeleteFormTemplate(app))

		r.Post("/notifications", BroadcastNotification(app))
	})

	// intake surface
	api.With(middlewares.Require(secret, middlewares.Authenticated)).
		Get("/form-templates/active", GetActiveFormTemplate(app))
	api.With(middlewares.Require(secret, middlewares.Authenticated)).
		Post("/customers", CreateCustomer(app))

	// notification feed: the list degrades gracefully without a session,
	// per-item mutations require the owner
	api.With(middlewares.MaybeUser(secret)).
		Get("/notifications", ListNotifications(app))
	api.Route("/notifications/{id}", func(r chi.Router) {
		r.Use(middlewares.Require(secret, middlewares.Authenticated))
		r.Patch("/", UpdateNotification(app))
		r.Delete("/", DeleteNotification(app))
	})

	return api
}
