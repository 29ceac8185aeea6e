package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/castworks/designdesk/config"
	"github.com/castworks/designdesk/notify"
	"github.com/castworks/designdesk/store"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Templates     *store.TemplateStore
	Notifications *store.NotificationStore
	Users         *store.UserStore
	Customers     *store.CustomerStore
	Fanout        notify.Fanout
}

func New(db *sql.DB, bearerServer *oauth.BearerServer, cfg config.Config) App {
	users := store.NewUserStore(db)
	notifications := store.NewNotificationStore(db)

	return App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,

		Templates:     store.NewTemplateStore(db),
		Notifications: notifications,
		Users:         users,
		Customers:     store.NewCustomerStore(db),
		Fanout:        notify.Fanout{Users: users, Notifications: notifications},
	}
}
