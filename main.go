package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/castworks/designdesk/app"
	"github.com/castworks/designdesk/config"
	"github.com/castworks/designdesk/database"
	"github.com/castworks/designdesk/httpx"
	"github.com/castworks/designdesk/log"
	"github.com/castworks/designdesk/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	bearerServer := httpx.NewBearerServer(db, cfg)

	app := app.New(db, bearerServer, cfg)

	go sweepNotifications(app)

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}

// sweepNotifications enforces the notification retention window: expired
// entries go away read or not.
func sweepNotifications(app app.App) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-app.Config.NotificationTTL)
		n, err := app.Notifications.PurgeExpired(context.Background(), cutoff)
		if err != nil {
			log.Errorf("notifications.purge: %s", err)
			continue
		}
		if n > 0 {
			log.Infof("notifications.purge: removed %d expired", n)
		}
	}
}
