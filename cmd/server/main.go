package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todolist-web/internal/config"
	"todolist-web/internal/database"
	"todolist-web/internal/logging"
	"todolist-web/internal/migration"
	"todolist-web/internal/session"
	"todolist-web/internal/storage"
	apptls "todolist-web/internal/tls"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Environment first so LOG_* from .env or CONFIG_FILE apply to the logger
	sources, configErr := config.Load()
	logging.InitLogger(logging.NewLogConfigFromEnv())
	if configErr != nil {
		logging.Logger.Fatalf("Failed to load configuration: %v", configErr)
	}
	if len(sources) > 0 {
		logging.Logger.WithField("sources", sources).Info("Configuration loaded")
	}

	// gin reads GIN_MODE before .env is loaded
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	tlsConfig := apptls.NewConfigFromEnv()
	sessionConfig := session.NewConfigFromEnv()
	if tlsConfig.Enabled {
		sessionConfig.CookieSecure = true
	}
	if sessionConfig.UsesDefaultSecret() {
		logging.Logger.Warn("SESSION_SECRET is not set; using the insecure development secret")
	}

	store, db, err := openStore(database.NewConfigFromEnv())
	if err != nil {
		logging.Logger.Fatalf("Failed to initialize session store: %v", err)
	}
	if db != nil {
		defer func() {
			if err := database.Close(db); err != nil {
				logging.Logger.WithError(err).Warn("Failed to close database")
			}
		}()
	}

	router, err := setupRouter(newRouterConfigFromEnv(store, db, sessionConfig))
	if err != nil {
		logging.Logger.Fatalf("Failed to set up router: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go session.RunJanitor(ctx, store, sessionConfig.CleanupInterval)

	if err := serve(ctx, router, tlsConfig); err != nil {
		logging.Logger.Fatalf("Server error: %v", err)
	}
	logging.Logger.Info("Server stopped")
}

// openStore returns the session store named by SESSION_STORE and, for SQL
// stores, the database handle behind it
func openStore(dbConfig *database.Config) (storage.Store, *gorm.DB, error) {
	if dbConfig.Driver == database.DriverMemory {
		logging.Logger.Info("Using in-memory session store")
		return storage.NewStorage(), nil, nil
	}

	if dbConfig.Driver == database.DriverPostgres {
		if err := migration.Apply(dbConfig.URL()); err != nil {
			return nil, nil, err
		}
	}

	db, err := database.Connect(dbConfig)
	if err != nil {
		return nil, nil, err
	}
	logging.Logger.Infof("Using %s session store", dbConfig.Driver)
	return storage.NewGormStorage(db), db, nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serve runs until ctx is cancelled and then drains open connections
func serve(ctx context.Context, router http.Handler, tlsConfig *apptls.Config) error {
	var servers []*http.Server
	errCh := make(chan error, 2)

	start := func(srv *http.Server, listen func() error) {
		servers = append(servers, srv)
		go func() {
			if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	if tlsConfig.Enabled {
		serverTLS, err := tlsConfig.ServerConfig()
		if err != nil {
			return err
		}
		srv := newServer(":"+tlsConfig.Port, router)
		srv.TLSConfig = serverTLS
		logging.Logger.Infof("Starting HTTPS server on port %s...", tlsConfig.Port)
		start(srv, func() error { return srv.ListenAndServeTLS("", "") })

		if tlsConfig.RedirectHTTP {
			redirect := newServer(":"+tlsConfig.HTTPPort, apptls.RedirectHandler(tlsConfig.Port))
			logging.Logger.Infof("Redirecting HTTP on port %s to HTTPS", tlsConfig.HTTPPort)
			start(redirect, redirect.ListenAndServe)
		}
	} else {
		srv := newServer(":"+tlsConfig.HTTPPort, router)
		logging.Logger.Infof("Starting server on port %s...", tlsConfig.HTTPPort)
		start(srv, srv.ListenAndServe)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Logger.Info("Shutting down server...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger.WithError(err).Warn("Server did not shut down cleanly")
		}
	}
	return serveErr
}
