package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/auth"
	"github.com/frahmantamala/leave-request/internal/calendar"
	"github.com/frahmantamala/leave-request/internal/leave"
	leavestore "github.com/frahmantamala/leave-request/internal/leave/gormstore"
	"github.com/frahmantamala/leave-request/internal/notification"
	"github.com/frahmantamala/leave-request/internal/storage"
	"github.com/frahmantamala/leave-request/internal/transport"
	"github.com/frahmantamala/leave-request/internal/transport/rest"
	"github.com/frahmantamala/leave-request/internal/user"
	userstore "github.com/frahmantamala/leave-request/internal/user/gormstore"
	"github.com/frahmantamala/leave-request/pkg/logger"
	"github.com/frahmantamala/leave-request/web"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the leave form and the admin API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies is built once at startup and owns every process-wide resource.
type Dependencies struct {
	Config     *internal.Config
	Store      *storage.Store
	Dispatcher *notification.Dispatcher
	Router     *chi.Mux
	Logger     *slog.Logger
}

func startHTTPServer() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              deps.Config.Server.Address(),
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		deps.Logger.Info("Starting HTTP server", "address", server.Addr)
		serverErrChan <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		deps.Logger.Info("Received signal, shutting down...")
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed", "error", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	deps.Dispatcher.Shutdown(shutdownCtx)
	if err := deps.Store.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	setupLogger(config)
	lg := logger.LoggerWrapper()

	loc, err := time.LoadLocation(config.Calendar.TimeZone)
	if err != nil {
		return nil, internal.NewConfigurationError(
			fmt.Sprintf("unknown calendar time zone %q", config.Calendar.TimeZone),
			internal.ErrCodeInvalidSetting).WithCause(err)
	}

	store, err := storage.Open(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.Initialize(ctx, config.DefaultUser); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// a nil *calendar.Client must not end up in the interface
	var eventCreator leave.EventCreator
	if config.Calendar.Enabled() {
		client, err := calendar.New(context.Background(), calendar.ConfigFrom(config.Calendar), lg)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize calendar: %w", err)
		}
		eventCreator = client
		lg.Info("calendar sync enabled", "calendar_id", config.Calendar.CalendarID)
	} else {
		lg.Warn("calendar sync disabled: SERVICE_ACCOUNT_JSON and CALENDAR_ID are not set")
	}

	dispatcher := notification.NewDispatcher(notification.Config{
		MaxWorkers:  config.Notification.MaxWorkers,
		QueueSize:   config.Notification.QueueSize,
		SendTimeout: config.Notification.SendTimeout,
	}, notification.NewSMTPSender(config.Mail), lg)

	tmpl, err := web.Templates()
	if err != nil {
		dispatcher.Shutdown(ctx)
		_ = store.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	base := transport.NewBaseHandler(lg).WithTemplates(tmpl)

	leaveService := leave.NewService(
		leavestore.NewLeaveRepository(store.DB()),
		dispatcher,
		eventCreator,
		leave.Config{Recipients: config.Notification.Recipients, Location: loc},
		lg,
	)

	users := userstore.NewUserRepository(store.DB())
	authService := auth.NewService(users,
		auth.NewJWTTokenGenerator(config.Security.SecretKey, config.Security.AccessTokenDuration), lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, store.SQL(), store.Dialect(), rest.Handlers{
		Leave: leave.NewHandler(base, leaveService),
		Auth:  auth.NewHandler(base, authService),
		User:  user.NewHandler(base, user.NewService(users)),
	}, lg)

	return &Dependencies{
		Config:     config,
		Store:      store,
		Dispatcher: dispatcher,
		Router:     router,
		Logger:     lg,
	}, nil
}
