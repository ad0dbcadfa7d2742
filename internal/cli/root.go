// Package cli defines the Cobra commands for the staffdesk admin
// client. Commands are thin: they forward intents into the session,
// directory, and form packages and render the state those produce.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/yourorg/staffdesk/internal/directory"
	"github.com/yourorg/staffdesk/internal/form"
	"github.com/yourorg/staffdesk/internal/gateway"
	"github.com/yourorg/staffdesk/internal/infrastructure/logger"
	"github.com/yourorg/staffdesk/internal/infrastructure/redis"
	"github.com/yourorg/staffdesk/internal/observability/tracing"
	"github.com/yourorg/staffdesk/internal/session"
	"github.com/yourorg/staffdesk/internal/storage"
	"github.com/yourorg/staffdesk/pkg/config"
)

// app holds the wired component graph for the lifetime of one
// command invocation.
type app struct {
	log       *slog.Logger
	session   *session.Manager
	directory *directory.Store
	form      *form.Controller

	shutdownTracing func(context.Context) error
	closeRedis      func() error
}

var current *app

var errNotLoggedIn = errors.New("not logged in. Run: staffdesk login")

var rootCmd = &cobra.Command{
	Use:           "staffdesk",
	Short:         "Administrative client for the employee roster API",
	Long:          `Staffdesk manages a roster of employee records against a remote HTTP API: authenticated sessions, paginated directory views, and create/edit/delete flows.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current == nil {
			return
		}
		if current.shutdownTracing != nil {
			_ = current.shutdownTracing(cmd.Context())
		}
		if current.closeRedis != nil {
			_ = current.closeRedis()
		}
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(divisionsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}

// newApp wires the component graph: config, logger, tracing, state
// store, gateway, session manager, directory store, form controller.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel)

	shutdown, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a := &app{log: log, shutdownTracing: shutdown}

	var store storage.Store
	switch cfg.StateBackend {
	case "redis":
		client, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closeRedis = client.Close
		store = storage.NewRedisStore(client, log)
	default:
		store = storage.NewFileStore(cfg.StateDir, log)
	}

	mgr := session.NewManager(store, log)
	gw := gateway.NewClient(cfg.APIBaseURL, mgr.Token, log)
	mgr.SetAPI(gw)
	mgr.Restore(ctx)

	a.session = mgr
	a.directory = directory.NewStore(gw, cfg.DivisionsPerPage, log)
	a.form = form.NewController(a.directory, log)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Warn("metrics listener stopped", slog.String("error", err.Error()))
			}
		}()
	}

	return a, nil
}

// requireAuth fails the command early when no session is active.
func requireAuth(a *app) error {
	if !a.session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}
