package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/Gadeoli/todoapp-mobile/internal/api"
	"github.com/Gadeoli/todoapp-mobile/internal/config"
	"github.com/Gadeoli/todoapp-mobile/internal/notify"
	"github.com/Gadeoli/todoapp-mobile/internal/prefs"
	"github.com/Gadeoli/todoapp-mobile/internal/session"
	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

// ErrNotSignedIn is returned by task commands without a stored session
var ErrNotSignedIn = errors.New("not signed in; run 'tasks signin' first")

// app wires the collaborators of one command run
type app struct {
	cfg      *config.Config
	out      io.Writer
	logger   *log.Logger
	notifier notify.Notifier
	client   *api.Client
	store    *prefs.SQLiteStore
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.server != "" {
		cfg.Server.BaseURL = flags.server
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, flags *globalFlags) *log.Logger {
	if flags.verbose {
		return log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd, flags)

	store, err := prefs.OpenSQLite(cfg.StorePath())
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.Server.BaseURL)
	client.SetLogger(logger)

	logger.Printf("server %s, store %s", client.BaseURL(), store.Path())

	return &app{
		cfg:      cfg,
		out:      cmd.OutOrStdout(),
		logger:   logger,
		notifier: notify.NewConsole(cmd.OutOrStdout()),
		client:   client,
		store:    store,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Printf("warning: failed to close store: %v", err)
	}
}

// sessions builds a session controller; nav may be nil
func (a *app) sessions(nav session.Navigator) *session.Controller {
	ctrl := session.NewController(a.client, a.store, a.notifier, nav)
	ctrl.SetLogger(a.logger)
	return ctrl
}

// restore returns the stored session and its request auth
func (a *app) restore(ctx context.Context) (*types.Session, api.Auth, error) {
	ctrl := a.sessions(nil)
	s, err := ctrl.Restore(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, api.Auth{}, ErrNotSignedIn
	}
	if err != nil {
		return nil, api.Auth{}, err
	}
	return s, ctrl.Auth(), nil
}
