package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/natserract/sfrest/pkg/config"
	httpclient "github.com/natserract/sfrest/pkg/http"
	"github.com/natserract/sfrest/pkg/postgres"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/tokenstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "sfrest",
	Short: "Work with Salesforce records from the command line",
	Long: `sfrest authenticates against a Salesforce org and reads or writes sobjects
through the REST API.

Configuration is read from the environment or a .env file:
  SF_LOGIN_URL, SF_CLIENT_ID, SF_CLIENT_SECRET   connected app (required)
  SF_API_VERSION                                 defaults to v37.0
  SF_TOKEN_STORE                                 file (default), sqlite or postgres
  SF_TOKEN_PATH, SF_TOKEN_NAME                   where the token is kept
  SF_LOG_LEVEL                                   debug, info, warn, error or silent

Examples:
  sfrest login --username me@example.com --password 'secret+securitytoken'
  sfrest query "SELECT Id, Name FROM Lead LIMIT 10"
  sfrest update Lead 00Q5g00000AbCdE --data '{"Company":"Acme"}'`,
	SilenceUsage: true,
}

// app holds everything a command needs for one invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *sfrest.Salesforce
	store  sfrest.TokenStore
	close  []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.close = append(a.close, func() { _ = logger.Sync() })

	transport := httpclient.NewClientWithOptions(logger, httpclient.ClientOptions{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.HTTPRetries,
	})
	a.client = sfrest.NewSalesforceWithLogger(cfg.Salesforce, logger,
		sfrest.WithTransport(transport),
		sfrest.WithMaxQueryPages(cfg.QueryMaxPages))

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.TokenStore {
	case config.StoreSQLite:
		store, err := tokenstore.NewSQLite(ctx, a.cfg.TokenPath, a.cfg.TokenName, a.logger)
		if err != nil {
			return fmt.Errorf("failed to open token store: %w", err)
		}
		a.store = store
		a.close = append(a.close, func() { _ = store.Close() })
	case config.StorePostgres:
		db, err := postgres.New(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.close = append(a.close, db.Close)
		store, err := tokenstore.NewPostgres(ctx, db, a.cfg.TokenName, a.logger)
		if err != nil {
			return fmt.Errorf("failed to open token store: %w", err)
		}
		a.store = store
	default:
		a.store = tokenstore.NewFile(a.cfg.TokenPath)
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}

// restoreSession loads the saved token and refreshes it when it has expired,
// saving the refreshed token straight away.
func (a *app) restoreSession(ctx context.Context) error {
	token, err := a.client.RestoreToken(ctx, a.store)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return errors.New("no saved access token, run 'sfrest login' or 'sfrest authorize-confirm' first")
	}
	if err != nil {
		return err
	}

	if !token.NeedsRefresh() {
		return nil
	}
	if _, err := a.client.EnsureFreshToken(ctx); err != nil {
		return err
	}
	return a.client.SaveToken(ctx, a.store)
}

// withApp builds the app for a command and tears it down afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// withSession is withApp plus a restored, fresh access token.
func withSession(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.restoreSession(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd, args, a)
	})
}

func newLogger(level string) (*zap.Logger, error) {
	switch level {
	case "silent":
		return zap.NewNop(), nil
	case "debug":
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid SF_LOG_LEVEL %q: %w", level, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
