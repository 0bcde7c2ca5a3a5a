package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codegnosis/depspace/internal/server"
	"github.com/codegnosis/depspace/pkg/config"
	"github.com/codegnosis/depspace/pkg/session"
	"github.com/codegnosis/depspace/pkg/store"
)

// serveCommand creates the serve command for running the exploration server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket exploration server",
		Long: `Run the HTTP/WebSocket exploration server.

The server accepts analyzer payloads on POST /api/analysis, streams frame
snapshots over /api/ws, and exposes filter, camera, session, and export
operations as REST endpoints.

Configuration is read from --config, ./depspace.toml, or
~/.config/depspace/config.toml; built-in defaults apply when no file is
found. Session and snapshot backends (memory, file, redis, mongo) are
selected in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServe builds the configured backends and runs the server until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	snapshots, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	defer snapshots.Close()

	srv, err := server.New(server.Options{
		Config:    cfg,
		Sessions:  sessions,
		Snapshots: snapshots,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	printInfo("depspace server on %s", StyleHighlight.Render(cfg.Server.Addr))
	printDetail("sessions: %s · snapshots: %s", cfg.Session.Backend, cfg.Store.Backend)
	return srv.ListenAndServe(ctx)
}

// newSessionStore builds the session backend selected in the config.
func newSessionStore(ctx context.Context, cfg config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "file":
		return session.NewFileStore(cfg.Session.FileDir)
	case "redis":
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// newSnapshotStore builds the snapshot backend selected in the config.
func newSnapshotStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(cfg.Store.Capacity), nil
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.MongoDatabase,
			Collection: cfg.Store.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Store.Backend)
	}
}
