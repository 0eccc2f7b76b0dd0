// Package cli implements the stridectl commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	repository "github.com/okian/stride/internal/adapters/repository"
	service "github.com/okian/stride/internal/app"
	"github.com/okian/stride/internal/config"
	"github.com/okian/stride/pkg/logger"
)

// env is the state shared by commands after the root pre-run.
type env struct {
	cfg *config.Config
	svc *service.Service
}

// RootCmd returns the stridectl command tree.
func RootCmd() *cobra.Command {
	var (
		dbPath string
		e      env
	)

	root := &cobra.Command{
		Use:   "stridectl",
		Short: "Inspect and manage the team results database",
		Long: `stridectl reads the same configuration as the server (STRIDE_* env,
STRIDE_CONFIG file, .env) and works directly against the results store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DatabasePath = dbPath
			}
			if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
				return err
			}
			_ = logger.SetLevelString(cfg.LogLevel)
			e.cfg = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.svc != nil {
				e.svc.Stop()
			}
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides database_path)")

	root.AddCommand(rankingsCmd(&e))
	root.AddCommand(meetCmd(&e))
	root.AddCommand(historyCmd(&e))
	root.AddCommand(statsCmd(&e))
	root.AddCommand(seedCmd(&e))
	root.AddCommand(migrateCmd(&e))
	return root
}

// open opens the configured store and starts a service on it.
func (e *env) open(ctx context.Context) (*service.Service, error) {
	if e.svc != nil {
		return e.svc, nil
	}
	store, err := repository.Open(ctx, e.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	opts, err := service.OptionsFromConfig(e.cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	svc := service.New(append(opts, service.WithStore(store))...)
	if err := svc.Start(ctx); err != nil {
		svc.Stop()
		return nil, err
	}
	e.svc = svc
	return svc, nil
}
