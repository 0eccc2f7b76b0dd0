package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	repository "github.com/okian/stride/internal/adapters/repository"
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/seed"
)

// ErrNoDatabase is returned by commands that need a database file.
var ErrNoDatabase = errors.New("no database path configured (set --db or STRIDE_DATABASE_PATH)")

func seedCmd(e *env) *cobra.Command {
	cfg := seed.DefaultConfig()
	var start string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with a generated demo season",
		Long: `seed writes coaches, athletes, meets and placed results into the configured
database. Runs with the same --seed produce the same season.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.DatabasePath == "" {
				return ErrNoDatabase
			}
			if start != "" {
				t, err := time.Parse(model.DateLayout, start)
				if err != nil {
					return fmt.Errorf("invalid --start %q: %w", start, err)
				}
				cfg.SeasonStart = t
			}
			svc, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			cfg.Categories = svc.Categories()
			sum, err := seed.Run(cmd.Context(), svc, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			heading.Fprintln(out, "Seeded demo season")
			fmt.Fprintf(out, "  %d athletes, %d meets, %d results (%d DNF), %d coaches\n",
				sum.Athletes, sum.Meets, sum.Results, sum.DNF, sum.Coaches)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Athletes, "athletes", cfg.Athletes, "Number of athletes")
	cmd.Flags().IntVar(&cfg.Meets, "meets", cfg.Meets, "Number of meets")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	cmd.Flags().StringVar(&start, "start", "", "Date of the first meet (YYYY-MM-DD)")
	return cmd
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the SQLite schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.DatabasePath == "" {
				return ErrNoDatabase
			}
			store, err := repository.OpenSQLite(cmd.Context(), e.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := store.Version(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if applied := store.Applied(); len(applied) > 0 {
				heading.Fprintf(out, "Applied migrations %v\n", applied)
			} else {
				muted.Fprintln(out, "Schema already up to date")
			}
			fmt.Fprintf(out, "Schema version %d (latest %d)\n", version, repository.SchemaVersion())
			return nil
		},
	}
}
