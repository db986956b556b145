package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/essaylens/internal/app"
	"github.com/abhisek/essaylens/internal/config"
	"github.com/abhisek/essaylens/internal/logging"
	"github.com/abhisek/essaylens/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "essaylens",
	Short: "Score student engagement from typed essays",
	Long: `essaylens evaluates how a student engaged with a lecture from the essay they
typed: keystroke timing, stylometric drift, grammar, and topical similarity
to the lecture feed a typing-style classifier and an engagement score.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// session is the per-process state shared by subcommands.
var session struct {
	cfg    config.Config
	logger *slog.Logger
}

// Execute runs the root command. Interrupts cancel in-flight service calls.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides ESSAYLENS_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ESSAYLENS_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(callsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(bundleCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration (defaults, file, environment, then flags) and
// builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return err
	}
	session.cfg = cfg
	session.logger = logging.New(logging.Options{Level: level, Format: format, Writer: cmd.ErrOrStderr()})
	return nil
}

// openStore opens the database at store.path, or the default XDG path.
func openStore() (*store.Store, error) {
	path := session.cfg.Store.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// buildServices validates the configuration and wires the pipeline.
// st may be nil, which turns the call journal off.
func buildServices(cmd *cobra.Command, st *store.Store) (*app.Services, error) {
	if err := session.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	var calls store.CallRepo
	if st != nil {
		calls = st.CallRepo()
	}
	return app.New(cmd.Context(), session.cfg, calls, session.logger)
}
