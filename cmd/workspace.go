package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/tablekeep/internal/config"
	"github.com/Rana718/tablekeep/internal/database"
	"github.com/Rana718/tablekeep/internal/metrics"
	"github.com/Rana718/tablekeep/internal/session"
	"github.com/Rana718/tablekeep/internal/tables"
	"github.com/Rana718/tablekeep/internal/utils"
)

const closeTimeout = 30 * time.Second

// workspace is everything a command needs to read and change the stored
// collection.
type workspace struct {
	cfg      *config.Config
	repo     *database.Repository
	session  *session.Session
	store    *tables.Store
	recorder *metrics.Recorder
	input    *utils.InputUtils
	force    bool
}

func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := slog.Default()
	repo, err := database.Open(ctx, cfg.Storage.Provider, dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rec := metrics.New()
	sess, err := session.Open(ctx, repo,
		session.WithLogger(logger),
		session.WithMetrics(rec),
		session.WithStoreOptions(tables.WithRequireCompleteRows(cfg.Rows.RequireComplete)),
	)
	if err != nil {
		repo.Close()
		return nil, err
	}

	force, _ := cmd.Flags().GetBool("force")
	ws := &workspace{
		cfg:      cfg,
		repo:     repo,
		session:  sess,
		store:    sess.Store(),
		recorder: rec,
		input:    utils.NewInputUtils(cmd.InOrStdin(), cmd.OutOrStdout()),
		force:    force,
	}

	if name, _ := cmd.Flags().GetString("table"); name != "" {
		if err := ws.store.Select(name); err != nil {
			ws.close()
			return nil, err
		}
	}

	return ws, nil
}

// close waits for pending saves and releases the connection.
func (w *workspace) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	err := w.session.Close(ctx)
	if cerr := w.repo.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		return fmt.Errorf("failed to save tables: %w", err)
	}
	return nil
}

// withWorkspace opens a workspace, runs fn and always closes it. A save
// failure is reported even when fn succeeded.
func withWorkspace(cmd *cobra.Command, fn func(*workspace) error) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	runErr := fn(ws)
	closeErr := ws.close()
	if runErr != nil {
		return describe(runErr)
	}
	return closeErr
}

// describe turns store errors into messages for the terminal.
func describe(err error) error {
	if v, ok := tables.IsValidation(err); ok {
		return fmt.Errorf("%s %s", color.YellowString("⚠️"), v.Message)
	}
	return err
}
