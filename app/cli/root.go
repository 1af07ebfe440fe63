// Package cli is the terminal front end: a cobra command tree that serves the
// HTTP API or works on tasks through a Board.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"taskmaster/app/board"
	"taskmaster/app/config"
	"taskmaster/app/logging"
	"taskmaster/app/services"
	"taskmaster/app/suggest"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Backend builds the access API and suggester the commands work through.
// The returned func releases them.
type Backend func(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (services.API, suggest.Suggester, func(), error)

type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	log     *logrus.Logger
	cleanup func()
	backend Backend
}

// Execute runs the command line and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd(nil).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. A nil backend selects DefaultBackend.
func NewRootCmd(backend Backend) *cobra.Command {
	if backend == nil {
		backend = DefaultBackend
	}
	return newRootCmd(&app{backend: backend})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "taskmaster",
		Short:        "Manage tasks with optional AI-suggested subtasks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./taskmaster.yaml or ~/.config/taskmaster/taskmaster.yaml)")
	flags.String("server", "", "URL of a running taskmaster server; empty works on the local store")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("store", "", "store driver (memory, sqlite, redis, neo4j)")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDoneCmd(a),
		newFavCmd(a),
		newRmCmd(a),
		newSuggestCmd(a),
		newCategorizeCmd(a),
	)
	// Each command releases the logger on return, failed or not.
	for _, sub := range root.Commands() {
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			defer a.release()
			return run(cmd, args)
		}
	}
	return root
}

// release closes whatever init opened. It is safe to call twice.
func (a *app) release() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

func (a *app) init(cmd *cobra.Command) error {
	a.v = config.New(a.cfgFile)
	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"server.url":   "server",
		"log.level":    "log-level",
		"store.driver": "store",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			a.v.Set(key, f.Value.String())
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, cleanup, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.log = log
	a.cleanup = cleanup
	return nil
}

// board opens the backend and returns a Board loaded with the collection.
func (a *app) board(ctx context.Context, refresh bool) (*board.Board, func(), error) {
	api, suggester, release, err := a.backend(ctx, a.cfg, a.log)
	if err != nil {
		return nil, nil, err
	}
	b := board.New(api, suggester, a.log)
	if refresh {
		if err := b.Refresh(ctx); err != nil {
			release()
			return nil, nil, err
		}
	}
	return b, release, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func requireID(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("exactly one task id is required")
	}
	return args[0], nil
}
