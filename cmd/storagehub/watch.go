package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storagesync/internal/config"
	"github.com/vango-dev/storagesync/internal/errors"
	"github.com/vango-dev/storagesync/pkg/reactive"
	"github.com/vango-dev/storagesync/pkg/storage"
	"github.com/vango-dev/storagesync/pkg/storagecell"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var (
		cf  clientFlags
		key string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print storage events as JSON lines",
		Long: `Connect to a hub and print storage events as JSON lines.

With --key, keep a storage cell for that key in sync and print its
value each time it changes instead.

Examples:
  storagehub watch --hub=ws://localhost:7070/ws
  storagehub watch --hub=ws://localhost:7070/ws --key=theme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cf.hub == "" {
				return errors.Newf(errors.CategoryCLI, "watch needs a hub").
					WithSuggestion("Pass --hub=ws://HOST:PORT/ws")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cfg, cf, key, cmd.OutOrStdout(), newLogger(cfg, cmd.ErrOrStderr()))
		},
	}
	cf.register(cmd)
	cmd.Flags().StringVarP(&key, "key", "k", "", "Follow the value of one key")

	return cmd
}

// valueLine is printed for each change of a followed key.
type valueLine struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func runWatch(ctx context.Context, cfg *config.Config, cf clientFlags, key string, out io.Writer, logger *slog.Logger) error {
	s, err := openSession(ctx, cfg, cf, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	var mu sync.Mutex
	enc := json.NewEncoder(out)
	emit := func(v any) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(v); err != nil {
			logger.Warn("write failed", "error", err)
		}
	}

	if key == "" {
		remove := s.win.AddListener(func(ev storage.Event) {
			if ev.Area == s.area {
				emit(ev)
			}
		})
		defer remove()
	} else {
		owner := reactive.NewOwner(nil)
		cell, err := storagecell.New[any](s.win, key, nil,
			storagecell.WithArea(s.area),
			storagecell.WithLogger(logger),
			storagecell.WithOwner(owner))
		if err != nil {
			return errors.FromError(err, "S201")
		}
		reactive.Watch(cell, func() {
			emit(valueLine{Key: key, Value: cell.Peek()})
		})
		owner.Mount()
		defer owner.Unmount()

		emit(valueLine{Key: key, Value: cell.Peek()})
	}

	var lost <-chan struct{}
	if s.client != nil {
		lost = s.client.Done()
	}

	select {
	case <-ctx.Done():
		return nil
	case <-lost:
		return errors.New("S302").Wrap(s.client.Err())
	}
}
