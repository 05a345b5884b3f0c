package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/storagesync/internal/config"
	"github.com/vango-dev/storagesync/internal/errors"
	"github.com/vango-dev/storagesync/pkg/storage"
	"github.com/vango-dev/storagesync/pkg/wsbus"
)

// clientFlags select the hub and area for the client commands.
type clientFlags struct {
	hub  string
	area string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hub, "hub", "", "Hub WebSocket URL (e.g. ws://localhost:7070/ws)")
	cmd.Flags().StringVar(&f.area, "area", "local", "Storage area: local or session")
}

// session is one client process: a window over the configured storage,
// connected to the hub when one is given.
type session struct {
	win    *storage.Window
	client *wsbus.Client
	area   storage.Area
	logger *slog.Logger
}

func openSession(ctx context.Context, cfg *config.Config, f clientFlags, logger *slog.Logger) (*session, error) {
	area, err := storage.ParseArea(f.area)
	if err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "%v", err).
			WithSuggestion("Use --area=local or --area=session")
	}

	local, replica := openStorage(cfg, logger)

	s := &session{area: area, logger: logger}
	var bus storage.Bus
	if f.hub != "" {
		client, err := wsbus.Dial(ctx, f.hub,
			wsbus.WithClientLogger(logger),
			wsbus.WithWriteTimeout(cfg.WriteTimeout.Std()))
		if err != nil {
			return nil, errors.New("S301").
				Wrap(err).
				WithSuggestion("Check that 'storagehub serve' is running at " + f.hub)
		}
		s.client = client
		bus = client

		// A private replica must hold the new value before the window's
		// listeners see the event, as a shared area would.
		if replica {
			client.Subscribe(client.ID(), replicate(local))
		}
	}

	s.win = storage.NewWindow(local, bus, storage.WithWindowLogger(logger))
	return s, nil
}

// Store returns the session's view of its area.
func (s *session) Store() storage.Storage {
	return s.win.Area(s.area)
}

func (s *session) Close() error {
	s.win.Close()
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// openStorage returns the local area: the configured bucket, or an in-memory
// replica when none is configured.
func openStorage(cfg *config.Config, logger *slog.Logger) (store storage.Storage, replica bool) {
	sc := cfg.Storage
	if !sc.Enabled() {
		logger.Debug("no bucket configured, using in-memory storage")
		return storage.NewMemoryStorage(), true
	}

	opts := s3.Options{Region: sc.Region}
	if sc.Endpoint != "" {
		opts.BaseEndpoint = aws.String(sc.Endpoint)
		opts.UsePathStyle = true
	}
	if sc.AccessKeyID != "" {
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     sc.AccessKeyID,
					SecretAccessKey: sc.SecretAccessKey,
					Source:          "storagesync config",
				}, nil
			}))
	}

	return storage.NewS3Storage(s3.New(opts), sc.Bucket,
		storage.WithS3Prefix(sc.Prefix),
		storage.WithS3Timeout(cfg.WriteTimeout.Std())), false
}

// replicate applies events from other processes to a private copy of the
// local area.
func replicate(store storage.Storage) func(storage.Event) {
	return func(ev storage.Event) {
		if ev.Area != storage.Local {
			return
		}
		switch {
		case ev.IsClear():
			store.Clear()
		case ev.IsRemoval():
			store.RemoveItem(ev.Key)
		default:
			store.SetItem(ev.Key, *ev.NewValue)
		}
	}
}
