package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storagesync/internal/config"
	"github.com/vango-dev/storagesync/internal/errors"
	"github.com/vango-dev/storagesync/pkg/storagecell"
)

func getCmd(flags *globalFlags) *cobra.Command {
	var cf clientFlags

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored at a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runGet(cmd.Context(), cfg, cf, args[0], cmd.OutOrStdout(), newLogger(cfg, cmd.ErrOrStderr()))
		},
	}
	cf.register(cmd)
	return cmd
}

func setCmd(flags *globalFlags) *cobra.Command {
	var cf clientFlags

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value and notify other processes",
		Long: `Store a value and notify other processes.

VALUE is parsed as JSON. Anything that is not valid JSON is stored
as a JSON string.

Examples:
  storagehub set theme dark --hub=ws://localhost:7070/ws
  storagehub set prefs '{"fontSize":14}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runSet(cmd.Context(), cfg, cf, args[0], args[1], cmd.OutOrStdout(), newLogger(cfg, cmd.ErrOrStderr()))
		},
	}
	cf.register(cmd)
	return cmd
}

func removeCmd(flags *globalFlags) *cobra.Command {
	var cf clientFlags

	cmd := &cobra.Command{
		Use:     "rm KEY",
		Aliases: []string{"remove"},
		Short:   "Remove a key and notify other processes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runRemove(cmd.Context(), cfg, cf, args[0], cmd.OutOrStdout(), newLogger(cfg, cmd.ErrOrStderr()))
		},
	}
	cf.register(cmd)
	return cmd
}

func runGet(ctx context.Context, cfg *config.Config, cf clientFlags, key string, out io.Writer, logger *slog.Logger) error {
	s, err := openSession(ctx, cfg, cf, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	raw, ok, err := s.Store().GetItem(key)
	if err != nil {
		return errors.FromError(err, "S201")
	}
	if !ok {
		return errors.Newf(errors.CategoryStorage, "key %q not found", key)
	}
	fmt.Fprintln(out, raw)
	return nil
}

func runSet(ctx context.Context, cfg *config.Config, cf clientFlags, key, value string, out io.Writer, logger *slog.Logger) error {
	s, err := openSession(ctx, cfg, cf, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := storeValue(s, key, value, logger); err != nil {
		return err
	}
	success(out, "%s = %s", key, value)
	return nil
}

func runRemove(ctx context.Context, cfg *config.Config, cf clientFlags, key string, out io.Writer, logger *slog.Logger) error {
	s, err := openSession(ctx, cfg, cf, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store().RemoveItem(key); err != nil {
		return errors.FromError(err, "S201")
	}
	success(out, "removed %s", key)
	return nil
}

// storeValue writes value at key through a cell. The write happens even when
// the decoded value equals the cell's current one, so "null" on an absent key
// still creates it.
func storeValue(s *session, key, value string, logger *slog.Logger) error {
	cell, err := storagecell.New[any](s.win, key, nil,
		storagecell.WithArea(s.area),
		storagecell.WithLogger(logger))
	if err != nil {
		return errors.FromError(err, "S201")
	}
	defer cell.Close()

	v := parseValue(value)
	cell.Mutate(func(cur *any) { *cur = v })
	if err := cell.Err(); err != nil {
		return errors.FromError(err, "S201")
	}
	return nil
}

// parseValue decodes s as JSON, falling back to the string itself.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
