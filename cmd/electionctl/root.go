package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	electionengine "electoral/contexts/governance/election-engine"
	"electoral/internal/app/bootstrap"
	"electoral/internal/platform/config"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	store       string
	boltPath    string
	postgresDSN string
	actor       string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "electionctl",
		Short:         "Manage staged elections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.store, "store", config.StoreBolt, "record store: bolt or postgres")
	rootCmd.PersistentFlags().StringVar(&opts.boltPath, "bolt-path", "", "bolt database file (defaults to BOLT_PATH)")
	rootCmd.PersistentFlags().StringVar(&opts.postgresDSN, "postgres-dsn", "", "postgres DSN (defaults to POSTGRES_DSN)")
	rootCmd.PersistentFlags().StringVar(&opts.actor, "as", "", "hex encoded identity of the caller")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(
		newCreateCmd(opts),
		newApplyCmd(opts),
		newRegisterCmd(opts),
		newAdvanceCmd(opts),
		newVoteCmd(opts),
		newShowCmd(opts),
		newMigrateCmd(opts),
	)
	return rootCmd
}

// session is one CLI invocation's wired module. Events are relayed inline so
// a closing command archives its result before the process exits.
type session struct {
	elections electionengine.Module
	close     func() error
}

func (o *rootOptions) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(o.store))
	if o.boltPath != "" {
		cfg.BoltPath = o.boltPath
	}
	if o.postgresDSN != "" {
		cfg.PostgresDSN = o.postgresDSN
	}
	switch cfg.StoreDriver {
	case config.StoreBolt, config.StorePostgres:
	default:
		return config.Config{}, fmt.Errorf("unsupported --store %q: electionctl needs bolt or postgres", o.store)
	}
	return cfg, nil
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) open(ctx context.Context) (*session, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	runtime, err := bootstrap.BuildRuntime(cfg, o.logger())
	if err != nil {
		return nil, err
	}

	bus := newInlineBus()
	elections := runtime.Elections.WithEventBus(bus, bus)
	if err := elections.Archiver.Start(ctx); err != nil {
		_ = runtime.Close()
		return nil, err
	}
	return &session{elections: elections, close: runtime.Close}, nil
}

// run opens a session, calls fn, drains the outbox and closes the store.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.close()
	}()

	out, err := fn(ctx, s)
	if err != nil {
		return err
	}
	if _, err := s.elections.Relay.RunOnce(ctx); err != nil {
		return fmt.Errorf("relay events: %w", err)
	}
	if out == nil {
		return nil
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func (o *rootOptions) requireActor() (string, error) {
	actor := strings.TrimSpace(o.actor)
	if actor == "" {
		return "", errors.New("--as is required")
	}
	return actor, nil
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
