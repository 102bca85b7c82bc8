package main

import (
	"context"
	"fmt"
	"strconv"

	postgresadapter "electoral/contexts/governance/election-engine/adapters/postgres"
	electionhttp "electoral/contexts/governance/election-engine/transport/http"
	"electoral/internal/app/bootstrap"
	"electoral/internal/platform/config"
	"electoral/internal/platform/db"

	"github.com/spf13/cobra"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var capacity uint8
	var key string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an election owned by --as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := opts.requireActor()
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.elections.Handler.CreateElectionHandler(ctx, actor, electionhttp.CreateElectionRequest{
					WinnersCapacity: capacity,
					ElectionKey:     key,
				})
			})
		},
	}
	cmd.Flags().Uint8Var(&capacity, "capacity", 1, "number of winner slots (1-255)")
	cmd.Flags().StringVar(&key, "key", "", "election key (generated when empty)")
	return cmd
}

func newApplyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply ELECTION_KEY",
		Short: "Apply as a candidate during the application stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := opts.requireActor()
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.elections.Handler.ApplyHandler(ctx, args[0], actor)
			})
		},
	}
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "register ELECTION_KEY",
		Short: "Register the candidate record of an applied identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := opts.requireActor()
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.elections.Handler.RegisterHandler(ctx, args[0], actor, electionhttp.RegisterCandidateRequest{
					CandidateOwner: owner,
				})
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "candidate identity owner (defaults to --as)")
	return cmd
}

func newAdvanceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "advance ELECTION_KEY STAGE",
		Short: "Move an election to the voting or closed stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := opts.requireActor()
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.elections.Handler.AdvanceStageHandler(ctx, args[0], actor, electionhttp.AdvanceStageRequest{
					Stage: args[1],
				})
			})
		},
	}
}

func newVoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vote ELECTION_KEY CANDIDATE_ID",
		Short: "Cast the single vote of --as",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := opts.requireActor()
			if err != nil {
				return err
			}
			candidateID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("candidate id must be an unsigned integer: %w", err)
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.elections.Handler.VoteHandler(ctx, args[0], actor, electionhttp.CastVoteRequest{
					CandidateID: candidateID,
				})
			})
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var results bool
	var winners bool
	var candidate uint64
	cmd := &cobra.Command{
		Use:   "show ELECTION_KEY",
		Short: "Print an election, its winners, a candidate or the archived result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				handler := s.elections.Handler
				switch {
				case results:
					return handler.ResultHandler(ctx, args[0])
				case winners:
					return handler.ListWinnersHandler(ctx, args[0])
				case cmd.Flags().Changed("candidate"):
					return handler.GetCandidateHandler(ctx, args[0], candidate)
				default:
					return handler.GetElectionHandler(ctx, args[0])
				}
			})
		},
	}
	cmd.Flags().BoolVar(&results, "results", false, "show the archived result of a closed election")
	cmd.Flags().BoolVar(&winners, "winners", false, "show only the ranked winners")
	cmd.Flags().Uint64Var(&candidate, "candidate", 0, "show one registered candidate")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the postgres election schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.StorePostgres {
				return fmt.Errorf("migrate needs --store=%s", config.StorePostgres)
			}
			pg, err := db.Connect(cfg.PostgresDSN, bootstrap.PostgresPool(cfg))
			if err != nil {
				return err
			}
			defer func() {
				_ = pg.Close()
			}()
			if err := postgresadapter.Migrate(pg.DB); err != nil {
				return fmt.Errorf("migrate election schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "election schema is up to date")
			return nil
		},
	}
}
