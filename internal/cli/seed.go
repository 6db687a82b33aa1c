package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/memberbridge/internal/config"
	"github.com/roach88/memberbridge/internal/member"
	"github.com/roach88/memberbridge/internal/migrate"
)

// sampleMembers is the demo data installed by the seed command.
var sampleMembers = []member.Member{
	{Name: "John Smith", Email: "john.smith@mailinator.com", Phone: "2125551212"},
	{Name: "Jane Doe", Email: "jane.doe@mailinator.com", Phone: "2125551213"},
	{Name: "George Johnson", Email: "george.johnson@mailinator.com", Phone: "2125551214"},
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install sample members",
		Long: `Install a small set of sample members through the configured
migration strategy, so seeded data lands in whichever stores the
strategy writes to. Members whose email already exists are skipped,
making the command idempotent.

Example:
  memberbridge seed --config config.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, cmd)
		},
	}

	return cmd
}

func runSeed(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	rel, doc, closeStores, err := openStores(cfg, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open stores", err)
	}
	defer closeStores()

	orc := migrate.New(rel, doc, cfg.Strategy(), migrate.WithLogger(log))

	ctx := context.Background()
	var result SeedResult
	for _, m := range sampleMembers {
		_, err := orc.Create(ctx, m)
		switch {
		case member.IsDuplicateEmail(err):
			result.Skipped++
		case err != nil:
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to seed %s", m.Email), err)
		default:
			result.Created++
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	text := fmt.Sprintf("seeded %d members (%d already present)", result.Created, result.Skipped)
	return f.Success(text, result)
}
