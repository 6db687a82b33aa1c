package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/memberbridge/internal/config"
	"github.com/roach88/memberbridge/internal/migrate"
)

// VerifyResult is the verify command's output payload.
type VerifyResult struct {
	Relational int               `json:"relational_count"`
	Document   int               `json:"document_count"`
	Findings   []migrate.Finding `json:"findings"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the two stores record by record",
		Long: `Read every member from both stores and report divergences: records
present in only one store and fields that differ between them. Exits
non-zero when any divergence is found.

Run it against a quiesced service; a concurrent writer can produce
transient findings.

Example:
  memberbridge verify --config config.yaml
  memberbridge verify --config config.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}

	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
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

	ctx := context.Background()
	relMembers, err := rel.List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list relational store", err)
	}
	docMembers, err := doc.List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list document store", err)
	}

	result := VerifyResult{
		Relational: len(relMembers),
		Document:   len(docMembers),
		Findings:   migrate.CompareSets(relMembers, docMembers),
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if len(result.Findings) == 0 {
		text := fmt.Sprintf("stores are consistent (%d members)", result.Relational)
		return f.Success(text, result)
	}

	if err := f.Success(verifyText(result), result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d divergence findings", len(result.Findings)))
}

func verifyText(result VerifyResult) string {
	text := fmt.Sprintf("found %d divergences (relational=%d document=%d)",
		len(result.Findings), result.Relational, result.Document)
	for _, finding := range result.Findings {
		text += fmt.Sprintf("\n  %-20s id=%-8s field=%-6s relational=%q document=%q",
			finding.Kind, finding.ID, finding.Field, finding.Left, finding.Right)
	}
	return text
}
