// Package main provides the decree binary entry point.
//
// Decree is a governance toolchain for repositories that track
// architecture decisions (ADRs) and supporting evidence. It validates
// governed documents and commit messages against declarative rule sets,
// renders changelogs from git history, and can run as an MCP server.
//
// Usage:
//
//	decree check adr          # validate ADRs
//	decree check evidence     # validate evidence documents
//	decree check all          # validate every configured artifact type
//	decree check commit -F f  # validate a commit message
//	decree changelog          # render the changelog
//	decree history            # query past validation runs
//	decree serve              # start the MCP server (stdio transport)
//	decree update             # self-update to the latest release
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errChecksFailed signals that a check ran to completion and found
// violations. It maps to exit code 1 without an extra error line, since
// the report has already been printed.
var errChecksFailed = errors.New("checks failed")

// log is the process-wide logger. It writes to stderr so command output
// on stdout (reports, changelogs, JSON) stays clean for piping, and so
// MCP stdio framing is never corrupted during serve.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "decree",
		Short: "Governance toolchain for ADRs, evidence, and commits",
		Long: `Decree keeps a repository's governance artifacts honest. It validates
Architecture Decision Records and evidence documents against the rule
sets named in decree.toml, enforces the commit message contract, and
renders deterministic changelogs from git history.

A check exits 0 when everything passes and 1 when violations are found,
so every command is safe to wire into CI and git hooks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		checkCmd(),
		changelogCmd(),
		historyCmd(),
		serveCmd(),
		updateCmd(),
		versionCmd(),
	)

	return cmd
}
