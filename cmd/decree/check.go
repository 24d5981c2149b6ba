package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/decree-tools/decree/internal/commitmsg"
	"github.com/decree-tools/decree/internal/history"
	"github.com/decree-tools/decree/internal/manifest"
	"github.com/decree-tools/decree/internal/report"
	"github.com/decree-tools/decree/internal/rules"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate governed artifacts and commit messages",
	}

	cmd.AddCommand(
		checkArtifactsCmd("adr", "Validate every ADR against its rule set"),
		checkArtifactsCmd("evidence", "Validate evidence documents and their ADR references"),
		checkAllCmd(),
		checkCommitCmd(),
	)

	return cmd
}

// checkArtifactsCmd builds a check subcommand for one artifact type.
func checkArtifactsCmd(artifactType, short string) *cobra.Command {
	return &cobra.Command{
		Use:   artifactType,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactCheck(artifactType)
		},
	}
}

func checkAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Validate every artifact type the manifest declares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactCheck("")
		},
	}
}

func runArtifactCheck(only string) error {
	root, m, err := loadProject()
	if err != nil {
		return err
	}

	rep, err := rules.CheckArtifacts(root, m, only)
	if err != nil {
		return err
	}

	recordRun(rep, root)
	fmt.Print(rep.Render())
	if !rep.OK() {
		return errChecksFailed
	}
	return nil
}

func checkCommitCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "commit [message]",
		Short: "Validate a commit message against the commit contract",
		Long: `Validates a commit message against the three-part contract: a typed
subject line, a body of dash bullets, and a Refs trailer when the type
requires one.

The message is taken from the argument, from --file (git hooks pass
.git/COMMIT_EDITMSG), or from stdin when neither is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readCommitMessage(args, file)
			if err != nil {
				return err
			}

			root, m, err := loadProject()
			if err != nil {
				return err
			}
			crules, err := manifest.LoadCommitRules(root, m.Config.Dir)
			if err != nil {
				return err
			}

			rep, err := commitmsg.Validate(raw, crules)
			if err != nil {
				return err
			}

			target := "stdin"
			if file != "" {
				target = file
			}
			recordRun(rep, target)

			fmt.Print(rep.Render())
			if !rep.OK() {
				return errChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "F", "", "read the message from a file (e.g. .git/COMMIT_EDITMSG)")

	return cmd
}

func readCommitMessage(args []string, file string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading commit message: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading commit message from stdin: %w", err)
		}
		return string(data), nil
	}
}

// loadProject resolves the governed project from the working directory.
func loadProject() (string, *manifest.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("getting working directory: %w", err)
	}
	return manifest.LoadAt(cwd)
}

// recordRun persists the report to run history. Best-effort: a failure
// to open or write the store never fails the check.
func recordRun(rep *report.Report, target string) {
	store, err := history.New(history.DefaultConfig())
	if err != nil {
		log.Debug().Err(err).Msg("run history unavailable")
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.RecordRun(rep, target); err != nil {
		log.Debug().Err(err).Msg("recording run")
	}
}
